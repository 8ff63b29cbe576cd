// Package daemon manages the background docsync process through a pidfile.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/utils"
)

// Daemon controls the background process identified by a pidfile.
type Daemon struct {
	pidFile string
	logger  logging.Logger
}

// New creates a daemon controller.
func New(pidFile string, logger logging.Logger) *Daemon {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Daemon{
		pidFile: pidFile,
		logger:  logger,
	}
}

// ReadPID returns the recorded process ID, or an error when no pidfile
// exists.
func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pidfile %s: %w", d.pidFile, err)
	}
	return pid, nil
}

// WritePID records a process ID.
func (d *Daemon) WritePID(pid int) error {
	return os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

// RemovePID deletes the pidfile. Missing is not an error.
func (d *Daemon) RemovePID() error {
	err := os.Remove(d.pidFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Running reports whether the recorded process is alive. A stale pidfile
// (process gone) reports not running.
func (d *Daemon) Running() (int, bool) {
	pid, err := d.ReadPID()
	if err != nil {
		return 0, false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}
	return pid, true
}

// Start launches the current executable detached, running the given
// arguments, and records its pid.
func (d *Daemon) Start(args []string) (int, error) {
	if pid, ok := d.Running(); ok {
		return 0, utils.NewAppError(utils.NewCLIError(utils.ErrCodeDaemonAlreadyRunning,
			fmt.Sprintf("daemon already running with pid %d", pid)).Build())
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	if err := d.WritePID(pid); err != nil {
		_ = cmd.Process.Kill()
		return 0, err
	}
	// detach: the child is reparented once this process exits
	go func() { _ = cmd.Wait() }()

	d.logger.Info("daemon started", logging.F("pid", pid))
	return pid, nil
}

// Stop signals the recorded process with SIGTERM, waits for it to exit, and
// removes the pidfile.
func (d *Daemon) Stop() error {
	pid, ok := d.Running()
	if !ok {
		_ = d.RemovePID()
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeDaemonNotRunning,
			"daemon is not running").Build())
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return err
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			d.logger.Info("daemon stopped", logging.F("pid", pid))
			return d.RemovePID()
		}
		time.Sleep(100 * time.Millisecond)
	}

	// unresponsive: escalate
	_ = process.Kill()
	d.logger.Warn("daemon killed after timeout", logging.F("pid", pid))
	return d.RemovePID()
}

// Restart stops the daemon if running, then starts it again.
func (d *Daemon) Restart(args []string) (int, error) {
	if err := d.Stop(); err != nil {
		if !isNotRunning(err) {
			return 0, err
		}
	}
	return d.Start(args)
}

func isNotRunning(err error) bool {
	appErr, ok := err.(*utils.AppError)
	return ok && appErr.CLIError.Code == utils.ErrCodeDaemonNotRunning
}
