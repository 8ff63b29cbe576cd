package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/greghernandez/docsync/internal/daemon"
	"github.com/greghernandez/docsync/internal/sync"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync daemon in the background",
	Long: `Start launches docsync in the background. The daemon performs a full
pull, then watches the mirror directory and pushes local edits back to
the remote store. Credentials must already be stored (run "docsync pull"
once first) or passed with --username and --password.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemon.New(cfg.PidFile, logger)
		pid, err := d.Start(daemonArgs())
		if err != nil {
			return err
		}
		fmt.Printf("docsync daemon started (pid %d)\n", pid)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the sync daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemon.New(cfg.PidFile, logger)
		if err := d.Stop(); err != nil {
			return err
		}
		fmt.Println("docsync daemon stopped")
		return nil
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the sync daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemon.New(cfg.PidFile, logger)
		pid, err := d.Restart(daemonArgs())
		if err != nil {
			return err
		}
		fmt.Printf("docsync daemon restarted (pid %d)\n", pid)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the sync daemon is running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := daemon.New(cfg.PidFile, logger)
		if pid, ok := d.Running(); ok {
			fmt.Printf("docsync daemon is running (pid %d)\n", pid)
			return nil
		}
		fmt.Println("docsync daemon is not running")
		return nil
	},
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Run the sync loop in the foreground",
	Long: `Debug runs the full sync loop without detaching: pull the remote tree,
then watch the mirror directory and push local edits until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine := sync.NewEngine(cfg, newService(), logger)
		return engine.Run(ctx, sync.Options{
			Force:       globalFlags.Force,
			Watch:       true,
			Credentials: flagCredentials(),
		})
	},
}

// daemonArgs builds the argument vector the background process is spawned
// with. The child runs the debug loop with flags worth propagating.
func daemonArgs() []string {
	args := []string{"debug", "--quiet"}
	if globalFlags.Config != "" {
		args = append(args, "--config", globalFlags.Config)
	}
	if globalFlags.LogFile != "" {
		args = append(args, "--log-file", globalFlags.LogFile)
	}
	if globalFlags.Username != "" {
		args = append(args, "--username", globalFlags.Username)
	}
	if globalFlags.Password != "" {
		args = append(args, "--password", globalFlags.Password)
	}
	return args
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(debugCmd)
}
