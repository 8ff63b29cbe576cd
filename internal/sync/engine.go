// Package sync sequences a full synchronization run: authenticate, mirror
// the remote tree, then watch for local edits to push back.
package sync

import (
	"context"
	"errors"

	"github.com/greghernandez/docsync/internal/api"
	"github.com/greghernandez/docsync/internal/config"
	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/mirror"
	"github.com/greghernandez/docsync/internal/push"
	"github.com/greghernandez/docsync/internal/session"
	"github.com/greghernandez/docsync/internal/state"
	"github.com/greghernandez/docsync/internal/utils"
	"github.com/greghernandez/docsync/internal/watch"
)

// Engine is the top-level sync orchestrator.
type Engine struct {
	cfg    *config.Config
	svc    api.Service
	logger logging.Logger
	prompt session.PromptFunc
}

// Options configure one run.
type Options struct {
	// Title, when set, restricts the pull to documents matching this title.
	Title string
	// Exact requires an exact title match instead of a substring one.
	Exact bool
	// Force re-exports every document regardless of change tags.
	Force bool
	// Watch keeps the engine running after the pull pass, pushing local
	// edits back as they happen.
	Watch bool
	// Credentials bypass the interactive login prompt when set.
	Credentials session.Credentials
}

// NewEngine creates a sync engine.
func NewEngine(cfg *config.Config, svc api.Service, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Engine{
		cfg:    cfg,
		svc:    svc,
		logger: logger,
	}
}

// SetPrompt overrides the interactive credential prompt for every session
// manager the engine creates.
func (e *Engine) SetPrompt(prompt session.PromptFunc) {
	e.prompt = prompt
}

// Run executes one sync cycle. An authorization failure during the pull pass
// forces re-authentication and retries the whole pass exactly once; a second
// failure surfaces to the caller.
func (e *Engine) Run(ctx context.Context, opts Options) error {
	if err := e.pullCycle(ctx, opts); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}
	return e.watchCycle(ctx, opts)
}

// pullCycle runs the sequential pull pass on its own state connection.
func (e *Engine) pullCycle(ctx context.Context, opts Options) error {
	store, err := state.Open(e.cfg.StatePath())
	if err != nil {
		return err
	}
	defer store.Close()

	sess := e.newSession(store)
	if err := sess.Ensure(ctx, opts.Credentials, false); err != nil {
		return err
	}

	pull := func() error {
		builder := mirror.NewBuilder(e.svc, store, e.logger, opts.Force)
		if opts.Title != "" {
			return builder.PullByTitle(ctx, e.cfg.MirrorDir, opts.Title, opts.Exact)
		}
		return builder.Pull(ctx, e.cfg.MirrorDir)
	}

	err = pull()
	if utils.IsAuthError(err) {
		e.logger.Warn("credential rejected, re-authenticating")
		sess.Invalidate()
		if err := sess.Ensure(ctx, opts.Credentials, true); err != nil {
			return err
		}
		err = pull()
	}
	return err
}

// watchCycle runs the long-lived event listener on its own state connection.
// The watch registration is released before the connection closes.
func (e *Engine) watchCycle(ctx context.Context, opts Options) error {
	store, err := state.Open(e.cfg.StatePath())
	if err != nil {
		return err
	}
	defer store.Close()

	watcher, err := watch.NewWatcher()
	if err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeWatchFailed, err.Error()).Build())
	}
	if err := watcher.Start(e.cfg.MirrorDir); err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeWatchFailed, err.Error()).
			WithContext("path", e.cfg.MirrorDir).
			Build())
	}
	defer watcher.Stop()

	e.logger.Info("watching for local changes", logging.F("path", e.cfg.MirrorDir))

	sess := e.newSession(store)
	pusher := push.NewPusher(e.svc, store, e.logger)
	router := watch.NewRouter(watcher.Events(), watcher.Errors(), pusher, e.logger)

	for {
		err := router.Run(ctx)
		if utils.IsAuthError(err) {
			e.logger.Warn("credential rejected during push, re-authenticating")
			sess.Invalidate()
			if err := sess.Ensure(ctx, opts.Credentials, true); err != nil {
				return err
			}
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
}

func (e *Engine) newSession(store *state.Store) *session.Manager {
	sess := session.NewManager(e.svc, store, e.logger)
	if e.prompt != nil {
		sess.SetPrompt(e.prompt)
	}
	return sess
}
