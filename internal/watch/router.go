package watch

import (
	"context"
	"errors"

	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/push"
	"github.com/greghernandez/docsync/internal/utils"
)

// Reconciler is the push-side surface the router dispatches to.
type Reconciler interface {
	Push(ctx context.Context, localPath string) error
}

// Router drains write events and invokes the push reconciler, one event at a
// time in delivery order. A push blocks the router until the remote upload
// completes, so a burst of rapid saves is serialized, never parallelized.
// Duplicate events for the same save are dispatched as-is; a redundant push
// just produces an extra remote version.
type Router struct {
	events <-chan Event
	errs   <-chan error
	pusher Reconciler
	logger logging.Logger
}

// NewRouter creates an event router over the given channels.
func NewRouter(events <-chan Event, errs <-chan error, pusher Reconciler, logger logging.Logger) *Router {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Router{
		events: events,
		errs:   errs,
		pusher: pusher,
		logger: logger,
	}
}

// Run processes events until the context is cancelled or the event channel
// closes. Authorization failures are returned to the caller so the session
// can be refreshed; everything else is logged and the loop continues.
func (r *Router) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-r.events:
			if !ok {
				return nil
			}
			if err := r.dispatch(ctx, event); err != nil {
				return err
			}

		case err, ok := <-r.errs:
			if !ok {
				return nil
			}
			r.logger.Warn("watch error", logging.F("error", err.Error()))
		}
	}
}

func (r *Router) dispatch(ctx context.Context, event Event) error {
	err := r.pusher.Push(ctx, event.Path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, push.ErrNotTracked):
		r.logger.Debug("ignoring untracked file", logging.F("path", event.Path))
		return nil
	case utils.IsAuthError(err):
		return err
	default:
		r.logger.Error("push failed",
			logging.F("path", event.Path),
			logging.F("error", err.Error()),
		)
		return nil
	}
}
