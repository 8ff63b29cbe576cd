// Package push uploads local file edits back to the remote document store.
package push

import (
	"context"
	"errors"
	"os"

	"github.com/greghernandez/docsync/internal/api"
	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/state"
)

// ErrNotTracked is returned when the changed path has no sync record. The
// caller treats it as "nothing to do": the state file itself, or a stray file
// dropped into the tree, triggers events like any other write.
var ErrNotTracked = errors.New("path is not a tracked document")

// Pusher resolves a local path to its remote identity and uploads the file's
// contents as a new document version.
type Pusher struct {
	svc    api.Service
	store  *state.Store
	logger logging.Logger
}

// NewPusher creates a push reconciler.
func NewPusher(svc api.Service, store *state.Store, logger logging.Logger) *Pusher {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Pusher{
		svc:    svc,
		store:  store,
		logger: logger,
	}
}

// Push uploads the file at localPath as a new version of its remote document
// and records the returned change tag, re-establishing local/remote
// consistency. Pushing unchanged content creates a new remote version anyway;
// the remote store does not suppress no-op updates.
func (p *Pusher) Push(ctx context.Context, localPath string) error {
	rec, err := p.store.FindRecordByPath(ctx, localPath)
	if errors.Is(err, state.ErrNotFound) {
		return ErrNotTracked
	}
	if err != nil {
		return err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()

	version, err := p.svc.Update(ctx, rec.ResourceID, file)
	if err != nil {
		return err
	}

	if err := p.store.UpdateChangeTag(ctx, rec.ResourceID, version.ChangeTag); err != nil {
		return err
	}

	p.logger.Info("document pushed",
		logging.F("path", localPath),
		logging.F("link", version.Link),
	)
	return nil
}
