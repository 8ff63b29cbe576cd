package mirror

import (
	"context"
	"os"

	"github.com/greghernandez/docsync/internal/api"
	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/state"
	"github.com/greghernandez/docsync/internal/types"
	"github.com/greghernandez/docsync/internal/utils"
)

// Reconciler decides, per document, whether a pull is needed and performs it.
type Reconciler struct {
	svc    api.Service
	store  *state.Store
	logger logging.Logger
	force  bool
}

// NewReconciler creates a pull-side reconciler. With force set, every
// document is re-exported regardless of change tags.
func NewReconciler(svc api.Service, store *state.Store, logger logging.Logger, force bool) *Reconciler {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Reconciler{
		svc:    svc,
		store:  store,
		logger: logger,
		force:  force,
	}
}

// Reconcile pulls the document to localPath when the stored change tag is
// absent or differs from the remote one. A per-document export failure is
// logged as skipped and the partial file removed; the pass continues.
// Authorization failures are re-raised so the session can be refreshed.
func (r *Reconciler) Reconcile(ctx context.Context, entry types.Entry, localPath string) error {
	stored, known, err := r.store.GetChangeTag(ctx, entry.ResourceID)
	if err != nil {
		return err
	}
	if known && stored == entry.ChangeTag && !r.force {
		return nil
	}

	r.logger.Info("writing", logging.F("path", localPath))
	if err := r.svc.Export(ctx, entry, localPath); err != nil {
		if utils.IsAuthError(err) {
			return err
		}
		if removeErr := os.Remove(localPath); removeErr != nil && !os.IsNotExist(removeErr) {
			r.logger.Warn("failed to remove partial file",
				logging.F("path", localPath),
				logging.F("error", removeErr.Error()),
			)
		}
		r.logger.Warn("skipped",
			logging.F("path", localPath),
			logging.F("error", err.Error()),
		)
		return nil
	}

	return r.store.UpsertRecord(ctx, state.SyncRecord{
		ResourceID: entry.ResourceID,
		LocalPath:  localPath,
		ChangeTag:  entry.ChangeTag,
		Title:      entry.Title,
	})
}
