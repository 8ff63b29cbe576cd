package mirror

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/greghernandez/docsync/internal/api"
	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/state"
	"github.com/greghernandez/docsync/internal/types"
	"github.com/greghernandez/docsync/internal/utils"
)

// Builder reconstructs the remote folder hierarchy under the mirror root and
// reconciles every document it finds.
type Builder struct {
	svc        api.Service
	store      *state.Store
	logger     logging.Logger
	reconciler *Reconciler
}

// NewBuilder creates a tree mirror builder.
func NewBuilder(svc api.Service, store *state.Store, logger logging.Logger, force bool) *Builder {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	return &Builder{
		svc:        svc,
		store:      store,
		logger:     logger,
		reconciler: NewReconciler(svc, store, logger, force),
	}
}

// Pull runs one full mirror pass: walk the remote tree, then materialize it.
func (b *Builder) Pull(ctx context.Context, basePath string) error {
	tree, err := BuildTree(ctx, b.svc, basePath)
	if err != nil {
		return err
	}
	return b.Materialize(ctx, tree)
}

// Materialize creates the local directory for each folder node and reconciles
// each document. Directory creation failure for the mirror root is fatal;
// per-document pull failures are absorbed by the reconciler.
func (b *Builder) Materialize(ctx context.Context, node *FolderNode) error {
	if err := os.MkdirAll(node.LocalPath, 0755); err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeMirrorRootFailed,
			fmt.Sprintf("cannot create local directory: %v", err)).
			WithContext("path", node.LocalPath).
			Build())
	}

	for _, doc := range node.Documents {
		if err := b.reconciler.Reconcile(ctx, doc.Entry, doc.LocalPath); err != nil {
			return err
		}
	}
	for _, folder := range node.Folders {
		if err := b.Materialize(ctx, folder); err != nil {
			return err
		}
	}
	return nil
}

// PullByTitle mirrors only the documents matching a title, placed directly
// under the mirror root.
func (b *Builder) PullByTitle(ctx context.Context, basePath, title string, exact bool) error {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return utils.NewAppError(utils.NewCLIError(utils.ErrCodeMirrorRootFailed,
			fmt.Sprintf("cannot create mirror root: %v", err)).
			WithContext("path", basePath).
			Build())
	}

	entries, err := b.svc.SearchByTitle(ctx, title, exact)
	if err != nil {
		return err
	}

	matched := 0
	for _, entry := range entries {
		if !entry.IsDocument() {
			continue
		}
		matched++
		doc := DocumentNode{
			Entry:     entry,
			LocalPath: documentPathUnder(basePath, entry),
		}
		if err := b.reconciler.Reconcile(ctx, doc.Entry, doc.LocalPath); err != nil {
			return err
		}
	}
	if matched == 0 {
		b.logger.Info("no documents matched", logging.F("title", title))
	}
	return nil
}

func documentPathUnder(basePath string, entry types.Entry) string {
	return filepath.Join(basePath, DocumentFileName(entry.Title))
}
