package api

import (
	"context"
	"io"

	"github.com/greghernandez/docsync/internal/types"
)

// RootFolderURI is the listing URI of the remote root folder.
const RootFolderURI = "/feeds/folders/root/contents"

// Service is the remote document store surface consumed by the sync engine.
// The production implementation is *Client; tests substitute a mock.
type Service interface {
	// Login exchanges a username and password for an opaque session token.
	Login(ctx context.Context, username, password string) (string, error)

	// SetToken installs the session token used by subsequent calls.
	SetToken(token string)

	// ListChildren returns the immediate children of a folder.
	ListChildren(ctx context.Context, folderURI string) ([]types.Entry, error)

	// SearchByTitle returns documents matching a title, exactly or by substring.
	SearchByTitle(ctx context.Context, title string, exact bool) ([]types.Entry, error)

	// Export downloads a document's content in the configured export format,
	// writing it to localPath. The file is created or truncated.
	Export(ctx context.Context, entry types.Entry, localPath string) error

	// Update uploads content as a new version of the identified document and
	// returns the version the remote store assigned.
	Update(ctx context.Context, resourceID string, content io.Reader) (*types.Version, error)
}
