package mirror

import (
	"context"
	"path/filepath"

	"github.com/greghernandez/docsync/internal/api"
	"github.com/greghernandez/docsync/internal/types"
)

// FolderNode is one remote folder observed during a mirror pass. The tree is
// transient: it exists to drive one materialization and is then discarded.
// Children hold a non-owning back-reference to their parent for path
// composition only.
type FolderNode struct {
	Entry     types.Entry
	Parent    *FolderNode
	LocalPath string
	Folders   []*FolderNode
	Documents []DocumentNode
}

// DocumentNode pairs a remote document entry with its resolved local path.
type DocumentNode struct {
	Entry     types.Entry
	LocalPath string
}

// BuildTree walks the remote hierarchy from the root folder and returns the
// resulting tree. It performs no side effects: no directories are created and
// nothing is written to the state store. Entries that are neither cleanly a
// folder nor cleanly a document are excluded. An entry's declared parent link
// is not used to re-parent it; it stays wherever the listing returned it.
func BuildTree(ctx context.Context, svc api.Service, basePath string) (*FolderNode, error) {
	root := &FolderNode{LocalPath: basePath}
	if err := expand(ctx, svc, root, api.RootFolderURI); err != nil {
		return nil, err
	}
	return root, nil
}

func expand(ctx context.Context, svc api.Service, node *FolderNode, folderURI string) error {
	children, err := svc.ListChildren(ctx, folderURI)
	if err != nil {
		return err
	}

	for _, child := range children {
		switch {
		case child.IsFolder():
			folder := &FolderNode{
				Entry:     child,
				Parent:    node,
				LocalPath: filepath.Join(node.LocalPath, SanitizeTitle(child.Title)),
			}
			if err := expand(ctx, svc, folder, child.ContentURI); err != nil {
				return err
			}
			node.Folders = append(node.Folders, folder)
		case child.IsDocument():
			node.Documents = append(node.Documents, DocumentNode{
				Entry:     child,
				LocalPath: filepath.Join(node.LocalPath, DocumentFileName(child.Title)),
			})
		}
	}
	return nil
}
