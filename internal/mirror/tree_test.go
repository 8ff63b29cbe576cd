package mirror

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/greghernandez/docsync/internal/api"
	testfix "github.com/greghernandez/docsync/internal/testing"
	"github.com/greghernandez/docsync/internal/testing/mocks"
	"github.com/greghernandez/docsync/internal/types"
)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plan", "Plan"},
		{"Q3/Q4 Notes", "Q3-Q4 Notes"},
		{"a\\b", "a-b"},
		{"//", "--"},
	}
	for _, tt := range tests {
		if got := SanitizeTitle(tt.in); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDocumentFileName(t *testing.T) {
	if got := DocumentFileName("Q3/Q4 Notes"); got != "Q3-Q4 Notes.odt" {
		t.Errorf("DocumentFileName() = %q", got)
	}
}

func TestBuildTree(t *testing.T) {
	work := testfix.TestFolder("folder:work", "Work")
	plan := testfix.TestDocument("doc:plan", "Plan", "t1")
	notes := testfix.TestDocument("doc:notes", "Notes", "t9")

	svc := mocks.NewMockService()
	svc.ListChildrenFunc = func(folderURI string) ([]types.Entry, error) {
		switch folderURI {
		case api.RootFolderURI:
			return []types.Entry{work, notes}, nil
		case work.ContentURI:
			return []types.Entry{plan}, nil
		default:
			t.Fatalf("unexpected listing URI %q", folderURI)
			return nil, nil
		}
	}

	root, err := BuildTree(context.Background(), svc, "/mirror")
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}

	if len(root.Documents) != 1 || root.Documents[0].Entry.ResourceID != "doc:notes" {
		t.Errorf("root documents = %+v", root.Documents)
	}
	if len(root.Folders) != 1 {
		t.Fatalf("root folders = %+v", root.Folders)
	}

	folder := root.Folders[0]
	if folder.LocalPath != filepath.Join("/mirror", "Work") {
		t.Errorf("folder path = %q", folder.LocalPath)
	}
	if folder.Parent != root {
		t.Error("folder parent back-reference not set")
	}
	if len(folder.Documents) != 1 {
		t.Fatalf("folder documents = %+v", folder.Documents)
	}
	if got := folder.Documents[0].LocalPath; got != filepath.Join("/mirror", "Work", "Plan.odt") {
		t.Errorf("document path = %q", got)
	}
}

func TestBuildTree_SkipsUnclassifiableEntries(t *testing.T) {
	both := testfix.TestUnclassified("doc:both", "Both")
	neither := types.Entry{ResourceID: "doc:neither", Title: "Neither"}

	svc := mocks.NewMockService()
	svc.ListChildrenFunc = func(folderURI string) ([]types.Entry, error) {
		return []types.Entry{both, neither}, nil
	}

	root, err := BuildTree(context.Background(), svc, "/mirror")
	if err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if len(root.Folders) != 0 || len(root.Documents) != 0 {
		t.Errorf("expected empty tree, got folders=%d documents=%d",
			len(root.Folders), len(root.Documents))
	}
}

func TestBuildTree_NoSideEffects(t *testing.T) {
	base := filepath.Join(t.TempDir(), "mirror")
	work := testfix.TestFolder("folder:work", "Work")

	svc := mocks.NewMockService()
	svc.ListChildrenFunc = func(folderURI string) ([]types.Entry, error) {
		if folderURI == api.RootFolderURI {
			return []types.Entry{work}, nil
		}
		return nil, nil
	}

	if _, err := BuildTree(context.Background(), svc, base); err != nil {
		t.Fatalf("BuildTree() error = %v", err)
	}
	if svc.ExportCalls != 0 {
		t.Errorf("traversal performed %d exports", svc.ExportCalls)
	}
	if _, err := filepath.Glob(filepath.Join(base, "*")); err != nil {
		t.Fatalf("glob error: %v", err)
	}
	if dirExists(t, base) {
		t.Error("traversal created directories")
	}
}

func dirExists(t *testing.T, path string) bool {
	t.Helper()
	matches, err := filepath.Glob(path)
	if err != nil {
		t.Fatalf("glob error: %v", err)
	}
	return len(matches) > 0
}
