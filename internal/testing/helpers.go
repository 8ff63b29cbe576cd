// Package testing provides shared fixtures for docsync tests.
package testing

import (
	"github.com/greghernandez/docsync/internal/types"
)

// TestDocument creates a document entry for testing
func TestDocument(id, title, tag string) types.Entry {
	return types.Entry{
		ResourceID:     id,
		ChangeTag:      tag,
		Title:          title,
		CategoryLabels: []string{types.LabelDocument},
		ContentURI:     "/feeds/download/" + id,
	}
}

// TestFolder creates a folder entry for testing
func TestFolder(id, title string) types.Entry {
	return types.Entry{
		ResourceID:     id,
		Title:          title,
		CategoryLabels: []string{types.LabelFolder},
		ContentURI:     "/feeds/folders/" + id + "/contents",
	}
}

// TestUnclassified creates an entry carrying both labels, which a mirror pass
// must skip
func TestUnclassified(id, title string) types.Entry {
	return types.Entry{
		ResourceID:     id,
		Title:          title,
		CategoryLabels: []string{types.LabelFolder, types.LabelDocument},
		ContentURI:     "/feeds/download/" + id,
	}
}
