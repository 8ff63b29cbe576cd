package types

// Category labels the remote store attaches to entries. An entry carrying
// exactly one of these is classifiable; anything else is skipped during a
// mirror pass.
const (
	LabelFolder   = "folder"
	LabelDocument = "document"
)

// Entry is one item returned by a folder listing or a title search.
type Entry struct {
	ResourceID     string   `json:"resourceId"`
	ChangeTag      string   `json:"changeTag"`
	Title          string   `json:"title"`
	CategoryLabels []string `json:"categoryLabels"`
	ContentURI     string   `json:"contentUri"`
	ParentURI      string   `json:"parentUri,omitempty"`
}

// IsFolder reports whether the entry is classifiable as a folder.
func (e Entry) IsFolder() bool {
	return e.hasLabel(LabelFolder) && !e.hasLabel(LabelDocument)
}

// IsDocument reports whether the entry is classifiable as a document.
func (e Entry) IsDocument() bool {
	return e.hasLabel(LabelDocument) && !e.hasLabel(LabelFolder)
}

func (e Entry) hasLabel(label string) bool {
	for _, l := range e.CategoryLabels {
		if l == label {
			return true
		}
	}
	return false
}

// Version describes the remote state of a document after an update.
type Version struct {
	ResourceID string `json:"resourceId"`
	ChangeTag  string `json:"changeTag"`
	Link       string `json:"link"`
}
