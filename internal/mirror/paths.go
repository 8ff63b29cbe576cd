package mirror

import (
	"strings"

	"github.com/greghernandez/docsync/internal/utils"
)

// SanitizeTitle makes a remote title usable as a single path element by
// replacing path separators. Two titles may sanitize to the same name; the
// last one processed wins, both on disk and in the state store.
func SanitizeTitle(title string) string {
	s := strings.ReplaceAll(title, "/", "-")
	return strings.ReplaceAll(s, "\\", "-")
}

// DocumentFileName derives the local file name for a document title.
func DocumentFileName(title string) string {
	return SanitizeTitle(title) + utils.ExportExtension
}
