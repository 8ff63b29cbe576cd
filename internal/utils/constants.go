package utils

// Export format for mirrored documents. One format per document; the remote
// store converts on export.
const (
	ExportExtension = ".odt"
	ExportMimeType  = "application/vnd.oasis.opendocument.text"
)

// StateFileName is the hidden state store file kept inside the mirror root.
const StateFileName = ".docsync.db"

// Retry shaping for remote calls.
const (
	DefaultMaxRetries     = 3
	DefaultRetryDelayMs   = 1000
	MaxRetryDelayMs       = 30000
	DefaultRequestTimeout = 60
)
