package types

// CLIError is the structured error surfaced to the operator. Code is a stable,
// tool-owned identifier; Context carries operation-specific detail.
type CLIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	HTTPStatus int                    `json:"httpStatus,omitempty"`
	Retryable  bool                   `json:"retryable,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// RequestContext carries per-operation metadata for logging and tracing.
type RequestContext struct {
	Operation string
	TraceID   string
}

// GlobalFlags holds flags shared by every subcommand.
type GlobalFlags struct {
	Username string
	Password string
	Config   string
	LogFile  string
	Verbose  bool
	Quiet    bool
	Force    bool
}
