package utils

import (
	"errors"
	"fmt"

	"github.com/greghernandez/docsync/internal/types"
)

// Exit codes
const (
	ExitSuccess = 0
	// Auth errors (10-19)
	ExitAuthRequired = 10
	ExitAuthExpired  = 11
	// Sync errors (20-29)
	ExitMirrorRootFailed = 20
	ExitWatchFailed      = 21
	ExitPullFailed       = 22
	// Network errors (30-39)
	ExitNetworkError = 30
	ExitRateLimited  = 31
	// Validation errors (40-49)
	ExitInvalidArgument = 40
	// Daemon errors (50-59)
	ExitDaemonNotRunning     = 50
	ExitDaemonAlreadyRunning = 51
	// Unknown
	ExitUnknown = 99
)

// Error codes (tool-owned, stable)
const (
	ErrCodeAuthRequired         = "AUTH_REQUIRED"
	ErrCodeAuthExpired          = "AUTH_EXPIRED"
	ErrCodeMirrorRootFailed     = "MIRROR_ROOT_FAILED"
	ErrCodeWatchFailed          = "WATCH_FAILED"
	ErrCodeExportFailed         = "EXPORT_FAILED"
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInvalidArgument      = "INVALID_ARGUMENT"
	ErrCodeDaemonNotRunning     = "DAEMON_NOT_RUNNING"
	ErrCodeDaemonAlreadyRunning = "DAEMON_ALREADY_RUNNING"
	ErrCodeRemoteError          = "REMOTE_ERROR"
	ErrCodeUnknown              = "UNKNOWN"
)

// CLIErrorBuilder helps construct CLIError instances
type CLIErrorBuilder struct {
	err types.CLIError
}

// NewCLIError creates a new error builder
func NewCLIError(code, message string) *CLIErrorBuilder {
	return &CLIErrorBuilder{
		err: types.CLIError{
			Code:    code,
			Message: message,
		},
	}
}

func (b *CLIErrorBuilder) WithHTTPStatus(status int) *CLIErrorBuilder {
	b.err.HTTPStatus = status
	return b
}

func (b *CLIErrorBuilder) WithRetryable(retryable bool) *CLIErrorBuilder {
	b.err.Retryable = retryable
	return b
}

func (b *CLIErrorBuilder) WithContext(key string, value interface{}) *CLIErrorBuilder {
	if b.err.Context == nil {
		b.err.Context = make(map[string]interface{})
	}
	b.err.Context[key] = value
	return b
}

func (b *CLIErrorBuilder) Build() types.CLIError {
	return b.err
}

// GetExitCode returns the exit code for an error code
func GetExitCode(errorCode string) int {
	mapping := map[string]int{
		ErrCodeAuthRequired:         ExitAuthRequired,
		ErrCodeAuthExpired:          ExitAuthExpired,
		ErrCodeMirrorRootFailed:     ExitMirrorRootFailed,
		ErrCodeWatchFailed:          ExitWatchFailed,
		ErrCodeExportFailed:         ExitPullFailed,
		ErrCodeNetworkError:         ExitNetworkError,
		ErrCodeRateLimited:          ExitRateLimited,
		ErrCodeInvalidArgument:      ExitInvalidArgument,
		ErrCodeDaemonNotRunning:     ExitDaemonNotRunning,
		ErrCodeDaemonAlreadyRunning: ExitDaemonAlreadyRunning,
	}
	if code, ok := mapping[errorCode]; ok {
		return code
	}
	return ExitUnknown
}

// AppError is a custom error type that carries CLI error info
type AppError struct {
	CLIError types.CLIError
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.CLIError.Code, e.CLIError.Message)
}

// NewAppError creates an AppError from a CLIError
func NewAppError(cliErr types.CLIError) *AppError {
	return &AppError{CLIError: cliErr}
}

// IsAuthError reports whether err is an authorization failure from the remote
// store. Callers must re-raise these rather than treat them as per-item skips.
func IsAuthError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.CLIError.Code {
		case ErrCodeAuthRequired, ErrCodeAuthExpired:
			return true
		}
	}
	return false
}

// ExitCodeFor maps any error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return GetExitCode(appErr.CLIError.Code)
	}
	return ExitUnknown
}
