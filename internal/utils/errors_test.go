package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"auth required", NewAppError(NewCLIError(ErrCodeAuthRequired, "login needed").Build()), ExitAuthRequired},
		{"auth expired", NewAppError(NewCLIError(ErrCodeAuthExpired, "token rejected").Build()), ExitAuthExpired},
		{"mirror root", NewAppError(NewCLIError(ErrCodeMirrorRootFailed, "mkdir failed").Build()), ExitMirrorRootFailed},
		{"watch", NewAppError(NewCLIError(ErrCodeWatchFailed, "inotify limit").Build()), ExitWatchFailed},
		{"rate limited", NewAppError(NewCLIError(ErrCodeRateLimited, "slow down").Build()), ExitRateLimited},
		{"daemon not running", NewAppError(NewCLIError(ErrCodeDaemonNotRunning, "no pidfile").Build()), ExitDaemonNotRunning},
		{"daemon already running", NewAppError(NewCLIError(ErrCodeDaemonAlreadyRunning, "pid alive").Build()), ExitDaemonAlreadyRunning},
		{"wrapped app error", fmt.Errorf("run: %w", NewAppError(NewCLIError(ErrCodeNetworkError, "refused").Build())), ExitNetworkError},
		{"plain error", errors.New("boom"), ExitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	authErr := NewAppError(NewCLIError(ErrCodeAuthExpired, "token rejected").Build())
	if !IsAuthError(authErr) {
		t.Error("expected auth error")
	}
	if !IsAuthError(fmt.Errorf("pull: %w", authErr)) {
		t.Error("expected wrapped auth error to match")
	}
	if IsAuthError(NewAppError(NewCLIError(ErrCodeNetworkError, "refused").Build())) {
		t.Error("network error is not an auth error")
	}
	if IsAuthError(errors.New("boom")) {
		t.Error("plain error is not an auth error")
	}
}

func TestCLIErrorBuilder(t *testing.T) {
	cliErr := NewCLIError(ErrCodeRateLimited, "too many requests").
		WithHTTPStatus(429).
		WithRetryable(true).
		WithContext("operation", "documents.list").
		Build()

	if cliErr.Code != ErrCodeRateLimited {
		t.Errorf("Code = %q", cliErr.Code)
	}
	if cliErr.HTTPStatus != 429 {
		t.Errorf("HTTPStatus = %d", cliErr.HTTPStatus)
	}
	if !cliErr.Retryable {
		t.Error("expected retryable")
	}
	if cliErr.Context["operation"] != "documents.list" {
		t.Errorf("Context = %v", cliErr.Context)
	}
}
