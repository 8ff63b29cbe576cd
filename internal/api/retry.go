package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/types"
	"github.com/greghernandez/docsync/internal/utils"
)

// httpError carries status information for classification by the retry layer.
type httpError struct {
	Status     int
	RetryAfter string
	Body       string
}

func (e *httpError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("remote returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("remote returned %d", e.Status)
}

// ExecuteWithRetry executes a remote call with retry logic
func ExecuteWithRetry[T any](ctx context.Context, client *Client, reqCtx *types.RequestContext, fn func() (T, error)) (T, error) {
	var result T
	var lastErr error

	logger := client.logger.WithTraceID(reqCtx.TraceID)
	logger.Debug("remote operation starting",
		logging.F("operation", reqCtx.Operation),
	)

	start := time.Now()

	for attempt := 0; attempt <= client.maxRetries; attempt++ {
		result, lastErr = fn()
		if lastErr == nil {
			logger.Debug("remote operation completed",
				logging.F("operation", reqCtx.Operation),
				logging.F("duration_ms", time.Since(start).Milliseconds()),
				logging.F("attempts", attempt+1),
			)
			return result, nil
		}

		if !isRetryable(lastErr) {
			logger.Debug("remote operation failed (non-retryable)",
				logging.F("operation", reqCtx.Operation),
				logging.F("error", lastErr.Error()),
			)
			return result, classifyError(lastErr, reqCtx)
		}

		if attempt < client.maxRetries {
			delay := calculateBackoff(client.retryDelay, attempt, lastErr)
			logger.Warn("remote operation failed, retrying",
				logging.F("operation", reqCtx.Operation),
				logging.F("attempt", attempt+1),
				logging.F("delay_ms", delay.Milliseconds()),
				logging.F("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	logger.Error("remote operation failed after max retries",
		logging.F("operation", reqCtx.Operation),
		logging.F("attempts", client.maxRetries+1),
		logging.F("error", lastErr.Error()),
	)
	return result, classifyError(lastErr, reqCtx)
}

// isRetryable checks if an error is retryable
func isRetryable(err error) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	// Transport-level failures (connection reset, DNS) are retryable unless
	// the context was cancelled.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// calculateBackoff calculates the retry delay with exponential backoff
func calculateBackoff(baseDelay time.Duration, attempt int, err error) time.Duration {
	// Honor Retry-After when the remote supplies one
	var httpErr *httpError
	if errors.As(err, &httpErr) && httpErr.RetryAfter != "" {
		if seconds, parseErr := strconv.Atoi(httpErr.RetryAfter); parseErr == nil {
			delay := time.Duration(seconds) * time.Second
			if delay > time.Duration(utils.MaxRetryDelayMs)*time.Millisecond {
				return time.Duration(utils.MaxRetryDelayMs) * time.Millisecond
			}
			return delay
		}
	}

	delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if delay > time.Duration(utils.MaxRetryDelayMs)*time.Millisecond {
		delay = time.Duration(utils.MaxRetryDelayMs) * time.Millisecond
	}

	// jitter of up to ±25%
	jitterRange := delay / 4
	if jitterRange > 0 {
		jitter := time.Duration(rand.Int63n(int64(jitterRange*2))) - jitterRange
		delay += jitter
	}
	if delay < 0 {
		delay = baseDelay
	}
	return delay
}

// classifyError converts transport errors into stable application errors.
func classifyError(err error, reqCtx *types.RequestContext) error {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case 401:
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthExpired,
				"the remote store rejected the session credential").
				WithHTTPStatus(httpErr.Status).
				WithContext("operation", reqCtx.Operation).
				Build())
		case 403:
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
				"the remote store refused access").
				WithHTTPStatus(httpErr.Status).
				WithContext("operation", reqCtx.Operation).
				Build())
		case 429:
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeRateLimited,
				"the remote store is rate limiting requests").
				WithHTTPStatus(httpErr.Status).
				WithRetryable(true).
				WithContext("operation", reqCtx.Operation).
				Build())
		default:
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeRemoteError, httpErr.Error()).
				WithHTTPStatus(httpErr.Status).
				WithContext("operation", reqCtx.Operation).
				Build())
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return utils.NewAppError(utils.NewCLIError(utils.ErrCodeNetworkError, err.Error()).
		WithRetryable(true).
		WithContext("operation", reqCtx.Operation).
		Build())
}
