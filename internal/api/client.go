package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/greghernandez/docsync/internal/logging"
	"github.com/greghernandez/docsync/internal/types"
	"github.com/greghernandez/docsync/internal/utils"
)

// Client is the HTTP implementation of Service. It wraps every call with
// retry logic, request throttling, and per-operation trace IDs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
	logger     logging.Logger

	mu    sync.RWMutex
	token string
}

// Options configures a Client.
type Options struct {
	BaseURL      string
	MaxRetries   int
	RetryDelayMs int
	RateLimitQPS float64
	Timeout      time.Duration
	Logger       logging.Logger
}

// NewClient creates a remote document store client.
func NewClient(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOpLogger()
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = utils.DefaultMaxRetries
	}
	if opts.RetryDelayMs <= 0 {
		opts.RetryDelayMs = utils.DefaultRetryDelayMs
	}
	if opts.RateLimitQPS <= 0 {
		opts.RateLimitQPS = 5
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		maxRetries: opts.MaxRetries,
		retryDelay: time.Duration(opts.RetryDelayMs) * time.Millisecond,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimitQPS), 1),
		logger:     opts.Logger,
	}
}

// SetToken installs the session token used on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// NewRequestContext creates a request context with a fresh trace ID.
func NewRequestContext(operation string) *types.RequestContext {
	return &types.RequestContext{
		Operation: operation,
		TraceID:   uuid.New().String(),
	}
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for an opaque session token. The token is not
// installed on the client; callers decide what to do with it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	reqCtx := NewRequestContext("login")
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	resp, err := ExecuteWithRetry(ctx, c, reqCtx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, "/accounts/login", bytes.NewReader(body), "application/json")
	})
	if err != nil {
		return "", err
	}

	var login loginResponse
	if err := json.Unmarshal(resp, &login); err != nil {
		return "", fmt.Errorf("malformed login response: %w", err)
	}
	if login.Token == "" {
		return "", utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
			"login succeeded but no token was returned").Build())
	}
	return login.Token, nil
}

type listResponse struct {
	Entries []types.Entry `json:"entries"`
}

// ListChildren returns the immediate children of a folder.
func (c *Client) ListChildren(ctx context.Context, folderURI string) ([]types.Entry, error) {
	reqCtx := NewRequestContext("listChildren")
	resp, err := ExecuteWithRetry(ctx, c, reqCtx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, folderURI, nil, "")
	})
	if err != nil {
		return nil, err
	}

	var list listResponse
	if err := json.Unmarshal(resp, &list); err != nil {
		return nil, fmt.Errorf("malformed listing response: %w", err)
	}
	return list.Entries, nil
}

// SearchByTitle returns documents whose title matches, exactly or by substring.
func (c *Client) SearchByTitle(ctx context.Context, title string, exact bool) ([]types.Entry, error) {
	reqCtx := NewRequestContext("searchByTitle")
	query := url.Values{}
	query.Set("title", title)
	if exact {
		query.Set("title-exact", "true")
	}

	resp, err := ExecuteWithRetry(ctx, c, reqCtx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, "/feeds/documents?"+query.Encode(), nil, "")
	})
	if err != nil {
		return nil, err
	}

	var list listResponse
	if err := json.Unmarshal(resp, &list); err != nil {
		return nil, fmt.Errorf("malformed search response: %w", err)
	}
	return list.Entries, nil
}

// Export downloads the document in the export format, writing to localPath.
// The destination is created or truncated; on error the caller owns cleanup.
func (c *Client) Export(ctx context.Context, entry types.Entry, localPath string) error {
	reqCtx := NewRequestContext("export")
	uri := entry.ContentURI
	if strings.Contains(uri, "?") {
		uri += "&format=odt"
	} else {
		uri += "?format=odt"
	}

	data, err := ExecuteWithRetry(ctx, c, reqCtx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, uri, nil, "")
	})
	if err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0644)
}

// Update uploads content as a new version of the document.
func (c *Client) Update(ctx context.Context, resourceID string, content io.Reader) (*types.Version, error) {
	reqCtx := NewRequestContext("update")
	body, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}

	resp, err := ExecuteWithRetry(ctx, c, reqCtx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPut, "/feeds/documents/"+url.PathEscape(resourceID),
			bytes.NewReader(body), utils.ExportMimeType)
	})
	if err != nil {
		return nil, err
	}

	var version types.Version
	if err := json.Unmarshal(resp, &version); err != nil {
		return nil, fmt.Errorf("malformed update response: %w", err)
	}
	return &version, nil
}

// do performs one HTTP exchange and returns the response body. Non-2xx
// statuses are mapped to *httpError so the retry layer can classify them.
func (c *Client) do(ctx context.Context, method, uri string, body io.Reader, contentType string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	target := uri
	if !strings.HasPrefix(uri, "http://") && !strings.HasPrefix(uri, "https://") {
		target = c.baseURL + uri
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpError{
			Status:     resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
			Body:       strings.TrimSpace(string(data)),
		}
	}
	return data, nil
}
