package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is a JSON-over-HTTP client with a base URL, API key auth and
// optional retry logic.
type Client struct {
	baseURL    string
	token      string
	keyParam   string // query parameter carrying the token
	maxRetries int
	httpClient *http.Client
}

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes
	message    string // "error" field parsed from the full body
	retryAfter string // internal: Retry-After header value for 429s
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Message returns the "error" field of a JSON error body, or the raw body
// when it is not JSON.
func (e *APIError) Message() string {
	if e.message != "" {
		return e.message
	}
	if msg := errorField([]byte(e.Body)); msg != "" {
		return msg
	}
	return e.Body
}

func errorField(body []byte) string {
	var v struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return ""
	}
	return v.Error
}

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout. 0 disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithQueryKey renames the query parameter carrying the token. Default: "key".
func WithQueryKey(param string) Option {
	return func(c *Client) {
		c.keyParam = param
	}
}

// WithMaxRetries enables up to n retries on 429 and 5xx responses.
// The default is 0: every request is attempted exactly once.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = max(0, n)
	}
}

// New creates a Client with a base URL and API token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		token:    token,
		keyParam: "key",
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON sends a GET request and unmarshals the JSON response into dest.
// Returns *APIError for non-2xx responses. When retries are enabled, 429
// (honouring Retry-After) and 5xx (exponential backoff: 1s, 2s, 4s...)
// responses are retried.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dest any) error {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if c.keyParam != "" && c.token != "" {
		q.Set(c.keyParam, c.token)
	}
	fullURL := c.baseURL + path
	if len(q) > 0 {
		fullURL += "?" + q.Encode()
	}

	var lastErr *APIError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(attempt, lastErr)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return json.Unmarshal(body, dest)
		}

		bodyStr := string(body)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: bodyStr, message: errorField(body)}

		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.retryAfter = resp.Header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}

		return apiErr
	}

	return lastErr
}

// backoffDelay returns the wait duration before a retry attempt.
func backoffDelay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == http.StatusTooManyRequests && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}
