// Package httpx holds the read-only JSON client shared by the vendor APIs.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

const (
	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	maxResponseSize = 50 * 1024 * 1024
	maxErrorBody    = 512
)

// Client performs authenticated GET requests against one vendor API.
// Requests are never retried; any non-2xx response aborts the caller.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Authorize decorates every request with vendor credentials.
	Authorize func(req *http.Request)
}

// New creates a client rooted at baseURL.
func New(baseURL string, authorize func(req *http.Request)) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
		Authorize:  authorize,
	}
}

// WithHTTPClient returns a copy of the client using httpClient.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{BaseURL: c.BaseURL, HTTPClient: httpClient, Authorize: c.Authorize}
}

// WithTimeout returns a copy of the client whose requests time out after d.
func (c *Client) WithTimeout(d time.Duration) *Client {
	return c.WithHTTPClient(&http.Client{Timeout: d})
}

// BuildURL constructs a full API URL.
func (c *Client) BuildURL(path string, params url.Values) string {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// GetJSON fetches path and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	urlStr := c.BuildURL(path, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Authorize != nil {
		c.Authorize(req)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errorutil.NewTransportError(urlStr, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errorutil.NewTransportError(urlStr, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorutil.NewTransportError(urlStr, resp.StatusCode, errors.New(truncate(string(body))))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response from %s: %w", urlStr, err)
	}
	return nil
}

// BearerAuth authorizes requests with a bearer token.
func BearerAuth(token string) func(req *http.Request) {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrorBody {
		return s[:maxErrorBody]
	}
	return s
}
