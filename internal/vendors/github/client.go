package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/vendors/httpx"
)

const (
	// DefaultAPIEndpoint is the public GitHub API.
	DefaultAPIEndpoint = "https://api.github.com"
	// MaxPageSize is the largest per_page GitHub accepts.
	MaxPageSize = 100
)

// Client fetches issue timelines for one repository.
type Client struct {
	http     *httpx.Client
	owner    string
	repo     string
	pageSize int

	mu     sync.Mutex
	colors map[string]string
}

// NewClient creates a client for owner/repo.
func NewClient(baseURL, token, owner, repo string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIEndpoint
	}
	h := httpx.New(baseURL, httpx.BearerAuth(token))
	return &Client{http: h, owner: owner, repo: repo, pageSize: MaxPageSize, colors: map[string]string{}}
}

// WithHTTP returns a client using the given transport.
func (c *Client) WithHTTP(h *httpx.Client) *Client {
	return &Client{http: h, owner: c.owner, repo: c.repo, pageSize: c.pageSize, colors: map[string]string{}}
}

// WithTimeout returns a client whose requests time out after d.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d <= 0 {
		return c
	}
	return c.WithHTTP(c.http.WithTimeout(d))
}

// WithPageSize returns a client requesting size results per page.
func (c *Client) WithPageSize(size int) *Client {
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	return &Client{http: c.http, owner: c.owner, repo: c.repo, pageSize: size, colors: map[string]string{}}
}

// FetchIssueEvents returns every timeline event of issue number.
func (c *Client) FetchIssueEvents(ctx context.Context, number string) ([]IssueEvent, error) {
	events, err := fetchAll[IssueEvent](ctx, c, c.issuePath(number)+"/events")
	if err != nil {
		return nil, fmt.Errorf("fetch events of issue %s: %w", number, err)
	}
	return events, nil
}

// FetchComments returns every comment of issue number.
func (c *Client) FetchComments(ctx context.Context, number string) ([]Comment, error) {
	comments, err := fetchAll[Comment](ctx, c, c.issuePath(number)+"/comments")
	if err != nil {
		return nil, fmt.Errorf("fetch comments of issue %s: %w", number, err)
	}
	return comments, nil
}

// FetchEvents implements history.Source. The external ID is the issue
// number, optionally prefixed with "#".
func (c *Client) FetchEvents(ctx context.Context, externalID string) ([]history.Event, error) {
	number := strings.TrimPrefix(externalID, "#")
	events, err := c.FetchIssueEvents(ctx, number)
	if err != nil {
		return nil, err
	}
	comments, err := c.FetchComments(ctx, number)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for name, color := range LabelColors(events) {
		c.colors[name] = color
	}
	c.mu.Unlock()

	return Events(events, comments), nil
}

// LabelColors returns the label colors seen by FetchEvents so far.
func (c *Client) LabelColors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.colors))
	for name, color := range c.colors {
		out[name] = color
	}
	return out
}

// fetchAll walks page/per_page until a page comes back short.
func fetchAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		params := url.Values{
			"per_page": {strconv.Itoa(c.pageSize)},
			"page":     {strconv.Itoa(page)},
		}
		var items []T
		if err := c.http.GetJSON(ctx, path, params, &items); err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < c.pageSize {
			return all, nil
		}
	}
}

func (c *Client) issuePath(number string) string {
	return "/repos/" + url.PathEscape(c.owner) + "/" + url.PathEscape(c.repo) + "/issues/" + url.PathEscape(number)
}
