package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/vendors/httpx"
)

// DefaultPageSize is the maxResults requested per page.
const DefaultPageSize = 100

// Client fetches issue feeds from a Jira server.
type Client struct {
	http     *httpx.Client
	pageSize int
}

// NewClient creates a client for the Jira server at baseURL. A username
// selects basic auth with token as the password; otherwise token is sent as
// a bearer token.
func NewClient(baseURL, username, token string) *Client {
	authorize := httpx.BearerAuth(token)
	if username != "" {
		authorize = func(req *http.Request) {
			req.SetBasicAuth(username, token)
		}
	}
	return &Client{
		http:     httpx.New(baseURL+"/rest/api/2", authorize),
		pageSize: DefaultPageSize,
	}
}

// WithHTTP returns a client using the given transport.
func (c *Client) WithHTTP(h *httpx.Client) *Client {
	return &Client{http: h, pageSize: c.pageSize}
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
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Client{http: c.http, pageSize: size}
}

// FetchChangelog returns every changelog history of issue key.
func (c *Client) FetchChangelog(ctx context.Context, key string) ([]History, error) {
	var all []History
	offset := 0
	for {
		var page ChangelogPage
		err := c.http.GetJSON(ctx, "/issue/"+url.PathEscape(key)+"/changelog", c.pageParams(offset), &page)
		if err != nil {
			return nil, fmt.Errorf("fetch changelog of %s: %w", key, err)
		}
		all = append(all, page.Values...)
		offset += len(page.Values)
		if len(page.Values) < c.pageSize {
			return all, nil
		}
	}
}

// FetchComments returns every comment of issue key.
func (c *Client) FetchComments(ctx context.Context, key string) ([]Comment, error) {
	var all []Comment
	offset := 0
	for {
		var page CommentPage
		err := c.http.GetJSON(ctx, "/issue/"+url.PathEscape(key)+"/comment", c.pageParams(offset), &page)
		if err != nil {
			return nil, fmt.Errorf("fetch comments of %s: %w", key, err)
		}
		all = append(all, page.Comments...)
		offset += len(page.Comments)
		if len(page.Comments) < c.pageSize {
			return all, nil
		}
	}
}

// FetchEvents implements history.Source.
func (c *Client) FetchEvents(ctx context.Context, key string) ([]history.Event, error) {
	histories, err := c.FetchChangelog(ctx, key)
	if err != nil {
		return nil, err
	}
	comments, err := c.FetchComments(ctx, key)
	if err != nil {
		return nil, err
	}
	return Events(histories, comments), nil
}

func (c *Client) pageParams(offset int) url.Values {
	return url.Values{
		"startAt":    {strconv.Itoa(offset)},
		"maxResults": {strconv.Itoa(c.pageSize)},
	}
}
