package asana

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/vendors/httpx"
)

const (
	// DefaultAPIEndpoint is the public Asana API.
	DefaultAPIEndpoint = "https://app.asana.com/api/1.0"
	// MaxPageSize is the largest limit Asana accepts.
	MaxPageSize = 100
)

var storyFields = "gid,created_at,created_by.name,type,resource_subtype,text,old_name,new_name," +
	"old_text_value,new_text_value,old_dates,new_dates,assignee.name,tag.name,attachment.name"

// Client fetches task stories.
type Client struct {
	http     *httpx.Client
	pageSize int
}

// NewClient creates a client authenticated with a personal access token.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIEndpoint
	}
	return &Client{http: httpx.New(baseURL, httpx.BearerAuth(token)), pageSize: MaxPageSize}
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

// WithPageSize returns a client requesting size stories per page.
func (c *Client) WithPageSize(size int) *Client {
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	return &Client{http: c.http, pageSize: size}
}

// FetchStories returns every story of task gid in creation order.
func (c *Client) FetchStories(ctx context.Context, gid string) ([]Story, error) {
	var all []Story
	offset := ""
	for {
		params := url.Values{
			"limit":      {strconv.Itoa(c.pageSize)},
			"opt_fields": {storyFields},
		}
		if offset != "" {
			params.Set("offset", offset)
		}

		var page StoriesPage
		if err := c.http.GetJSON(ctx, "/tasks/"+url.PathEscape(gid)+"/stories", params, &page); err != nil {
			return nil, fmt.Errorf("fetch stories of task %s: %w", gid, err)
		}
		all = append(all, page.Data...)
		if len(page.Data) < c.pageSize || page.NextPage == nil || page.NextPage.Offset == "" {
			return all, nil
		}
		offset = page.NextPage.Offset
	}
}

// FetchEvents implements history.Source.
func (c *Client) FetchEvents(ctx context.Context, gid string) ([]history.Event, error) {
	stories, err := c.FetchStories(ctx, gid)
	if err != nil {
		return nil, err
	}
	return Events(stories), nil
}
