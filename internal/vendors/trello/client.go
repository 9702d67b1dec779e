package trello

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/vendors/httpx"
)

const (
	// DefaultAPIEndpoint is the public Trello API.
	DefaultAPIEndpoint = "https://api.trello.com/1"
	// MaxPageSize is the largest action limit Trello accepts.
	MaxPageSize = 1000

	cursorLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Client fetches card actions.
type Client struct {
	http     *httpx.Client
	pageSize int
	lists    map[string]string
}

// NewClient creates a client authenticated with an API key and token.
func NewClient(baseURL, apiKey, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIEndpoint
	}
	authorize := func(req *http.Request) {
		q := req.URL.Query()
		q.Set("key", apiKey)
		q.Set("token", token)
		req.URL.RawQuery = q.Encode()
	}
	return &Client{http: httpx.New(baseURL, authorize), pageSize: MaxPageSize}
}

// WithHTTP returns a client using the given transport.
func (c *Client) WithHTTP(h *httpx.Client) *Client {
	return &Client{http: h, pageSize: c.pageSize, lists: c.lists}
}

// WithTimeout returns a client whose requests time out after d.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d <= 0 {
		return c
	}
	return c.WithHTTP(c.http.WithTimeout(d))
}

// WithPageSize returns a client requesting size actions per page.
func (c *Client) WithPageSize(size int) *Client {
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	return &Client{http: c.http, pageSize: size, lists: c.lists}
}

// WithLists returns a client that resolves list ids through lists.
func (c *Client) WithLists(lists map[string]string) *Client {
	return &Client{http: c.http, pageSize: c.pageSize, lists: lists}
}

// FetchLists returns the lists of a board keyed by id.
func (c *Client) FetchLists(ctx context.Context, boardID string) (map[string]string, error) {
	var lists []List
	params := url.Values{"filter": {"all"}, "fields": {"name"}}
	if err := c.http.GetJSON(ctx, "/boards/"+url.PathEscape(boardID)+"/lists", params, &lists); err != nil {
		return nil, fmt.Errorf("fetch lists of board %s: %w", boardID, err)
	}
	out := make(map[string]string, len(lists))
	for _, l := range lists {
		out[l.ID] = l.Name
	}
	return out, nil
}

// FetchActions returns every replayed action of a card, newest first. Pages
// are walked with a before=<oldest date seen> cursor.
func (c *Client) FetchActions(ctx context.Context, cardID string) ([]Action, error) {
	var all []Action
	before := ""
	for {
		params := url.Values{
			"filter":               {strings.Join(Included, ",")},
			"limit":                {strconv.Itoa(c.pageSize)},
			"memberCreator":        {"true"},
			"memberCreator_fields": {"fullName,username"},
		}
		if before != "" {
			params.Set("before", before)
		}

		var page []Action
		if err := c.http.GetJSON(ctx, "/cards/"+url.PathEscape(cardID)+"/actions", params, &page); err != nil {
			return nil, fmt.Errorf("fetch actions of card %s: %w", cardID, err)
		}
		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}
		before = page[len(page)-1].Date.UTC().Format(cursorLayout)
	}
}

// FetchEvents implements history.Source.
func (c *Client) FetchEvents(ctx context.Context, cardID string) ([]history.Event, error) {
	actions, err := c.FetchActions(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return Decoder{Lists: c.lists}.Events(actions)
}
