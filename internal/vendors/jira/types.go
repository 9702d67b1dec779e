// Package jira reads issue changelogs and comments from the Jira REST API.
package jira

import (
	"fmt"
	"time"
)

// User is a Jira account reference.
type User struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

// ChangeItem is a single field change inside a changelog history.
type ChangeItem struct {
	Field      string  `json:"field"`
	FieldType  string  `json:"fieldtype"`
	From       *string `json:"from"`
	FromString *string `json:"fromString"`
	To         *string `json:"to"`
	ToString   *string `json:"toString"`
}

// History is one changelog group: one author, one timestamp, many items.
type History struct {
	ID      string       `json:"id"`
	Author  User         `json:"author"`
	Created Timestamp    `json:"created"`
	Items   []ChangeItem `json:"items"`
}

// Comment is an issue comment.
type Comment struct {
	ID      string    `json:"id"`
	Author  User      `json:"author"`
	Body    string    `json:"body"`
	Created Timestamp `json:"created"`
}

// ChangelogPage is one page of /issue/{key}/changelog.
type ChangelogPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Values     []History `json:"values"`
}

// CommentPage is one page of /issue/{key}/comment.
type CommentPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Comments   []Comment `json:"comments"`
}

// IssueDump is the on-disk export of one issue's feed.
type IssueDump struct {
	Key       string `json:"key"`
	Changelog struct {
		Histories []History `json:"histories"`
	} `json:"changelog"`
	Comments []Comment `json:"comments"`
}

// Timestamp parses Jira's "2006-01-02T15:04:05.000-0700" format.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339Nano,
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' {
		return fmt.Errorf("jira timestamp: unexpected %s", raw)
	}
	raw = raw[1 : len(raw)-1]
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("jira timestamp: cannot parse %q", raw)
}
