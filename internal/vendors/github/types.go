// Package github reads issue timelines from the GitHub REST API.
package github

import "time"

// User is a GitHub account.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// Label is an issue label.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Milestone is an issue milestone.
type Milestone struct {
	Title string `json:"title"`
}

// Rename carries the old and new issue titles.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IssueEvent is one entry of /issues/{n}/events.
type IssueEvent struct {
	ID        int64      `json:"id"`
	Event     string     `json:"event"`
	Actor     *User      `json:"actor"`
	CreatedAt time.Time  `json:"created_at"`
	Label     *Label     `json:"label,omitempty"`
	Assignee  *User      `json:"assignee,omitempty"`
	Milestone *Milestone `json:"milestone,omitempty"`
	Rename    *Rename    `json:"rename,omitempty"`
}

// Comment is one entry of /issues/{n}/comments.
type Comment struct {
	ID        int64     `json:"id"`
	User      *User     `json:"user"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueDump is the on-disk export of one issue's feed.
type IssueDump struct {
	Number   int          `json:"number"`
	Events   []IssueEvent `json:"events"`
	Comments []Comment    `json:"comments"`
}
