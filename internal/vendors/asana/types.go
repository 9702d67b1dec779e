// Package asana reads task stories from the Asana REST API.
package asana

import "time"

// Ref is a compact Asana resource reference.
type Ref struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Dates holds the date fields of a due_date_changed story.
type Dates struct {
	DueOn *string `json:"due_on"`
	DueAt *string `json:"due_at"`
}

// Story is one task story: a comment or a system change record.
type Story struct {
	GID             string    `json:"gid"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedBy       *Ref      `json:"created_by"`
	Type            string    `json:"type"`
	ResourceSubtype string    `json:"resource_subtype"`
	Text            string    `json:"text"`
	OldName         string    `json:"old_name"`
	NewName         string    `json:"new_name"`
	OldTextValue    string    `json:"old_text_value"`
	NewTextValue    string    `json:"new_text_value"`
	OldDates        *Dates    `json:"old_dates"`
	NewDates        *Dates    `json:"new_dates"`
	Assignee        *Ref      `json:"assignee"`
	Tag             *Ref      `json:"tag"`
	Attachment      *Ref      `json:"attachment"`
}

// NextPage is Asana's offset pagination token.
type NextPage struct {
	Offset string `json:"offset"`
	Path   string `json:"path"`
	URI    string `json:"uri"`
}

// StoriesPage is one page of /tasks/{gid}/stories.
type StoriesPage struct {
	Data     []Story   `json:"data"`
	NextPage *NextPage `json:"next_page"`
}

// TaskDump is the on-disk export of one task's stories.
type TaskDump struct {
	GID     string  `json:"gid"`
	Stories []Story `json:"stories"`
}
