package domain

import (
	"fmt"
	"time"
)

// EntityKind identifies which target model a history stream belongs to.
type EntityKind string

const (
	EntityUserStory EntityKind = "userstory"
	EntityTask      EntityKind = "task"
	EntityIssue     EntityKind = "issue"
	EntityEpic      EntityKind = "epic"
)

// Valid reports whether the kind is one of the known models.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityUserStory, EntityTask, EntityIssue, EntityEpic:
		return true
	}
	return false
}

// Entity is a target-side story, task, issue or epic that receives history.
type Entity struct {
	ID        int64
	ProjectID int64
	Kind      EntityKind
	// ExternalID is the vendor identifier the event feed is fetched by.
	ExternalID string
	CreatedAt  time.Time
	// Children are replayed right after their parent, e.g. a story's subtasks.
	Children []Entity
}

// Key returns the history key, e.g. "userstories.userstory:12".
func (e Entity) Key() string {
	return fmt.Sprintf("%s.%s:%d", appLabel(e.Kind), e.Kind, e.ID)
}

func appLabel(kind EntityKind) string {
	switch kind {
	case EntityUserStory:
		return "userstories"
	case EntityTask:
		return "tasks"
	case EntityIssue:
		return "issues"
	case EntityEpic:
		return "epics"
	}
	return string(kind)
}
