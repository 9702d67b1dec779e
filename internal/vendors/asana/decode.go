package asana

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/history-importer/internal/history"
)

// EventFromStory normalizes one story.
func EventFromStory(s Story) history.Event {
	raw, _ := json.Marshal(s)
	ev := history.Event{
		ID:         s.GID,
		Kind:       kind(s),
		Actor:      actor(s.CreatedBy),
		OccurredAt: s.CreatedAt,
		Raw:        raw,
	}
	if ev.Kind == KindComment {
		ev.Comment = s.Text
		return ev
	}
	ev.Items = items(s)
	return ev
}

func kind(s Story) string {
	if s.Type == "comment" || s.ResourceSubtype == "comment_added" {
		return KindComment
	}
	return s.ResourceSubtype
}

func items(s Story) []history.Item {
	switch s.ResourceSubtype {
	case "name_changed":
		return []history.Item{{Field: fieldName, FromText: s.OldName, ToText: s.NewName}}
	case "notes_changed":
		return []history.Item{{Field: fieldNotes, FromText: s.OldTextValue, ToText: s.NewTextValue}}
	case "assigned":
		if s.Assignee != nil {
			return []history.Item{{Field: fieldAssigned, To: history.Ptr(s.Assignee.GID), ToText: s.Assignee.Name}}
		}
	case "unassigned":
		item := history.Item{Field: fieldUnassigned}
		if s.Assignee != nil {
			item.From = history.Ptr(s.Assignee.GID)
			item.FromText = s.Assignee.Name
		}
		return []history.Item{item}
	case "marked_complete":
		return []history.Item{{Field: fieldCompleted, FromText: StatusOpen, ToText: StatusClosed}}
	case "marked_incomplete":
		return []history.Item{{Field: fieldCompleted, FromText: StatusClosed, ToText: StatusOpen}}
	case "due_date_changed":
		from, to := dueOn(s.OldDates), dueOn(s.NewDates)
		return []history.Item{{Field: fieldDueOn, From: from, To: to, FromText: str(from), ToText: str(to)}}
	case "added_to_tag":
		if s.Tag != nil {
			return []history.Item{{Field: fieldTagAdded, To: history.Ptr(s.Tag.GID), ToText: s.Tag.Name}}
		}
	case "removed_from_tag":
		if s.Tag != nil {
			return []history.Item{{Field: fieldTagRemoved, From: history.Ptr(s.Tag.GID), FromText: s.Tag.Name}}
		}
	case "attachment_added":
		if s.Attachment != nil {
			return []history.Item{{Field: fieldAttachment, To: history.Ptr(s.Attachment.GID), ToText: s.Attachment.Name}}
		}
	}
	return nil
}

// Events normalizes a slice of stories.
func Events(stories []Story) []history.Event {
	out := make([]history.Event, 0, len(stories))
	for _, s := range stories {
		out = append(out, EventFromStory(s))
	}
	return out
}

// Decode parses a TaskDump.
func Decode(data []byte) ([]history.Event, error) {
	var dump TaskDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decode asana task dump: %w", err)
	}
	return Events(dump.Stories), nil
}

func dueOn(d *Dates) *string {
	if d == nil {
		return nil
	}
	if d.DueOn != nil {
		return d.DueOn
	}
	return d.DueAt
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func actor(r *Ref) history.ActorRef {
	if r == nil {
		return history.ActorRef{}
	}
	return history.ActorRef{ID: r.GID, Name: r.Name}
}
