package github

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/history"
)

// EventFromIssueEvent normalizes one timeline event. Events of unknown
// kinds are kept without items and dropped by the replay as empty.
func EventFromIssueEvent(e IssueEvent) history.Event {
	raw, _ := json.Marshal(e)
	return history.Event{
		ID:         "event-" + strconv.FormatInt(e.ID, 10),
		Kind:       e.Event,
		Actor:      actor(e.Actor),
		OccurredAt: e.CreatedAt,
		Items:      items(e),
		Raw:        raw,
	}
}

func items(e IssueEvent) []history.Item {
	switch e.Event {
	case "labeled":
		if e.Label != nil {
			return []history.Item{added(fieldLabeled, labelName(e.Label))}
		}
	case "unlabeled":
		if e.Label != nil {
			return []history.Item{removed(fieldUnlabeled, labelName(e.Label))}
		}
	case "assigned":
		if e.Assignee != nil {
			return []history.Item{added(fieldAssigned, e.Assignee.Login)}
		}
	case "unassigned":
		if e.Assignee != nil {
			return []history.Item{removed(fieldUnassigned, e.Assignee.Login)}
		}
	case "milestoned":
		if e.Milestone != nil {
			return []history.Item{added(fieldMilestone, e.Milestone.Title)}
		}
	case "demilestoned":
		if e.Milestone != nil {
			return []history.Item{removed(fieldMilestone, e.Milestone.Title)}
		}
	case "renamed":
		if e.Rename != nil {
			return []history.Item{{Field: fieldTitle, FromText: e.Rename.From, ToText: e.Rename.To}}
		}
	case "closed":
		return []history.Item{{Field: fieldState, FromText: StatusOpen, ToText: StatusClosed}}
	case "reopened":
		return []history.Item{{Field: fieldState, FromText: StatusClosed, ToText: StatusOpen}}
	}
	return nil
}

// EventFromComment normalizes one issue comment.
func EventFromComment(c Comment) history.Event {
	raw, _ := json.Marshal(c)
	return history.Event{
		ID:         "comment-" + strconv.FormatInt(c.ID, 10),
		Kind:       KindComment,
		Actor:      actor(c.User),
		OccurredAt: c.CreatedAt,
		Comment:    c.Body,
		Raw:        raw,
	}
}

// Events merges timeline events and comments into one feed.
func Events(events []IssueEvent, comments []Comment) []history.Event {
	out := make([]history.Event, 0, len(events)+len(comments))
	for _, e := range events {
		out = append(out, EventFromIssueEvent(e))
	}
	for _, c := range comments {
		out = append(out, EventFromComment(c))
	}
	return out
}

// LabelColors collects the hex color of every label seen in events, keyed
// by the tag the label becomes.
func LabelColors(events []IssueEvent) map[string]string {
	colors := map[string]string{}
	for _, e := range events {
		if e.Label == nil || e.Label.Color == "" {
			continue
		}
		colors[labelTag(e.Label)] = domain.TagColor(e.Label.Color)
	}
	return colors
}

// labelName falls back to the color for unnamed labels.
func labelName(l *Label) string {
	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}
	return l.Color
}

// labelTag is the case-folded tag a label is recorded as.
func labelTag(l *Label) string {
	return strings.ToLower(labelName(l))
}

// Decode parses an IssueDump.
func Decode(data []byte) ([]history.Event, error) {
	var dump IssueDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decode github issue dump: %w", err)
	}
	return Events(dump.Events, dump.Comments), nil
}

func added(field, value string) history.Item {
	return history.Item{Field: field, To: history.Ptr(value), ToText: value}
}

func removed(field, value string) history.Item {
	return history.Item{Field: field, From: history.Ptr(value), FromText: value}
}

func actor(u *User) history.ActorRef {
	if u == nil {
		return history.ActorRef{}
	}
	return history.ActorRef{ID: u.Login, Name: u.Login}
}
