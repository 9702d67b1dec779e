package jira

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/history-importer/internal/history"
)

// HistoryEvent normalizes one changelog history.
func HistoryEvent(h History) history.Event {
	items := make([]history.Item, 0, len(h.Items))
	for _, it := range h.Items {
		items = append(items, history.Item{
			Field:    it.Field,
			From:     it.From,
			To:       it.To,
			FromText: str(it.FromString),
			ToText:   str(it.ToString),
		})
	}
	raw, _ := json.Marshal(h)
	return history.Event{
		ID:         "changelog-" + h.ID,
		Kind:       KindChangelog,
		Actor:      actor(h.Author, h.Author.Key),
		OccurredAt: h.Created.Time,
		Items:      items,
		Raw:        raw,
	}
}

// CommentEvent normalizes one comment. Comment authors are bound by
// account name rather than key.
func CommentEvent(c Comment) history.Event {
	raw, _ := json.Marshal(c)
	return history.Event{
		ID:         "comment-" + c.ID,
		Kind:       KindComment,
		Actor:      actor(c.Author, c.Author.Name),
		OccurredAt: c.Created.Time,
		Comment:    c.Body,
		Raw:        raw,
	}
}

// Events merges changelog histories and comments into one feed.
func Events(histories []History, comments []Comment) []history.Event {
	events := make([]history.Event, 0, len(histories)+len(comments))
	for _, h := range histories {
		events = append(events, HistoryEvent(h))
	}
	for _, c := range comments {
		events = append(events, CommentEvent(c))
	}
	return events
}

// Decode parses an IssueDump.
func Decode(data []byte) ([]history.Event, error) {
	var dump IssueDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decode jira issue dump: %w", err)
	}
	return Events(dump.Changelog.Histories, dump.Comments), nil
}

func actor(u User, id string) history.ActorRef {
	if id == "" {
		id = u.AccountID
	}
	return history.ActorRef{ID: id, Name: u.DisplayName}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
