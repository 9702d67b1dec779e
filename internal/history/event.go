package history

import (
	"encoding/json"
	"time"
)

// ActorRef identifies the vendor user that performed an event.
type ActorRef struct {
	ID   string
	Name string
}

// Item is a single field change inside an event. From/To carry vendor
// identifiers when the feed has them; FromText/ToText carry display values.
type Item struct {
	Field    string
	From     *string
	To       *string
	FromText string
	ToText   string
}

// Event is one vendor activity record normalized for replay.
type Event struct {
	ID         string
	Kind       string
	Actor      ActorRef
	OccurredAt time.Time
	Items      []Item
	Comment    string
	// Create marks events that record the entity's creation.
	Create bool
	Raw    json.RawMessage
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
