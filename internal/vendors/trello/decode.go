package trello

import (
	"encoding/json"
	"fmt"

	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// updateKeys are the updateCard fields replayed, in a stable order.
var updateKeys = []string{"desc", "idList", "name", "due"}

// Decoder normalizes card actions. Lists resolves list ids to names when
// an action lacks listBefore/listAfter.
type Decoder struct {
	Lists map[string]string
}

// Event normalizes one action.
func (d Decoder) Event(a Action) (history.Event, error) {
	raw, _ := json.Marshal(a)
	ev := history.Event{
		ID:         a.ID,
		Kind:       a.Type,
		Actor:      actor(a),
		OccurredAt: a.Date,
		Raw:        raw,
	}

	switch {
	case a.Type == "commentCard":
		ev.Comment = a.Data.Text
	case createKinds[a.Type]:
		ev.Create = true
	case a.Type == "updateCard":
		items, err := d.updateItems(a)
		if err != nil {
			return history.Event{}, fmt.Errorf("decode trello action %s: %w", a.ID, err)
		}
		ev.Items = items
	}
	return ev, nil
}

// Events normalizes a slice of actions.
func (d Decoder) Events(actions []Action) ([]history.Event, error) {
	out := make([]history.Event, 0, len(actions))
	for _, a := range actions {
		ev, err := d.Event(a)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (d Decoder) updateItems(a Action) ([]history.Item, error) {
	var items []history.Item
	for _, key := range updateKeys {
		oldRaw, touched := a.Data.Old[key]
		if !touched {
			continue
		}
		from, err := nullableString(oldRaw)
		if err != nil {
			return nil, fmt.Errorf("old %s: %w", key, err)
		}
		to, err := nullableString(a.Data.Card[key])
		if err != nil {
			return nil, fmt.Errorf("card %s: %w", key, err)
		}

		item := history.Item{Field: key, From: from, To: to, FromText: deref(from), ToText: deref(to)}
		if key == "idList" {
			if item.FromText, err = d.listName(a.Data.ListBefore, from); err != nil {
				return nil, err
			}
			if item.ToText, err = d.listName(a.Data.ListAfter, to); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// listName resolves the list a card moved from or to. A list id with no
// known name is a NOT_FOUND error since lists map to statuses.
func (d Decoder) listName(list *List, id *string) (string, error) {
	if list != nil && list.Name != "" {
		return list.Name, nil
	}
	if id == nil {
		return "", nil
	}
	if name, ok := d.Lists[*id]; ok && name != "" {
		return name, nil
	}
	return "", errorutil.NewNotFound("trello list", map[string]any{"list_id": *id})
}

// Decode parses a CardDump.
func Decode(data []byte) ([]history.Event, error) {
	var dump CardDump
	if err := json.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("decode trello card dump: %w", err)
	}
	lists := make(map[string]string, len(dump.Lists))
	for _, l := range dump.Lists {
		lists[l.ID] = l.Name
	}
	return Decoder{Lists: lists}.Events(dump.Actions)
}

func nullableString(raw json.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var v any
		if err2 := json.Unmarshal(raw, &v); err2 != nil {
			return nil, err
		}
		s = fmt.Sprint(v)
	}
	return &s, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func actor(a Action) history.ActorRef {
	ref := history.ActorRef{ID: a.IDMemberCreator}
	if a.MemberCreator != nil {
		if ref.ID == "" {
			ref.ID = a.MemberCreator.ID
		}
		ref.Name = a.MemberCreator.FullName
	}
	return ref
}
