// Package trello reads card actions from the Trello REST API.
package trello

import (
	"encoding/json"
	"time"
)

// Member is the author of an action.
type Member struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// List is a board column; list names map to statuses.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActionData is the payload of an action. Old holds the previous values of
// the card fields an updateCard action touched; Card holds the new ones.
type ActionData struct {
	Text       string                     `json:"text"`
	Old        map[string]json.RawMessage `json:"old"`
	Card       map[string]json.RawMessage `json:"card"`
	ListBefore *List                      `json:"listBefore"`
	ListAfter  *List                      `json:"listAfter"`
}

// Action is one card action.
type Action struct {
	ID              string     `json:"id"`
	IDMemberCreator string     `json:"idMemberCreator"`
	Type            string     `json:"type"`
	Date            time.Time  `json:"date"`
	MemberCreator   *Member    `json:"memberCreator"`
	Data            ActionData `json:"data"`
}

// CardDump is the on-disk export of one card's actions.
type CardDump struct {
	ID      string   `json:"id"`
	Lists   []List   `json:"lists"`
	Actions []Action `json:"actions"`
}
