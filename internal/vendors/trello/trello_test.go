package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

const cardDump = `{
  "id": "card1",
  "lists": [{"id": "l1", "name": "Backlog"}, {"id": "l2", "name": "Doing"}],
  "actions": [
    {"id": "a3", "type": "updateCard", "date": "2021-05-04T10:03:00.000Z", "idMemberCreator": "m1",
     "memberCreator": {"id": "m1", "fullName": "Mia"},
     "data": {"old": {"idList": "l1", "due": null}, "card": {"idList": "l2", "due": "2021-06-01T12:00:00.000Z"}}},
    {"id": "a2", "type": "commentCard", "date": "2021-05-04T10:02:00.000Z", "idMemberCreator": "m1",
     "memberCreator": {"id": "m1", "fullName": "Mia"}, "data": {"text": "**hi**"}},
    {"id": "a1", "type": "createCard", "date": "2021-05-04T10:01:00.000Z", "idMemberCreator": "m2",
     "memberCreator": {"id": "m2", "fullName": "Max"}, "data": {}},
    {"id": "a0", "type": "addMemberToCard", "date": "2021-05-04T10:00:00.000Z", "data": {}}
  ]
}`

func TestDecodeCardDump(t *testing.T) {
	events, err := Decode([]byte(cardDump))
	require.NoError(t, err)
	require.Len(t, events, 4)

	update := events[0]
	assert.Equal(t, "updateCard", update.Kind)
	assert.Equal(t, history.ActorRef{ID: "m1", Name: "Mia"}, update.Actor)
	require.Len(t, update.Items, 2)
	assert.Equal(t, history.Item{Field: "idList", From: history.Ptr("l1"), To: history.Ptr("l2"), FromText: "Backlog", ToText: "Doing"}, update.Items[0])
	assert.Equal(t, history.Item{Field: "due", To: history.Ptr("2021-06-01T12:00:00.000Z"), ToText: "2021-06-01T12:00:00.000Z"}, update.Items[1])

	assert.Equal(t, "**hi**", events[1].Comment)
	assert.True(t, events[2].Create)
	assert.False(t, events[1].Create)
	assert.Equal(t, "addMemberToCard", events[3].Kind)
}

func TestListNamesPreferActionPayload(t *testing.T) {
	d := Decoder{Lists: map[string]string{"l1": "Stale", "l9": "Done"}}
	ev, err := d.Event(Action{
		ID:   "a",
		Type: "updateCard",
		Data: ActionData{
			Old:        map[string]json.RawMessage{"idList": json.RawMessage(`"l1"`)},
			Card:       map[string]json.RawMessage{"idList": json.RawMessage(`"l9"`)},
			ListBefore: &List{ID: "l1", Name: "Todo"},
		},
	})
	require.NoError(t, err)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, "Todo", ev.Items[0].FromText)
	assert.Equal(t, "Done", ev.Items[0].ToText)
}

func TestUnknownListFailsDecode(t *testing.T) {
	d := Decoder{Lists: map[string]string{"l2": "Doing"}}
	_, err := d.Event(Action{
		ID:   "a",
		Type: "updateCard",
		Data: ActionData{
			Old:  map[string]json.RawMessage{"idList": json.RawMessage(`"gone"`)},
			Card: map[string]json.RawMessage{"idList": json.RawMessage(`"l2"`)},
		},
	})
	require.Error(t, err)
	assert.True(t, errorutil.IsNotFound(err))
	assert.Contains(t, err.Error(), "decode trello action a")
}

func TestAdapterIgnoresMemberAndAttachmentActions(t *testing.T) {
	adapter := NewAdapter()
	for _, kind := range Ignored {
		assert.True(t, adapter.IsIgnored(kind))
	}
	for _, kind := range []string{"commentCard", "createCard", "updateCard"} {
		assert.False(t, adapter.IsIgnored(kind))
	}
	spec, ok := adapter.Field("idList")
	require.True(t, ok)
	assert.Equal(t, history.FieldStatusStrict, spec.Kind)
}

func TestFetchActionsWalksBeforeCursor(t *testing.T) {
	var befores []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cards/card1/actions", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "t", r.URL.Query().Get("token"))
		assert.Equal(t, strings.Join(Included, ","), r.URL.Query().Get("filter"))
		before := r.URL.Query().Get("before")
		befores = append(befores, before)

		base := time.Date(2021, 5, 4, 12, 0, 0, 0, time.UTC)
		count := 2
		if before != "" {
			base = base.Add(-2 * time.Minute)
			count = 1
		}
		var actions []string
		for i := 0; i < count; i++ {
			date := base.Add(-time.Duration(i) * time.Minute).Format(cursorLayout)
			actions = append(actions, fmt.Sprintf(`{"id": "x%s%d", "type": "commentCard", "date": %q, "data": {"text": "c"}}`, before, i, date))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(actions, ","))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", "t").WithPageSize(2)
	events, err := client.FetchEvents(context.Background(), "card1")
	require.NoError(t, err)

	assert.Len(t, events, 3)
	assert.Equal(t, []string{"", "2021-05-04T11:59:00.000Z"}, befores)
}

func TestFetchActionsAbortsOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "k", "bad").FetchEvents(context.Background(), "card1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch actions of card card1")
}
