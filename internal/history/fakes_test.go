package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/history-importer/internal/domain"
)

type fakeSink struct {
	entries     []*domain.HistoryEntry
	corrections map[int64][]time.Time
	backdated   []time.Time
	nextID      int64
	createErr   error
}

func newFakeSink() *fakeSink {
	return &fakeSink{corrections: map[int64][]time.Time{}}
}

func (s *fakeSink) CreateHistoryEntry(_ context.Context, entry *domain.HistoryEntry) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	entry.ID = s.nextID
	entry.CreatedAt = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeSink) CorrectTimestamp(_ context.Context, entryID int64, at time.Time) error {
	s.corrections[entryID] = append(s.corrections[entryID], at)
	return nil
}

func (s *fakeSink) BackdateEntity(_ context.Context, _ domain.Entity, at time.Time) error {
	s.backdated = append(s.backdated, at)
	return nil
}

type fakeLookups struct {
	statuses    map[string]int64
	milestones  map[string]int64
	attributes  map[string]int64
	points      map[float64]int64
	mainRole    int64
	nextPointID int64
	failStatus  bool
}

func newFakeLookups() *fakeLookups {
	return &fakeLookups{
		statuses:    map[string]int64{},
		milestones:  map[string]int64{},
		attributes:  map[string]int64{},
		points:      map[float64]int64{},
		mainRole:    7,
		nextPointID: 100,
	}
}

func (l *fakeLookups) Status(_ context.Context, _ int64, kind domain.EntityKind, name string) (Ref, error) {
	if l.failStatus {
		return Ref{}, errors.New("connection reset")
	}
	id, ok := l.statuses[string(kind)+"/"+name]
	return Ref{ID: id, Found: ok}, nil
}

func (l *fakeLookups) Milestone(_ context.Context, _ int64, name string) (Ref, error) {
	id, ok := l.milestones[name]
	return Ref{ID: id, Found: ok}, nil
}

func (l *fakeLookups) CustomAttribute(_ context.Context, _ int64, kind domain.EntityKind, name string) (Ref, error) {
	id, ok := l.attributes[string(kind)+"/"+name]
	return Ref{ID: id, Found: ok}, nil
}

func (l *fakeLookups) MainRole(_ context.Context, _ int64) (Ref, error) {
	if l.mainRole == 0 {
		return Ref{}, nil
	}
	return Resolved(l.mainRole), nil
}

func (l *fakeLookups) Points(_ context.Context, _ int64, value float64) (int64, error) {
	if id, ok := l.points[value]; ok {
		return id, nil
	}
	l.nextPointID++
	l.points[value] = l.nextPointID
	return l.nextPointID, nil
}

type upperRenderer struct{}

func (upperRenderer) Render(_ int64, text string) string {
	if text == "" {
		return ""
	}
	return "<p>" + strings.ToUpper(text) + "</p>"
}

var testFields = map[string]FieldSpec{
	"summary":      {Kind: FieldSubject},
	"description":  {Kind: FieldDescription},
	"status":       {Kind: FieldStatus},
	"state":        {Kind: FieldStatusStrict},
	"assignee":     {Kind: FieldAssignee},
	"assigned":     {Kind: FieldAssigneeAdd},
	"unassigned":   {Kind: FieldAssigneeRemove},
	"labels":       {Kind: FieldTags},
	"labeled":      {Kind: FieldTagAdd},
	"unlabeled":    {Kind: FieldTagRemove},
	"Sprint":       {Kind: FieldMilestone},
	"milestone":    {Kind: FieldMilestoneDelta},
	"Story Points": {Kind: FieldPoints},
	"Attachment":   {Kind: FieldAttachment},
	"duedate":      {Kind: FieldCustomAttribute, Attribute: "Due date", Raw: true},
	"priority":     {Kind: FieldCustomAttribute, Attribute: "Priority"},
	"Epic Color":   {Kind: FieldEpicColor},
	"Rank":         {Kind: FieldNoop},
}

func testAdapter() *Table {
	return NewTable("test", []string{"referenced", "mentioned"}, testFields)
}

var testEntity = domain.Entity{ID: 12, ProjectID: 3, Kind: domain.EntityUserStory, ExternalID: "PROJ-1"}

func at(minute int) time.Time {
	return time.Date(2021, 5, 4, 10, minute, 0, 0, time.UTC)
}

func itemEvent(id string, minute int, items ...Item) Event {
	return Event{
		ID:         id,
		Kind:       "change",
		Actor:      ActorRef{ID: "u-" + id, Name: fmt.Sprintf("User %s", id)},
		OccurredAt: at(minute),
		Items:      items,
	}
}
