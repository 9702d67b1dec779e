package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/history-importer/internal/bindings"
	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/events"
	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/observability"
	"github.com/spec-kit/history-importer/internal/vendors"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

type stubLookups struct {
	statuses map[string]int64
}

func (l *stubLookups) Status(_ context.Context, _ int64, _ domain.EntityKind, name string) (history.Ref, error) {
	id, ok := l.statuses[name]
	return history.Ref{ID: id, Found: ok}, nil
}

func (l *stubLookups) Milestone(context.Context, int64, string) (history.Ref, error) {
	return history.Ref{}, nil
}

func (l *stubLookups) CustomAttribute(context.Context, int64, domain.EntityKind, string) (history.Ref, error) {
	return history.Ref{}, nil
}

func (l *stubLookups) MainRole(context.Context, int64) (history.Ref, error) {
	return history.Resolved(1), nil
}

func (l *stubLookups) Points(context.Context, int64, float64) (int64, error) {
	return 1, nil
}

type memorySink struct {
	mu      sync.Mutex
	entries []*domain.HistoryEntry
	nextID  int64
}

func (s *memorySink) CreateHistoryEntry(_ context.Context, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) CorrectTimestamp(context.Context, int64, time.Time) error {
	return nil
}

func (s *memorySink) BackdateEntity(context.Context, domain.Entity, time.Time) error {
	return nil
}

func (s *memorySink) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		keys = append(keys, e.Key)
	}
	return keys
}

type mapSource struct {
	feeds   map[string][]history.Event
	fetched []string
	colors  map[string]string
}

func (s *mapSource) FetchEvents(_ context.Context, externalID string) ([]history.Event, error) {
	s.fetched = append(s.fetched, externalID)
	feed, ok := s.feeds[externalID]
	if !ok {
		return nil, errorutil.NewTransportError("https://api.github.test/"+externalID, 404, nil)
	}
	return feed, nil
}

func (s *mapSource) LabelColors() map[string]string {
	return s.colors
}

type stubBindings struct {
	table history.UserTable
}

func (b stubBindings) Load(context.Context, string) (history.UserTable, error) {
	return b.table, nil
}

type stubUsers struct {
	known map[int64]domain.User
}

func (u stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := u.known[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return &user, nil
}

func (u stubUsers) ListByIDs(_ context.Context, ids []int64) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if user, ok := u.known[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type colorRecorder struct {
	projectID int64
	colors    map[string]string
}

func (c *colorRecorder) MergeTagColors(_ context.Context, projectID int64, colors map[string]string) error {
	c.projectID = projectID
	c.colors = colors
	return nil
}

var base = time.Date(2021, 5, 4, 10, 0, 0, 0, time.UTC)

func labeled(id, label string, minute int) history.Event {
	return history.Event{
		ID:         id,
		Kind:       "labeled",
		Actor:      history.ActorRef{ID: "octo", Name: "octo"},
		OccurredAt: base.Add(time.Duration(minute) * time.Minute),
		Items:      []history.Item{{Field: "labeled", To: history.Ptr(label), ToText: label}},
	}
}

func closed(id string, minute int) history.Event {
	return history.Event{
		ID:         id,
		Kind:       "closed",
		Actor:      history.ActorRef{ID: "octo", Name: "octo"},
		OccurredAt: base.Add(time.Duration(minute) * time.Minute),
		Items:      []history.Item{{Field: "state", FromText: "Open", ToText: "Closed"}},
	}
}

func githubManifest() *bindings.Manifest {
	return &bindings.Manifest{
		Vendor:    "github",
		ProjectID: 3,
		Entities: []bindings.ManifestEntity{
			{
				Kind: domain.EntityIssue, ID: 10, ExternalID: "10",
				Children: []bindings.ManifestEntity{{Kind: domain.EntityTask, ID: 11, ExternalID: "11"}},
			},
			{Kind: domain.EntityIssue, ID: 20, ExternalID: "20"},
		},
	}
}

type harness struct {
	service    *ImportService
	sink       *memorySink
	source     *mapSource
	colors     *colorRecorder
	reporter   *ProgressReporter
	metrics    *observability.Metrics
	dispatcher events.Dispatcher
}

func newHarness(deps ImportDependencies) *harness {
	h := &harness{
		sink: &memorySink{},
		source: &mapSource{feeds: map[string][]history.Event{
			"10": {closed("e2", 2), labeled("e1", "bug", 1)},
			"11": {{ID: "e3", Kind: "subscribed", OccurredAt: base}},
			"20": {labeled("e4", "ui", 5)},
		}, colors: map[string]string{"bug": "#fc2929"}},
		colors:     &colorRecorder{},
		metrics:    observability.NewMetrics(),
		dispatcher: events.NewInMemoryDispatcher(),
	}
	h.reporter = NewProgressReporter(h.dispatcher, nil, h.metrics)
	h.reporter.RegisterHandlers()

	if deps.Lookups == nil {
		deps.Lookups = &stubLookups{statuses: map[string]int64{"Open": 1, "Closed": 2}}
	}
	deps.Sink = h.sink
	deps.TagColors = h.colors
	deps.Dispatcher = h.dispatcher
	deps.SourceFor = func(vendors.Vendor, Request) history.Source { return h.source }
	h.service = NewImportService(deps)
	return h
}

func TestImportServiceRunReplaysEntitiesDepthFirst(t *testing.T) {
	h := newHarness(ImportDependencies{})

	result, err := h.service.Run(context.Background(), Request{RunID: "run-1", Manifest: githubManifest()})
	require.NoError(t, err)

	assert.Equal(t, []string{"10", "11", "20"}, h.source.fetched)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, SourceAPI, result.Source)
	assert.Equal(t, 3, result.Entities)
	assert.Equal(t, history.Stats{Events: 4, Ignored: 1, Created: 3}, result.Stats)
	assert.Equal(t, []string{
		"issues.issue:10",
		"issues.issue:10",
		"issues.issue:20",
	}, h.sink.keys())

	first := h.sink.entries[0]
	assert.Equal(t, []any{"bug"}, toAny(first.Diff.New["tags"]))
	assert.Equal(t, map[string]string{"bug": "#fc2929"}, h.colors.colors)
	assert.Equal(t, int64(3), h.colors.projectID)

	status, err := h.reporter.Run("run-1")
	require.NoError(t, err)
	assert.Equal(t, RunFinished, status.State)
	assert.Equal(t, 3, status.Replayed)
	assert.Equal(t, 3, status.Entries)
	assert.Equal(t, 3, status.Entities)
	assert.Equal(t, int64(3), h.metrics.Replay("github", observability.CounterEntries))
	assert.Equal(t, int64(1), h.metrics.Replay("github", observability.CounterIgnored))
}

func TestImportServiceFailsFastOnUnmappedStrictStatus(t *testing.T) {
	h := newHarness(ImportDependencies{Lookups: &stubLookups{statuses: map[string]int64{"Open": 1}}})

	_, err := h.service.Run(context.Background(), Request{RunID: "run-2", Manifest: githubManifest()})
	require.Error(t, err)
	assert.True(t, errorutil.IsNotFound(err))
	assert.Equal(t, []string{"10"}, h.source.fetched)
	assert.Nil(t, h.colors.colors)

	status, err := h.reporter.Run("run-2")
	require.NoError(t, err)
	assert.Equal(t, RunFailed, status.State)
	assert.Equal(t, errorutil.CodeNotFound, status.ErrorCode)
	assert.Equal(t, "issues.issue:10", status.FailedAt)
	assert.Equal(t, int64(1), h.metrics.Replay("github", observability.CounterFailures))
}

func TestImportServiceAbortsOnTransportError(t *testing.T) {
	h := newHarness(ImportDependencies{})
	delete(h.source.feeds, "11")

	_, err := h.service.Run(context.Background(), Request{RunID: "run-3", Manifest: githubManifest()})
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeTransport, errorutil.ToDomainError(err).Code)
	assert.Equal(t, []string{"10", "11"}, h.source.fetched)

	status, _ := h.reporter.Run("run-3")
	assert.Equal(t, "tasks.task:11", status.FailedAt)
}

func TestImportServiceResolvesActorsFromBindings(t *testing.T) {
	h := newHarness(ImportDependencies{
		Bindings: stubBindings{table: history.UserTable{"octo": {ID: 5, FullName: "Octo Cat"}}},
		Users:    stubUsers{known: map[int64]domain.User{5: {ID: 5, FullName: "Octo Cat"}}},
	})

	_, err := h.service.Run(context.Background(), Request{Manifest: githubManifest()})
	require.NoError(t, err)
	require.NotEmpty(t, h.sink.entries)
	actor := h.sink.entries[0].Actor
	require.NotNil(t, actor.ID)
	assert.Equal(t, int64(5), *actor.ID)
	assert.Equal(t, "Octo Cat", actor.Name)
}

func TestImportServiceOverlayBindingsWin(t *testing.T) {
	h := newHarness(ImportDependencies{
		Bindings: stubBindings{table: history.UserTable{"octo": {ID: 5, FullName: "Stored"}}},
	})

	_, err := h.service.Run(context.Background(), Request{
		Manifest: githubManifest(),
		Bindings: history.UserTable{"octo": {ID: 6, FullName: "Overlay"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Overlay", h.sink.entries[0].Actor.Name)
}

func TestImportServiceRejectsUnknownBoundUsers(t *testing.T) {
	h := newHarness(ImportDependencies{
		Bindings: stubBindings{table: history.UserTable{"octo": {ID: 99, FullName: "Ghost"}}},
		Users:    stubUsers{known: map[int64]domain.User{}},
	})

	_, err := h.service.Run(context.Background(), Request{RunID: "run-4", Manifest: githubManifest()})
	require.Error(t, err)
	assert.True(t, errorutil.IsNotFound(err))
	assert.Empty(t, h.source.fetched)

	status, err := h.reporter.Run("run-4")
	require.NoError(t, err)
	assert.Equal(t, RunFailed, status.State)
}

func TestImportServiceValidatesRequest(t *testing.T) {
	h := newHarness(ImportDependencies{})

	_, err := h.service.Run(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)

	manifest := githubManifest()
	manifest.Vendor = "gitlab"
	_, err = h.service.Run(context.Background(), Request{Manifest: manifest})
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestImportServiceStopsOnCancelledContext(t *testing.T) {
	h := newHarness(ImportDependencies{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.service.Run(ctx, Request{Manifest: githubManifest()})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.source.fetched)
}

func toAny(v any) []any {
	switch list := v.(type) {
	case []string:
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	case []any:
		return list
	default:
		return nil
	}
}
