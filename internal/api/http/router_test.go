package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/api/http/handlers"
	"github.com/spec-kit/history-importer/internal/auth"
	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/observability"
	"github.com/spec-kit/history-importer/internal/service"
	apperrors "github.com/spec-kit/history-importer/pkg/util/errorutil"
)

type fakeQueue struct {
	requests []service.Request
}

func (q *fakeQueue) Submit(req service.Request) (string, error) {
	q.requests = append(q.requests, req)
	return "run-1", nil
}

type fakeProgress struct{}

func (fakeProgress) Run(runID string) (service.RunStatus, error) {
	if runID != "run-1" {
		return service.RunStatus{}, apperrors.NewNotFound("import run", map[string]any{"run_id": runID})
	}
	return service.RunStatus{RunID: runID, Vendor: "jira", State: service.RunRunning}, nil
}

type fakeItems struct{}

func (fakeItems) Get(_ context.Context, kind domain.EntityKind, id int64) (*domain.Entity, error) {
	if id != 12 {
		return nil, pgx.ErrNoRows
	}
	return &domain.Entity{ID: id, ProjectID: 3, Kind: kind}, nil
}

type fakeHistory struct {
	keys []string
}

func (h *fakeHistory) ListByKey(_ context.Context, _ int64, key string) ([]domain.HistoryEntry, error) {
	h.keys = append(h.keys, key)
	return []domain.HistoryEntry{{
		ID:        1,
		Key:       key,
		Type:      domain.HistoryChange,
		Actor:     domain.Actor{Name: "Ann"},
		Diff:      domain.Diff{Old: map[string]any{"subject": "a"}, New: map[string]any{"subject": "b"}},
		CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}}, nil
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type testServer struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	queue   *fakeQueue
	history *fakeHistory
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, deps map[string]handlers.Pinger) *testServer {
	t.Helper()
	s := &testServer{
		app:     fiber.New(),
		tokens:  auth.NewTokenManager("secret", 5, "history-importer"),
		queue:   &fakeQueue{},
		history: &fakeHistory{},
		metrics: observability.NewMetrics(),
	}
	RegisterMiddlewares(s.app, zap.NewNop(), s.metrics, time.Second)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("history-importer", "test", deps),
		Imports:        handlers.NewImportsHandler(s.queue, fakeProgress{}, "/var/dumps"),
		History:        handlers.NewHistoryHandler(fakeItems{}, s.history),
		Metrics:        handlers.NewMetricsHandler(s.metrics),
		AuthMiddleware: auth.NewAuthMiddleware(s.tokens),
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string, scopes ...auth.Scope) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if scopes != nil {
		token, _, err := s.tokens.GenerateToken("ops", scopes...)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

const manifestJSON = `{
  "manifest": {"vendor": "jira", "project_id": 3, "entities": [{"kind": "issue", "id": 12, "external_id": "PRJ-1"}]},
  "bindings": {"ann": {"id": 5, "full_name": "Ann"}}
}`

func TestCreateImportQueuesRun(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, nethttp.MethodPost, "/api/v1/imports", manifestJSON, auth.ScopeImport)
	require.Equal(t, nethttp.StatusAccepted, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "run-1", data["run_id"])
	assert.Equal(t, service.RunQueued, data["status"])

	require.Len(t, s.queue.requests, 1)
	req := s.queue.requests[0]
	assert.Equal(t, "jira", req.Manifest.Vendor)
	assert.Equal(t, "PRJ-1", req.Manifest.Entities[0].ExternalID)
	assert.Equal(t, int64(5), req.Bindings["ann"].ID)
	assert.Empty(t, req.DumpDir)
}

func TestCreateImportValidation(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed", `{"manifest":`},
		{"empty manifest", `{"manifest": {}}`},
		{"escaping dump dir", `{"manifest": {"vendor": "jira", "project_id": 3, "entities": [{"kind": "issue", "id": 1, "external_id": "A-1"}]}, "dump_dir": "../etc"}`},
		{"absolute dump dir", `{"manifest": {"vendor": "jira", "project_id": 3, "entities": [{"kind": "issue", "id": 1, "external_id": "A-1"}]}, "dump_dir": "/etc"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := s.do(t, nethttp.MethodPost, "/api/v1/imports", tc.body, auth.ScopeImport)
			assert.Equal(t, nethttp.StatusBadRequest, status)
			assert.Equal(t, apperrors.CodeValidation, errorCode(body))
		})
	}
	assert.Empty(t, s.queue.requests)
}

func TestCreateImportResolvesDumpDir(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"manifest": {"vendor": "trello", "project_id": 3, "entities": [{"kind": "userstory", "id": 1, "external_id": "c1"}]}, "dump_dir": "board-7"}`

	status, _ := s.do(t, nethttp.MethodPost, "/api/v1/imports", body, auth.ScopeImport)
	require.Equal(t, nethttp.StatusAccepted, status)
	require.Len(t, s.queue.requests, 1)
	assert.Equal(t, "/var/dumps/board-7", s.queue.requests[0].DumpDir)
}

func TestImportRoutesRequireScope(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, nethttp.MethodPost, "/api/v1/imports", manifestJSON)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, apperrors.CodeUnauthorized, errorCode(body))

	status, body = s.do(t, nethttp.MethodPost, "/api/v1/imports", manifestJSON, auth.ScopeHistoryRead)
	assert.Equal(t, nethttp.StatusForbidden, status)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(body))
}

func TestGetImport(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/imports/run-1", "", auth.ScopeImport)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, service.RunRunning, body["data"].(map[string]any)["state"])

	status, body = s.do(t, nethttp.MethodGet, "/api/v1/imports/other", "", auth.ScopeImport)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(body))
}

func TestListHistory(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/projects/3/history/issue/12", "", auth.ScopeHistoryRead)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, []string{"issues.issue:12"}, s.history.keys)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	entry := items[0].(map[string]any)
	assert.Equal(t, "Ann", entry["user"].(map[string]any)["name"])
	assert.Equal(t, "b", entry["diff"].(map[string]any)["new"].(map[string]any)["subject"])
}

func TestListHistoryErrors(t *testing.T) {
	s := newTestServer(t, nil)

	cases := []struct {
		name   string
		path   string
		status int
	}{
		{"bad kind", "/api/v1/projects/3/history/bug/12", nethttp.StatusBadRequest},
		{"bad id", "/api/v1/projects/3/history/issue/x", nethttp.StatusBadRequest},
		{"missing entity", "/api/v1/projects/3/history/issue/13", nethttp.StatusNotFound},
		{"other project", "/api/v1/projects/4/history/issue/12", nethttp.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := s.do(t, nethttp.MethodGet, tc.path, "", auth.ScopeHistoryRead)
			assert.Equal(t, tc.status, status)
		})
	}
	assert.Empty(t, s.history.keys)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t, map[string]handlers.Pinger{
		"postgres": pinger{},
		"redis":    pinger{err: errors.New("connection refused")},
	})

	status, body := s.do(t, nethttp.MethodGet, "/health/live", "")
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = s.do(t, nethttp.MethodGet, "/health/ready", "")
	assert.Equal(t, nethttp.StatusServiceUnavailable, status)
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "ok", details["postgres"])
	assert.Equal(t, "connection refused", details["redis"])

	status, body = s.do(t, nethttp.MethodGet, "/nowhere", "")
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(body))
}

func TestMetricsEndpointReportsRequests(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, nethttp.MethodGet, "/health/live", "")

	status, body := s.do(t, nethttp.MethodGet, "/api/v1/metrics", "", auth.ScopeMetrics)
	require.Equal(t, nethttp.StatusOK, status)
	assert.NotEmpty(t, body["data"])
}
