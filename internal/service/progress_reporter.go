package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/events"
	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/observability"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// Run states reported by the progress reporter.
const (
	RunQueued   = "queued"
	RunRunning  = "running"
	RunFinished = "finished"
	RunFailed   = "failed"
)

// DefaultRunRetention is how many finished or failed runs are remembered.
const DefaultRunRetention = 200

// RunStatus is the last known progress of an import run.
type RunStatus struct {
	RunID      string        `json:"run_id"`
	Vendor     string        `json:"vendor"`
	ProjectID  int64         `json:"project_id"`
	State      string        `json:"state"`
	Source     string        `json:"source,omitempty"`
	Entities   int           `json:"entities"`
	Replayed   int           `json:"replayed"`
	Entries    int           `json:"entries"`
	Stats      history.Stats `json:"stats"`
	ErrorCode  string        `json:"error_code,omitempty"`
	Error      string        `json:"error,omitempty"`
	FailedAt   string        `json:"failed_at,omitempty"`
	StartedAt  *time.Time    `json:"started_at,omitempty"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
}

// ProgressReporter logs import progress events, feeds the replay metrics and
// keeps the status of recent runs for the admin API.
type ProgressReporter struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics

	mu     sync.RWMutex
	runs   map[string]*RunStatus
	ended  []string
	retain int
}

// NewProgressReporter creates the reporter.
func NewProgressReporter(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *ProgressReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressReporter{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		runs:       make(map[string]*RunStatus),
		retain:     DefaultRunRetention,
	}
}

// WithRetention caps how many ended runs are kept. Queued and running runs
// are never evicted.
func (p *ProgressReporter) WithRetention(n int) *ProgressReporter {
	if n > 0 {
		p.mu.Lock()
		p.retain = n
		p.evictLocked()
		p.mu.Unlock()
	}
	return p
}

// RegisterHandlers subscribes to events.
func (p *ProgressReporter) RegisterHandlers() {
	if p.dispatcher == nil {
		return
	}
	p.dispatcher.Subscribe(events.EventImportStarted, p.handleImportStarted)
	p.dispatcher.Subscribe(events.EventEntityReplayed, p.handleEntityReplayed)
	p.dispatcher.Subscribe(events.EventEntryRecorded, p.handleEntryRecorded)
	p.dispatcher.Subscribe(events.EventImportFinished, p.handleImportFinished)
	p.dispatcher.Subscribe(events.EventImportFailed, p.handleImportFailed)
}

// Track registers an accepted run. A run that already reported progress is left as is.
func (p *ProgressReporter) Track(runID, vendor string, projectID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.runs[runID]; ok {
		return
	}
	p.runs[runID] = &RunStatus{RunID: runID, Vendor: vendor, ProjectID: projectID, State: RunQueued}
}

// Run returns a copy of the status of runID.
func (p *ProgressReporter) Run(runID string) (RunStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	status, ok := p.runs[runID]
	if !ok {
		return RunStatus{}, errorutil.NewNotFound("import run", map[string]any{"run_id": runID})
	}
	return *status, nil
}

func (p *ProgressReporter) handleImportStarted(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ImportStartedPayload)
	p.logger.Info("ImportStarted",
		zap.String("run_id", event.RunID),
		zap.String("vendor", event.Vendor),
		zap.String("source", payload.Source),
		zap.Int("entities", payload.Entities))
	p.update(event, func(s *RunStatus) {
		started := event.Timestamp
		s.State = RunRunning
		s.Source = payload.Source
		s.Entities = payload.Entities
		s.StartedAt = &started
	})
	return nil
}

func (p *ProgressReporter) handleEntityReplayed(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.EntityReplayedPayload)
	p.logger.Debug("EntityReplayed",
		zap.String("run_id", event.RunID),
		zap.String("entity", payload.EntityKey),
		zap.Int("created", payload.Stats.Created),
		zap.Int("skipped", payload.Stats.Skipped),
		zap.Int("ignored", payload.Stats.Ignored))
	p.update(event, func(s *RunStatus) {
		s.Replayed++
		s.Stats.Add(payload.Stats)
	})
	if p.metrics != nil {
		p.metrics.AddReplay(event.Vendor, observability.CounterEntities, 1)
		p.metrics.AddReplay(event.Vendor, observability.CounterSkipped, payload.Stats.Skipped)
		p.metrics.AddReplay(event.Vendor, observability.CounterIgnored, payload.Stats.Ignored)
	}
	return nil
}

func (p *ProgressReporter) handleEntryRecorded(_ context.Context, event events.Event) error {
	p.update(event, func(s *RunStatus) {
		s.Entries++
	})
	if p.metrics != nil {
		p.metrics.AddReplay(event.Vendor, observability.CounterEntries, 1)
	}
	return nil
}

func (p *ProgressReporter) handleImportFinished(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ImportFinishedPayload)
	p.logger.Info("ImportFinished",
		zap.String("run_id", event.RunID),
		zap.String("vendor", event.Vendor),
		zap.Int("entities", payload.Entities),
		zap.Int("entries", payload.Stats.Created),
		zap.Duration("duration", payload.Duration))
	p.update(event, func(s *RunStatus) {
		finished := event.Timestamp
		s.State = RunFinished
		s.Stats = payload.Stats
		s.FinishedAt = &finished
	})
	return nil
}

func (p *ProgressReporter) handleImportFailed(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ImportFailedPayload)
	p.logger.Warn("ImportFailed",
		zap.String("run_id", event.RunID),
		zap.String("vendor", event.Vendor),
		zap.String("entity", payload.EntityKey),
		zap.String("code", payload.Code),
		zap.String("error", payload.Error))
	p.update(event, func(s *RunStatus) {
		finished := event.Timestamp
		s.State = RunFailed
		s.ErrorCode = payload.Code
		s.Error = payload.Error
		s.FailedAt = payload.EntityKey
		s.FinishedAt = &finished
	})
	if p.metrics != nil {
		p.metrics.AddReplay(event.Vendor, observability.CounterFailures, 1)
	}
	return nil
}

func (p *ProgressReporter) update(event events.Event, mutate func(*RunStatus)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status, ok := p.runs[event.RunID]
	if !ok {
		status = &RunStatus{RunID: event.RunID, Vendor: event.Vendor, ProjectID: event.ProjectID, State: RunQueued}
		p.runs[event.RunID] = status
	}
	wasEnded := ended(status.State)
	mutate(status)
	if !wasEnded && ended(status.State) {
		p.ended = append(p.ended, event.RunID)
		p.evictLocked()
	}
}

// evictLocked drops the oldest ended runs beyond the retention cap.
func (p *ProgressReporter) evictLocked() {
	for len(p.ended) > p.retain {
		delete(p.runs, p.ended[0])
		p.ended = p.ended[1:]
	}
}

func ended(state string) bool {
	return state == RunFinished || state == RunFailed
}
