package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/bindings"
	"github.com/spec-kit/history-importer/internal/config"
	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/events"
	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/repository"
	"github.com/spec-kit/history-importer/internal/vendors"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// Import sources.
const (
	SourceAPI  = "api"
	SourceDump = "dump"
)

// BindingLoader returns the stored binding table of a vendor.
type BindingLoader interface {
	Load(ctx context.Context, vendor string) (history.UserTable, error)
}

// TagColorStore persists vendor label colors for a project.
type TagColorStore interface {
	MergeTagColors(ctx context.Context, projectID int64, colors map[string]string) error
}

// labelColorSource is implemented by sources that learn label colors while fetching.
type labelColorSource interface {
	LabelColors() map[string]string
}

// ImportService replays vendor feeds into the target project's history.
type ImportService struct {
	lookups    history.Lookups
	sink       history.Sink
	renderer   history.Renderer
	users      repository.UserRepository
	tagColors  TagColorStore
	bindings   BindingLoader
	dispatcher events.Dispatcher
	cfg        config.ImporterConfig
	logger     *zap.Logger
	sourceFor  func(v vendors.Vendor, req Request) history.Source
}

// ImportDependencies bundles collaborators for the import service.
// Users, TagColors, Bindings and Dispatcher are optional.
type ImportDependencies struct {
	Lookups    history.Lookups
	Sink       history.Sink
	Renderer   history.Renderer
	Users      repository.UserRepository
	TagColors  TagColorStore
	Bindings   BindingLoader
	Dispatcher events.Dispatcher
	Config     config.ImporterConfig
	Logger     *zap.Logger
	// SourceFor overrides how the event source of a run is built.
	SourceFor func(v vendors.Vendor, req Request) history.Source
}

// Request describes one import run.
type Request struct {
	// RunID is generated when empty.
	RunID    string
	Manifest *bindings.Manifest
	// Bindings overlay the stored table of the vendor.
	Bindings history.UserTable
	// DumpDir switches the run to exported feed files.
	DumpDir string
}

// Result summarizes a finished run.
type Result struct {
	RunID     string        `json:"run_id"`
	Vendor    string        `json:"vendor"`
	ProjectID int64         `json:"project_id"`
	Source    string        `json:"source"`
	Entities  int           `json:"entities"`
	Stats     history.Stats `json:"stats"`
	Duration  time.Duration `json:"duration"`
}

// NewImportService constructs the service.
func NewImportService(deps ImportDependencies) *ImportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ImportService{
		lookups:    deps.Lookups,
		sink:       deps.Sink,
		renderer:   deps.Renderer,
		users:      deps.Users,
		tagColors:  deps.TagColors,
		bindings:   deps.Bindings,
		dispatcher: deps.Dispatcher,
		cfg:        deps.Config,
		logger:     logger,
		sourceFor:  deps.SourceFor,
	}
	if s.sourceFor == nil {
		s.sourceFor = s.defaultSource
	}
	return s
}

func (s *ImportService) defaultSource(v vendors.Vendor, req Request) history.Source {
	if req.DumpDir != "" {
		return vendors.NewFileSource(req.DumpDir, v)
	}
	return v.NewSource(s.cfg.Vendor(v.Name), s.cfg.HTTPTimeout())
}

// Run replays every manifest entity in order, each entity's children right
// after it. The first error aborts the run.
func (s *ImportService) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Manifest == nil {
		return nil, errorutil.NewValidationError("manifest is required", nil)
	}
	if err := req.Manifest.Validate(); err != nil {
		return nil, err
	}
	v, err := vendors.Lookup(req.Manifest.Vendor)
	if err != nil {
		return nil, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	result := &Result{
		RunID:     runID,
		Vendor:    v.Name,
		ProjectID: req.Manifest.ProjectID,
		Source:    SourceAPI,
	}
	if req.DumpDir != "" {
		result.Source = SourceDump
	}
	logger := s.logger.With(
		zap.String("run_id", runID),
		zap.String("vendor", v.Name),
		zap.Int64("project_id", result.ProjectID))

	run := &importRun{service: s, result: result, logger: logger}

	table, err := s.loadBindings(ctx, v.Name, req.Bindings)
	if err != nil {
		run.fail(ctx, "", err)
		return nil, err
	}

	run.publish(ctx, events.EventImportStarted, events.ImportStartedPayload{
		Source:   result.Source,
		Entities: req.Manifest.Count(),
	})
	logger.Info("import started", zap.String("source", result.Source), zap.Int("entities", req.Manifest.Count()))

	started := time.Now()
	source := s.sourceFor(v, req)
	replayer := history.NewReplayer(history.ReplayerDependencies{
		Adapter:  v.Adapter,
		Lookups:  s.lookups,
		Bindings: table,
		Renderer: s.renderer,
		Sink:     s.sink,
		Logger:   logger,
		Hooks: history.Hooks{
			OnEntry: run.entryRecorded,
		},
	})

	for _, entity := range req.Manifest.Targets() {
		if err := run.replay(ctx, replayer, source, entity); err != nil {
			return nil, err
		}
	}

	if err := s.storeTagColors(ctx, source, result.ProjectID); err != nil {
		run.fail(ctx, "", err)
		return nil, err
	}

	result.Duration = time.Since(started)
	run.publish(ctx, events.EventImportFinished, events.ImportFinishedPayload{
		Entities: result.Entities,
		Stats:    result.Stats,
		Duration: result.Duration,
	})
	logger.Info("import finished",
		zap.Int("entities", result.Entities),
		zap.Int("entries", result.Stats.Created),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (s *ImportService) loadBindings(ctx context.Context, vendorName string, overlay history.UserTable) (history.UserTable, error) {
	table := history.UserTable{}
	if s.bindings != nil {
		stored, err := s.bindings.Load(ctx, vendorName)
		if err != nil {
			return nil, err
		}
		for id, user := range stored {
			table[id] = user
		}
	}
	for id, user := range overlay {
		table[id] = user
	}
	if err := s.verifyUsers(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// verifyUsers rejects binding tables that point at unknown target users.
func (s *ImportService) verifyUsers(ctx context.Context, table history.UserTable) error {
	if s.users == nil || len(table) == 0 {
		return nil
	}
	ids := bindings.UserIDs(table)
	found, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("verify bound users: %w", err)
	}
	known := make(map[int64]struct{}, len(found))
	for _, u := range found {
		known[u.ID] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return errorutil.NewNotFound("bound user", map[string]any{"ids": missing})
	}
	return nil
}

func (s *ImportService) storeTagColors(ctx context.Context, source history.Source, projectID int64) error {
	colored, ok := source.(labelColorSource)
	if !ok || s.tagColors == nil {
		return nil
	}
	colors := colored.LabelColors()
	if len(colors) == 0 {
		return nil
	}
	if err := s.tagColors.MergeTagColors(ctx, projectID, colors); err != nil {
		return fmt.Errorf("store tag colors: %w", err)
	}
	return nil
}

// importRun carries the mutable state of one Run call.
type importRun struct {
	service *ImportService
	result  *Result
	logger  *zap.Logger
}

func (r *importRun) replay(ctx context.Context, replayer *history.Replayer, source history.Source, entity domain.Entity) error {
	if err := ctx.Err(); err != nil {
		r.fail(ctx, entity.Key(), err)
		return err
	}
	feed, err := source.FetchEvents(ctx, entity.ExternalID)
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", entity.ExternalID, err)
		r.fail(ctx, entity.Key(), err)
		return err
	}
	stats, err := replayer.Replay(ctx, entity, feed)
	r.result.Stats.Add(stats)
	if err != nil {
		r.fail(ctx, entity.Key(), err)
		return err
	}
	r.result.Entities++
	r.publish(ctx, events.EventEntityReplayed, events.EntityReplayedPayload{
		EntityKey:  entity.Key(),
		ExternalID: entity.ExternalID,
		Stats:      stats,
	})

	for _, child := range entity.Children {
		if err := r.replay(ctx, replayer, source, child); err != nil {
			return err
		}
	}
	return nil
}

func (r *importRun) entryRecorded(ctx context.Context, entity domain.Entity, entry *domain.HistoryEntry) {
	r.publish(ctx, events.EventEntryRecorded, events.EntryRecordedPayload{
		EntityKey: entity.Key(),
		EntryID:   entry.ID,
		Type:      entry.Type,
		CreatedAt: entry.CreatedAt,
	})
}

func (r *importRun) fail(ctx context.Context, entityKey string, err error) {
	domainErr := errorutil.ToDomainError(err)
	r.logger.Error("import failed", zap.String("entity", entityKey), zap.Error(err))
	r.publish(ctx, events.EventImportFailed, events.ImportFailedPayload{
		EntityKey: entityKey,
		Code:      domainErr.Code,
		Error:     err.Error(),
	})
}

func (r *importRun) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if r.service.dispatcher == nil {
		return
	}
	event := events.New(eventType, r.result.RunID, r.result.Vendor, r.result.ProjectID, payload)
	if err := r.service.dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Warn("publish progress event failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
