package history

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/domain"
)

// Stats summarizes one entity replay.
type Stats struct {
	Events  int `json:"events"`
	Ignored int `json:"ignored"`
	Skipped int `json:"skipped"`
	Created int `json:"created"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Events += other.Events
	s.Ignored += other.Ignored
	s.Skipped += other.Skipped
	s.Created += other.Created
}

// Hooks are optional callbacks fired during replay.
type Hooks struct {
	// OnEntry is called after an entry is created and its timestamp corrected.
	OnEntry func(ctx context.Context, entity domain.Entity, entry *domain.HistoryEntry)
	// OnSkip is called for ignored events and events without data.
	OnSkip func(ctx context.Context, entity domain.Entity, ev Event, reason string)
}

// Skip reasons passed to Hooks.OnSkip.
const (
	SkipIgnored = "ignored"
	SkipNoData  = "no_data"
)

// Replayer reconstructs history entries for one vendor's events.
type Replayer struct {
	mapper   *Mapper
	sink     Sink
	bindings Bindings
	logger   *zap.Logger
	hooks    Hooks
}

// ReplayerDependencies bundles collaborators for a Replayer.
type ReplayerDependencies struct {
	Adapter  Adapter
	Lookups  Lookups
	Bindings Bindings
	Renderer Renderer
	Sink     Sink
	Logger   *zap.Logger
	Hooks    Hooks
}

// NewReplayer constructs a replayer.
func NewReplayer(deps ReplayerDependencies) *Replayer {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	bindings := deps.Bindings
	if bindings == nil {
		bindings = UserTable{}
	}
	return &Replayer{
		mapper:   NewMapper(deps.Adapter, deps.Lookups, bindings, deps.Renderer, logger),
		sink:     deps.Sink,
		bindings: bindings,
		logger:   logger,
		hooks:    deps.Hooks,
	}
}

// Replay applies events to entity in chronological order and emits one
// history entry per event that carries data. Events are stable-sorted by
// OccurredAt first. The first error aborts the replay.
func (r *Replayer) Replay(ctx context.Context, entity domain.Entity, events []Event) (Stats, error) {
	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt.Before(ordered[j].OccurredAt)
	})

	state := NewState()
	stats := Stats{Events: len(ordered)}
	for _, ev := range ordered {
		if r.mapper.adapter.IsIgnored(ev.Kind) {
			stats.Ignored++
			r.skip(ctx, entity, ev, SkipIgnored)
			continue
		}

		mapping, err := r.mapper.Map(ctx, entity, state, ev)
		if err != nil {
			return stats, fmt.Errorf("map %s event %s for %s: %w", r.mapper.adapter.Name(), ev.ID, entity.Key(), err)
		}
		if !mapping.HasData() {
			stats.Skipped++
			r.skip(ctx, entity, ev, SkipNoData)
			continue
		}

		if mapping.Type == domain.HistoryCreate {
			if err := r.sink.BackdateEntity(ctx, entity, ev.OccurredAt); err != nil {
				return stats, fmt.Errorf("backdate %s: %w", entity.Key(), err)
			}
		}

		entry, err := r.record(ctx, entity, ev, mapping)
		if err != nil {
			return stats, err
		}
		stats.Created++
		if r.hooks.OnEntry != nil {
			r.hooks.OnEntry(ctx, entity, entry)
		}
	}
	return stats, nil
}

func (r *Replayer) record(ctx context.Context, entity domain.Entity, ev Event, mapping *Mapping) (*domain.HistoryEntry, error) {
	diff := mapping.Diff()
	entry := &domain.HistoryEntry{
		ProjectID:   entity.ProjectID,
		Key:         entity.Key(),
		Type:        mapping.Type,
		Actor:       r.actor(ev.Actor),
		Diff:        diff,
		Values:      RenderValues(diff, mapping.Labels),
		Comment:     mapping.Comment,
		CommentHTML: r.mapper.render(entity.ProjectID, mapping.Comment),
	}
	if err := r.sink.CreateHistoryEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create history entry for %s: %w", entity.Key(), err)
	}
	if err := r.sink.CorrectTimestamp(ctx, entry.ID, ev.OccurredAt); err != nil {
		return nil, fmt.Errorf("correct timestamp of entry %d: %w", entry.ID, err)
	}
	entry.CreatedAt = ev.OccurredAt
	return entry, nil
}

func (r *Replayer) actor(ref ActorRef) domain.Actor {
	if user, ok := r.bindings.User(ref.ID); ok {
		id := user.ID
		return domain.Actor{ID: &id, Name: user.FullName}
	}
	return domain.Actor{Name: ref.Name}
}

func (r *Replayer) skip(ctx context.Context, entity domain.Entity, ev Event, reason string) {
	r.logger.Debug("event produced no history entry",
		zap.String("vendor", r.mapper.adapter.Name()),
		zap.String("entity", entity.Key()),
		zap.String("event_id", ev.ID),
		zap.String("kind", ev.Kind),
		zap.String("reason", reason))
	if r.hooks.OnSkip != nil {
		r.hooks.OnSkip(ctx, entity, ev, reason)
	}
}
