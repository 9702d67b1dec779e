package repository

import (
	"context"
	"time"

	"github.com/spec-kit/history-importer/internal/domain"
)

// HistorySink persists replayed entries through the history and work item
// repositories.
type HistorySink struct {
	History   HistoryRepository
	WorkItems WorkItemRepository
}

// NewHistorySink builds a sink.
func NewHistorySink(history HistoryRepository, items WorkItemRepository) *HistorySink {
	return &HistorySink{History: history, WorkItems: items}
}

func (s *HistorySink) CreateHistoryEntry(ctx context.Context, entry *domain.HistoryEntry) error {
	return s.History.Create(ctx, entry)
}

func (s *HistorySink) CorrectTimestamp(ctx context.Context, entryID int64, at time.Time) error {
	return s.History.CorrectTimestamp(ctx, entryID, at)
}

func (s *HistorySink) BackdateEntity(ctx context.Context, entity domain.Entity, at time.Time) error {
	return s.WorkItems.Backdate(ctx, entity, at)
}
