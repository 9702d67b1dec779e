package dto

import (
	"time"

	"github.com/spec-kit/history-importer/internal/bindings"
	"github.com/spec-kit/history-importer/internal/domain"
)

// CreateImportRequest payload.
type CreateImportRequest struct {
	Manifest bindings.Manifest      `json:"manifest"`
	Bindings map[string]domain.User `json:"bindings"`
	DumpDir  string                 `json:"dump_dir"`
}

// ImportAcceptedResponse is returned when a run is queued.
type ImportAcceptedResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// HistoryEntryResponse represents one audit entry.
type HistoryEntryResponse struct {
	ID          int64              `json:"id"`
	Key         string             `json:"key"`
	Type        domain.HistoryType `json:"type"`
	User        domain.Actor       `json:"user"`
	Diff        domain.Diff        `json:"diff"`
	Values      domain.Values      `json:"values"`
	Comment     string             `json:"comment"`
	CommentHTML string             `json:"comment_html"`
	IsHidden    bool               `json:"is_hidden"`
	IsSnapshot  bool               `json:"is_snapshot"`
	CreatedAt   time.Time          `json:"created_at"`
}

// NewHistoryEntryResponse converts a domain entry.
func NewHistoryEntryResponse(entry domain.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:          entry.ID,
		Key:         entry.Key,
		Type:        entry.Type,
		User:        entry.Actor,
		Diff:        entry.Diff,
		Values:      entry.Values,
		Comment:     entry.Comment,
		CommentHTML: entry.CommentHTML,
		IsHidden:    entry.IsHidden,
		IsSnapshot:  entry.IsSnapshot,
		CreatedAt:   entry.CreatedAt,
	}
}
