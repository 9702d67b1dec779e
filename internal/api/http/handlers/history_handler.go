package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/history-importer/internal/api/dto"
	"github.com/spec-kit/history-importer/internal/domain"
	apperrors "github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// WorkItemReader loads target entities.
type WorkItemReader interface {
	Get(ctx context.Context, kind domain.EntityKind, id int64) (*domain.Entity, error)
}

// HistoryReader lists stored history entries.
type HistoryReader interface {
	ListByKey(ctx context.Context, projectID int64, key string) ([]domain.HistoryEntry, error)
}

// HistoryHandler serves reconstructed history.
type HistoryHandler struct {
	items   WorkItemReader
	history HistoryReader
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(items WorkItemReader, history HistoryReader) *HistoryHandler {
	return &HistoryHandler{items: items, history: history}
}

// ListHistory GET /projects/:project/history/:kind/:id.
func (h *HistoryHandler) ListHistory(c *fiber.Ctx) error {
	projectID, err := strconv.ParseInt(c.Params("project"), 10, 64)
	if err != nil || projectID <= 0 {
		return apperrors.NewValidationError("invalid project id", nil)
	}
	kind := domain.EntityKind(c.Params("kind"))
	if !kind.Valid() {
		return apperrors.NewValidationError("invalid entity kind", map[string]any{"kind": string(kind)})
	}
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid entity id", nil)
	}

	entity, err := h.items.Get(c.UserContext(), kind, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound(string(kind), map[string]any{"id": id})
		}
		return err
	}
	if entity.ProjectID != projectID {
		return apperrors.NewNotFound(string(kind), map[string]any{"id": id, "project_id": projectID})
	}

	entries, err := h.history.ListByKey(c.UserContext(), projectID, entity.Key())
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewHistoryEntryResponse(entry))
	}
	return c.JSON(fiber.Map{"data": items})
}
