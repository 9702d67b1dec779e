package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/history-importer/internal/api/dto"
	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/service"
	apperrors "github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// ImportSubmitter queues import runs.
type ImportSubmitter interface {
	Submit(req service.Request) (string, error)
}

// RunStatusReader exposes the progress of runs.
type RunStatusReader interface {
	Run(runID string) (service.RunStatus, error)
}

// ImportsHandler manages import run endpoints.
type ImportsHandler struct {
	queue    ImportSubmitter
	progress RunStatusReader
	dumpDir  string
}

// NewImportsHandler constructs handler. Requests may only name dump
// directories under dumpDir; an empty dumpDir disables dump imports.
func NewImportsHandler(queue ImportSubmitter, progress RunStatusReader, dumpDir string) *ImportsHandler {
	return &ImportsHandler{queue: queue, progress: progress, dumpDir: dumpDir}
}

// CreateImport POST /imports.
func (h *ImportsHandler) CreateImport(c *fiber.Ctx) error {
	var req dto.CreateImportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Manifest.Validate(); err != nil {
		return err
	}
	dumpDir, err := h.resolveDumpDir(req.DumpDir)
	if err != nil {
		return err
	}

	manifest := req.Manifest
	runID, err := h.queue.Submit(service.Request{
		Manifest: &manifest,
		Bindings: history.UserTable(req.Bindings),
		DumpDir:  dumpDir,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"data": dto.ImportAcceptedResponse{
		RunID:  runID,
		Status: service.RunQueued,
	}})
}

// GetImport GET /imports/:id.
func (h *ImportsHandler) GetImport(c *fiber.Ctx) error {
	status, err := h.progress.Run(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": status})
}

func (h *ImportsHandler) resolveDumpDir(requested string) (string, error) {
	if requested == "" {
		return "", nil
	}
	if h.dumpDir == "" {
		return "", apperrors.NewValidationError("dump imports are disabled", nil)
	}
	return safeJoin(h.dumpDir, requested)
}
