package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/history"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventImportStarted  EventType = "import_started"
	EventEntityReplayed EventType = "entity_replayed"
	EventEntryRecorded  EventType = "entry_recorded"
	EventImportFinished EventType = "import_finished"
	EventImportFailed   EventType = "import_failed"
)

// Event is emitted by the import service while a run progresses.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	Vendor    string      `json:"vendor"`
	ProjectID int64       `json:"project_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh id.
func New(eventType EventType, runID, vendor string, projectID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     runID,
		Vendor:    vendor,
		ProjectID: projectID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ImportStartedPayload payload.
type ImportStartedPayload struct {
	Source   string `json:"source"`
	Entities int    `json:"entities"`
}

// EntityReplayedPayload payload.
type EntityReplayedPayload struct {
	EntityKey  string        `json:"entity_key"`
	ExternalID string        `json:"external_id"`
	Stats      history.Stats `json:"stats"`
}

// EntryRecordedPayload payload.
type EntryRecordedPayload struct {
	EntityKey string             `json:"entity_key"`
	EntryID   int64              `json:"entry_id"`
	Type      domain.HistoryType `json:"type"`
	CreatedAt time.Time          `json:"created_at"`
}

// ImportFinishedPayload payload.
type ImportFinishedPayload struct {
	Entities int           `json:"entities"`
	Stats    history.Stats `json:"stats"`
	Duration time.Duration `json:"duration"`
}

// ImportFailedPayload payload.
type ImportFailedPayload struct {
	EntityKey string `json:"entity_key,omitempty"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}
