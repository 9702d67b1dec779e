package history

import (
	"context"
	"time"

	"github.com/spec-kit/history-importer/internal/domain"
)

// Ref is the outcome of a lookup that has a defined not-found fallback.
type Ref struct {
	ID    int64
	Found bool
}

// Resolved builds a found Ref.
func Resolved(id int64) Ref {
	return Ref{ID: id, Found: true}
}

// Lookups resolves vendor names to target records. A missing record is
// reported through Ref.Found; the error return is reserved for failures.
type Lookups interface {
	Status(ctx context.Context, projectID int64, kind domain.EntityKind, name string) (Ref, error)
	Milestone(ctx context.Context, projectID int64, name string) (Ref, error)
	CustomAttribute(ctx context.Context, projectID int64, kind domain.EntityKind, name string) (Ref, error)
	MainRole(ctx context.Context, projectID int64) (Ref, error)
	// Points returns the points record for value, creating it when missing.
	Points(ctx context.Context, projectID int64, value float64) (int64, error)
}

// Bindings maps vendor user identifiers to target users.
type Bindings interface {
	User(vendorID string) (domain.User, bool)
}

// UserTable is a read-only Bindings backed by a map.
type UserTable map[string]domain.User

func (t UserTable) User(vendorID string) (domain.User, bool) {
	if vendorID == "" {
		return domain.User{}, false
	}
	u, ok := t[vendorID]
	return u, ok
}

// Sink persists history entries.
type Sink interface {
	// CreateHistoryEntry inserts entry and fills its ID and sink-assigned CreatedAt.
	CreateHistoryEntry(ctx context.Context, entry *domain.HistoryEntry) error
	// CorrectTimestamp overwrites the creation time of an inserted entry.
	CorrectTimestamp(ctx context.Context, entryID int64, at time.Time) error
	// BackdateEntity moves the entity's creation date back to at when it is later.
	BackdateEntity(ctx context.Context, entity domain.Entity, at time.Time) error
}

// Renderer turns markdown text into HTML.
type Renderer interface {
	Render(projectID int64, text string) string
}

// Source fetches the ordered event feed for one vendor entity.
type Source interface {
	FetchEvents(ctx context.Context, externalID string) ([]Event, error)
}
