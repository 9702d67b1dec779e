package domain

import "time"

// HistoryType captures what kind of audit entry was recorded.
type HistoryType int

const (
	HistoryChange HistoryType = 1
	HistoryCreate HistoryType = 2
	HistoryDelete HistoryType = 3
)

// Sentinel IDs stand in for references that could not be resolved.
const (
	SentinelOld int64 = -1
	SentinelNew int64 = -2
)

// Actor is the author of a history entry. ID is nil for unbound vendor users.
type Actor struct {
	ID   *int64 `json:"pk"`
	Name string `json:"name"`
}

// Diff holds only the fields that changed in one entry.
type Diff struct {
	Old map[string]any `json:"old"`
	New map[string]any `json:"new"`
}

// Empty reports whether no field changed.
func (d Diff) Empty() bool {
	return len(d.Old) == 0 && len(d.New) == 0
}

// Values resolves sentinel IDs to display labels, keyed by category
// ("users", "status", "milestone") and then by sentinel ("-1", "-2").
type Values map[string]map[string]string

// HistoryEntry is an immutable audit trail entry.
type HistoryEntry struct {
	ID          int64
	ProjectID   int64
	Key         string
	Type        HistoryType
	Actor       Actor
	Diff        Diff
	Values      Values
	Comment     string
	CommentHTML string
	CreatedAt   time.Time
	IsHidden    bool
	IsSnapshot  bool
}
