package github

import "github.com/spec-kit/history-importer/internal/history"

// KindComment marks events built from issue comments.
const KindComment = "comment"

// Field names emitted by the decoder.
const (
	fieldLabeled    = "labeled"
	fieldUnlabeled  = "unlabeled"
	fieldAssigned   = "assigned"
	fieldUnassigned = "unassigned"
	fieldMilestone  = "milestone"
	fieldTitle      = "title"
	fieldState      = "state"
)

// Status names issue state changes are resolved to.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Ignored lists timeline events that never carry history.
var Ignored = []string{
	"referenced", "mentioned", "subscribed", "unsubscribed", "locked",
	"unlocked", "committed", "cross-referenced", "head_ref_deleted",
	"head_ref_restored",
}

// Fields maps decoder fields to mapping policies.
var Fields = map[string]history.FieldSpec{
	fieldLabeled:    {Kind: history.FieldTagAdd},
	fieldUnlabeled:  {Kind: history.FieldTagRemove},
	fieldAssigned:   {Kind: history.FieldAssigneeAdd},
	fieldUnassigned: {Kind: history.FieldAssigneeRemove},
	fieldMilestone:  {Kind: history.FieldMilestoneDelta},
	fieldTitle:      {Kind: history.FieldSubject},
	fieldState:      {Kind: history.FieldStatusStrict},
}

// NewAdapter returns the GitHub field table.
func NewAdapter() *history.Table {
	return history.NewTable("github", Ignored, Fields)
}
