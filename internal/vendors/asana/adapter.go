package asana

import "github.com/spec-kit/history-importer/internal/history"

// KindComment marks comment stories.
const KindComment = "comment"

// Field names emitted by the decoder.
const (
	fieldName       = "name"
	fieldNotes      = "notes"
	fieldAssigned   = "assigned"
	fieldUnassigned = "unassigned"
	fieldCompleted  = "completed"
	fieldDueOn      = "due_on"
	fieldTagAdded   = "tag_added"
	fieldTagRemoved = "tag_removed"
	fieldAttachment = "attachment"
)

// Status names completion changes are resolved to.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// Ignored lists story subtypes that never carry history.
var Ignored = []string{
	"added_to_project", "removed_from_project", "liked", "followers_added",
	"section_changed",
}

// Fields maps decoder fields to mapping policies.
var Fields = map[string]history.FieldSpec{
	fieldName:       {Kind: history.FieldSubject},
	fieldNotes:      {Kind: history.FieldDescription},
	fieldAssigned:   {Kind: history.FieldAssigneeAdd},
	fieldUnassigned: {Kind: history.FieldAssigneeRemove},
	fieldCompleted:  {Kind: history.FieldStatusStrict},
	fieldDueOn:      {Kind: history.FieldCustomAttribute, Attribute: "Due date", Raw: true},
	fieldTagAdded:   {Kind: history.FieldTagAdd},
	fieldTagRemoved: {Kind: history.FieldTagRemove},
	fieldAttachment: {Kind: history.FieldAttachment},
}

// NewAdapter returns the Asana field table.
func NewAdapter() *history.Table {
	return history.NewTable("asana", Ignored, Fields)
}
