package jira

import "github.com/spec-kit/history-importer/internal/history"

// Event kinds produced by this package.
const (
	KindChangelog = "changelog"
	KindComment   = "comment"
)

// Fields maps Jira changelog field names to mapping policies.
var Fields = map[string]history.FieldSpec{
	"Attachment":      {Kind: history.FieldAttachment},
	"description":     {Kind: history.FieldDescription},
	"duedate":         {Kind: history.FieldCustomAttribute, Attribute: "Due date", Raw: true},
	"labels":          {Kind: history.FieldTags},
	"Sprint":          {Kind: history.FieldMilestone},
	"status":          {Kind: history.FieldStatus},
	"Story Points":    {Kind: history.FieldPoints},
	"summary":         {Kind: history.FieldSubject},
	"Epic Color":      {Kind: history.FieldEpicColor},
	"assignee":        {Kind: history.FieldAssignee},
	"priority":        {Kind: history.FieldCustomAttribute, Attribute: "Priority"},
	"resolution":      {Kind: history.FieldCustomAttribute, Attribute: "Resolution"},
	"Epic Link":       {Kind: history.FieldNoop},
	"Rank":            {Kind: history.FieldNoop},
	"RemoteIssueLink": {Kind: history.FieldNoop},
}

// NewAdapter returns the Jira field table. Jira feeds carry no ignored kinds.
func NewAdapter() *history.Table {
	return history.NewTable("jira", nil, Fields)
}
