package trello

import "github.com/spec-kit/history-importer/internal/history"

// Action kinds requested from the API.
var Included = []string{
	"addAttachmentToCard", "addMemberToCard", "commentCard",
	"convertToCardFromCheckItem", "copyCommentCard", "createCard",
	"deleteAttachmentFromCard", "deleteCard", "removeMemberFromCard",
	"updateCard",
}

// Ignored lists fetched kinds that produce no history.
var Ignored = []string{
	"addAttachmentToCard", "addMemberToCard", "deleteAttachmentFromCard",
	"deleteCard", "removeMemberFromCard",
}

// createKinds record the creation of the card.
var createKinds = map[string]bool{
	"createCard":                 true,
	"convertToCardFromCheckItem": true,
	"copyCommentCard":            true,
}

// DueAttribute is the custom attribute card due dates are stored in.
const DueAttribute = "Due"

// Fields maps updateCard keys to mapping policies.
var Fields = map[string]history.FieldSpec{
	"desc":   {Kind: history.FieldDescription},
	"idList": {Kind: history.FieldStatusStrict},
	"name":   {Kind: history.FieldSubject},
	"due":    {Kind: history.FieldCustomAttribute, Attribute: DueAttribute, Raw: true},
}

// NewAdapter returns the Trello field table.
func NewAdapter() *history.Table {
	return history.NewTable("trello", Ignored, Fields)
}
