package history

// FieldKind selects the mapping policy for a vendor field.
type FieldKind int

const (
	FieldUnknown FieldKind = iota
	// FieldNoop is recognized but deliberately produces no diff.
	FieldNoop
	FieldSubject
	FieldDescription
	// FieldStatus degrades to sentinels when a status name is missing.
	FieldStatus
	// FieldStatusStrict fails the run when a status name is missing.
	FieldStatusStrict
	FieldAssignee
	FieldAssigneeAdd
	FieldAssigneeRemove
	FieldTags
	FieldTagAdd
	FieldTagRemove
	FieldMilestone
	// FieldMilestoneDelta reads the previous milestone from cumulative state.
	FieldMilestoneDelta
	FieldPoints
	FieldAttachment
	FieldCustomAttribute
	FieldEpicColor
)

// FieldSpec binds a vendor field name to a mapping policy.
type FieldSpec struct {
	Kind FieldKind
	// Attribute names the custom attribute for FieldCustomAttribute.
	Attribute string
	// Raw takes values from Item.From/To instead of the display text.
	Raw bool
}

// Adapter describes one vendor's event feed to the replay engine.
type Adapter interface {
	Name() string
	IsIgnored(kind string) bool
	Field(name string) (FieldSpec, bool)
}

// Table is a declarative Adapter built from an ignored-kind list and a field table.
type Table struct {
	vendor  string
	ignored map[string]struct{}
	fields  map[string]FieldSpec
}

// NewTable builds an adapter for vendor.
func NewTable(vendor string, ignored []string, fields map[string]FieldSpec) *Table {
	set := make(map[string]struct{}, len(ignored))
	for _, kind := range ignored {
		set[kind] = struct{}{}
	}
	copied := make(map[string]FieldSpec, len(fields))
	for name, spec := range fields {
		copied[name] = spec
	}
	return &Table{vendor: vendor, ignored: set, fields: copied}
}

func (t *Table) Name() string { return t.vendor }

func (t *Table) IsIgnored(kind string) bool {
	_, ok := t.ignored[kind]
	return ok
}

func (t *Table) Field(name string) (FieldSpec, bool) {
	spec, ok := t.fields[name]
	return spec, ok
}
