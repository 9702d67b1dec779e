package history

// Cumulative state keys.
const (
	stateTags        = "tags"
	stateAttachments = "attachments"
	stateAssignee    = "assigned_to"
	stateMilestone   = "milestone"
)

// vendorUser is the assignee currently tracked for multi-assign feeds.
type vendorUser struct {
	ID   string
	Name string
}

// State is the running snapshot of one entity's delta-reported fields.
// It lives for exactly one replay and is owned by the replaying goroutine.
type State struct {
	values map[string]any
}

// NewState returns an empty state.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// Advance returns the value of field before the pending mutation. Lists are
// copied so the caller may keep them as the "old" side of a diff.
func (s *State) Advance(field string) any {
	v, ok := s.values[field]
	if !ok {
		return nil
	}
	if list, ok := v.([]string); ok {
		return copyList(list)
	}
	return v
}

// Commit records the value of field after the mutation.
func (s *State) Commit(field string, value any) {
	if value == nil {
		delete(s.values, field)
		return
	}
	if list, ok := value.([]string); ok {
		value = copyList(list)
	}
	s.values[field] = value
}

// List returns a copy of a list-valued field, empty when unset.
func (s *State) List(field string) []string {
	if list, ok := s.Advance(field).([]string); ok {
		return list
	}
	return []string{}
}

// Tags returns the current tag set in insertion order.
func (s *State) Tags() []string {
	return s.List(stateTags)
}

// Attachments returns the current attachment filenames in order.
func (s *State) Attachments() []string {
	return s.List(stateAttachments)
}

func (s *State) assignee() (vendorUser, bool) {
	u, ok := s.Advance(stateAssignee).(vendorUser)
	return u, ok
}

func (s *State) milestone() string {
	name, _ := s.Advance(stateMilestone).(string)
	return name
}

func copyList(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
