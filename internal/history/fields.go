package history

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// attachmentSnapshot is how attachment lists appear in a diff. Attachment
// identity is not tracked, so the id is always 0.
type attachmentSnapshot struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
}

// customAttributeValue is how custom attribute changes appear in a diff.
type customAttributeValue struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (mp *Mapper) mapDescription(entity domain.Entity, m *Mapping, item Item) {
	m.set("description", item.FromText, item.ToText)
	m.set("description_html", mp.render(entity.ProjectID, item.FromText), mp.render(entity.ProjectID, item.ToText))
}

func (mp *Mapper) mapStatus(ctx context.Context, entity domain.Entity, m *Mapping, item Item, strict bool) error {
	resolve := func(name string, sentinel int64) (any, error) {
		if name == "" {
			return nil, nil
		}
		ref, err := mp.lookups.Status(ctx, entity.ProjectID, entity.Kind, name)
		if err != nil {
			return nil, fmt.Errorf("lookup %s status %q: %w", entity.Kind, name, err)
		}
		if ref.Found {
			return ref.ID, nil
		}
		if strict {
			return nil, errorutil.NewNotFound("status", map[string]any{
				"name":       name,
				"kind":       string(entity.Kind),
				"project_id": entity.ProjectID,
			})
		}
		m.label("status", sentinel, name)
		return sentinel, nil
	}

	prev, err := resolve(item.FromText, domain.SentinelOld)
	if err != nil {
		return err
	}
	next, err := resolve(item.ToText, domain.SentinelNew)
	if err != nil {
		return err
	}
	m.set("status", prev, next)
	return nil
}

// resolveUser returns the bound user ID or the sentinel, recording the
// vendor display name for the latter.
func (mp *Mapper) resolveUser(m *Mapping, vendorID, display string, sentinel int64) any {
	if user, ok := mp.bindings.User(vendorID); ok {
		return user.ID
	}
	m.label("users", sentinel, display)
	return sentinel
}

func (mp *Mapper) mapAssignee(m *Mapping, item Item) {
	var prev, next any
	if item.From != nil {
		prev = mp.resolveUser(m, *item.From, item.FromText, domain.SentinelOld)
	}
	if item.To != nil {
		next = mp.resolveUser(m, *item.To, item.ToText, domain.SentinelNew)
	}
	m.set("assigned_to", prev, next)
}

// mapAssigneeAdd handles feeds that emit one "assigned" event per assignee.
// Only a change of the tracked assignee produces a diff.
func (mp *Mapper) mapAssigneeAdd(state *State, m *Mapping, item Item) {
	target := vendorUser{ID: deref(item.To), Name: item.ToText}
	if target.ID == "" {
		return
	}
	tracked, hasTracked := state.assignee()
	if hasTracked && tracked.ID == target.ID {
		return
	}
	var prev any
	if hasTracked {
		prev = mp.resolveUser(m, tracked.ID, tracked.Name, domain.SentinelOld)
	}
	next := mp.resolveUser(m, target.ID, target.Name, domain.SentinelNew)
	m.set("assigned_to", prev, next)
	state.Commit(stateAssignee, target)
}

// mapAssigneeRemove clears the tracked assignee. Removing someone other than
// the tracked assignee produces no diff. A missing From removes whoever is
// tracked.
func (mp *Mapper) mapAssigneeRemove(state *State, m *Mapping, item Item) {
	tracked, hasTracked := state.assignee()
	if !hasTracked {
		return
	}
	if item.From != nil && *item.From != tracked.ID {
		return
	}
	prev := mp.resolveUser(m, tracked.ID, tracked.Name, domain.SentinelOld)
	m.set("assigned_to", prev, nil)
	state.Commit(stateAssignee, nil)
}

func normalizeTags(text string) []string {
	tags := []string{}
	for _, tag := range strings.Fields(text) {
		tags = appendUnique(tags, strings.ToLower(tag))
	}
	return tags
}

func mapTags(state *State, m *Mapping, item Item) {
	prev := normalizeTags(item.FromText)
	next := normalizeTags(item.ToText)
	m.set("tags", prev, next)
	state.Commit(stateTags, next)
}

func mapTagAdd(state *State, m *Mapping, item Item) {
	name := strings.ToLower(strings.TrimSpace(item.ToText))
	if name == "" {
		return
	}
	prev := state.Tags()
	next := appendUnique(copyList(prev), name)
	m.set("tags", prev, next)
	state.Commit(stateTags, next)
}

func mapTagRemove(state *State, m *Mapping, item Item) {
	name := strings.ToLower(strings.TrimSpace(item.FromText))
	if name == "" {
		return
	}
	prev := state.Tags()
	next := make([]string, 0, len(prev))
	for _, tag := range prev {
		if tag != name {
			next = append(next, tag)
		}
	}
	m.set("tags", prev, next)
	state.Commit(stateTags, next)
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func (mp *Mapper) mapMilestone(ctx context.Context, entity domain.Entity, state *State, m *Mapping, from, to string) error {
	resolve := func(name string, sentinel int64) (any, error) {
		if name == "" {
			return nil, nil
		}
		ref, err := mp.lookups.Milestone(ctx, entity.ProjectID, name)
		if err != nil {
			return nil, fmt.Errorf("lookup milestone %q: %w", name, err)
		}
		if ref.Found {
			return ref.ID, nil
		}
		m.label("milestone", sentinel, name)
		return sentinel, nil
	}

	prev, err := resolve(from, domain.SentinelOld)
	if err != nil {
		return err
	}
	next, err := resolve(to, domain.SentinelNew)
	if err != nil {
		return err
	}
	m.set("milestone", prev, next)
	if to == "" {
		state.Commit(stateMilestone, nil)
	} else {
		state.Commit(stateMilestone, to)
	}
	return nil
}

// mapMilestoneDelta handles feeds that only name the milestone being set or
// cleared; the other side comes from cumulative state.
func (mp *Mapper) mapMilestoneDelta(ctx context.Context, entity domain.Entity, state *State, m *Mapping, item Item) error {
	current := state.milestone()
	if item.To != nil {
		if current == item.ToText {
			return nil
		}
		return mp.mapMilestone(ctx, entity, state, m, current, item.ToText)
	}
	removed := item.FromText
	if removed == "" {
		removed = current
	}
	if removed == "" {
		return nil
	}
	return mp.mapMilestone(ctx, entity, state, m, removed, "")
}

func (mp *Mapper) mapPoints(ctx context.Context, entity domain.Entity, m *Mapping, item Item) error {
	role, err := mp.lookups.MainRole(ctx, entity.ProjectID)
	if err != nil {
		return fmt.Errorf("lookup main role: %w", err)
	}
	if !role.Found {
		return errorutil.NewNotFound("role", map[string]any{
			"slug":       domain.MainRoleSlug,
			"project_id": entity.ProjectID,
		})
	}

	resolve := func(text string) (any, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errorutil.NewValidationError("invalid points value", map[string]any{"value": text})
		}
		id, err := mp.lookups.Points(ctx, entity.ProjectID, value)
		if err != nil {
			return nil, fmt.Errorf("get or create points %v: %w", value, err)
		}
		return id, nil
	}

	prev, err := resolve(item.FromText)
	if err != nil {
		return err
	}
	next, err := resolve(item.ToText)
	if err != nil {
		return err
	}
	roleKey := strconv.FormatInt(role.ID, 10)
	m.set("points", map[string]any{roleKey: prev}, map[string]any{roleKey: next})
	return nil
}

func (mp *Mapper) mapAttachment(entity domain.Entity, state *State, m *Mapping, item Item, ev Event) {
	files := state.Attachments()
	prev := attachmentSnapshots(files)

	if item.From != nil {
		idx := indexOf(files, item.FromText)
		if idx < 0 {
			mp.logger.Warn("removing attachment missing from history",
				zap.String("vendor", mp.adapter.Name()),
				zap.String("entity", entity.Key()),
				zap.String("event_id", ev.ID),
				zap.String("filename", item.FromText))
		} else {
			files = append(files[:idx], files[idx+1:]...)
		}
	}
	if item.To != nil {
		files = append(files, item.ToText)
	}

	m.set("attachments", prev, attachmentSnapshots(files))
	state.Commit(stateAttachments, files)
}

func attachmentSnapshots(files []string) []attachmentSnapshot {
	out := make([]attachmentSnapshot, 0, len(files))
	for _, name := range files {
		out = append(out, attachmentSnapshot{ID: 0, Filename: name})
	}
	return out
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}

func (mp *Mapper) mapCustomAttribute(ctx context.Context, entity domain.Entity, m *Mapping, spec FieldSpec, item Item) error {
	ref, err := mp.lookups.CustomAttribute(ctx, entity.ProjectID, entity.Kind, spec.Attribute)
	if err != nil {
		return fmt.Errorf("lookup custom attribute %q: %w", spec.Attribute, err)
	}
	if !ref.Found {
		return errorutil.NewNotFound("custom attribute", map[string]any{
			"name":       spec.Attribute,
			"kind":       string(entity.Kind),
			"project_id": entity.ProjectID,
		})
	}

	prev, next := textValue(item.FromText), textValue(item.ToText)
	if spec.Raw {
		prev, next = rawValue(item.From), rawValue(item.To)
	}

	oldList, _ := m.Old["custom_attributes"].([]customAttributeValue)
	newList, _ := m.New["custom_attributes"].([]customAttributeValue)
	m.Old["custom_attributes"] = append(oldList, customAttributeValue{ID: ref.ID, Name: spec.Attribute, Value: prev})
	m.New["custom_attributes"] = append(newList, customAttributeValue{ID: ref.ID, Name: spec.Attribute, Value: next})
	return nil
}

func textValue(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func rawValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func mapEpicColor(entity domain.Entity, m *Mapping, item Item) {
	if entity.Kind != domain.EntityEpic {
		return
	}
	m.set("color", epicColorValue(item.FromText), epicColorValue(item.ToText))
}

func epicColorValue(class string) any {
	if hex, ok := domain.EpicColor(class); ok {
		return hex
	}
	return nil
}
