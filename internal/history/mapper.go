package history

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/history-importer/internal/domain"
)

// Mapping is the result of mapping one event.
type Mapping struct {
	Old     map[string]any
	New     map[string]any
	Labels  domain.Values
	Comment string
	Type    domain.HistoryType
}

func newMapping() *Mapping {
	return &Mapping{
		Old:    map[string]any{},
		New:    map[string]any{},
		Labels: domain.Values{},
		Type:   domain.HistoryChange,
	}
}

// set records a field change. When an event touches the same field twice the
// first old value is kept and the new value is replaced.
func (m *Mapping) set(field string, prev, next any) {
	if _, seen := m.Old[field]; !seen {
		m.Old[field] = prev
	}
	m.New[field] = next
}

func (m *Mapping) label(category string, sentinel int64, text string) {
	if m.Labels[category] == nil {
		m.Labels[category] = map[string]string{}
	}
	m.Labels[category][strconv.FormatInt(sentinel, 10)] = text
}

// Diff assembles the changed fields of the mapping.
func (m *Mapping) Diff() domain.Diff {
	return Assemble(m.Old, m.New)
}

// HasData reports whether the mapping should produce a history entry: some
// field actually changed, or the event carries a comment or a creation.
func (m *Mapping) HasData() bool {
	return !m.Diff().Empty() || m.Comment != "" || m.Type == domain.HistoryCreate
}

// Mapper turns vendor events into field-level changes.
type Mapper struct {
	adapter  Adapter
	lookups  Lookups
	bindings Bindings
	renderer Renderer
	logger   *zap.Logger
}

// NewMapper builds a mapper for one vendor.
func NewMapper(adapter Adapter, lookups Lookups, bindings Bindings, renderer Renderer, logger *zap.Logger) *Mapper {
	if bindings == nil {
		bindings = UserTable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{
		adapter:  adapter,
		lookups:  lookups,
		bindings: bindings,
		renderer: renderer,
		logger:   logger,
	}
}

// Map converts ev into a Mapping, reading and advancing state for
// delta-reported fields.
func (mp *Mapper) Map(ctx context.Context, entity domain.Entity, state *State, ev Event) (*Mapping, error) {
	m := newMapping()
	m.Comment = ev.Comment
	if ev.Create {
		m.Type = domain.HistoryCreate
	}

	for _, item := range ev.Items {
		spec, ok := mp.adapter.Field(item.Field)
		if !ok || spec.Kind == FieldUnknown {
			mp.logger.Debug("skipping unknown history field",
				zap.String("vendor", mp.adapter.Name()),
				zap.String("entity", entity.Key()),
				zap.String("event_id", ev.ID),
				zap.String("field", item.Field))
			continue
		}
		if err := mp.apply(ctx, entity, state, m, spec, item, ev); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (mp *Mapper) apply(ctx context.Context, entity domain.Entity, state *State, m *Mapping, spec FieldSpec, item Item, ev Event) error {
	switch spec.Kind {
	case FieldNoop:
		return nil
	case FieldSubject:
		m.set("subject", item.FromText, item.ToText)
	case FieldDescription:
		mp.mapDescription(entity, m, item)
	case FieldStatus:
		return mp.mapStatus(ctx, entity, m, item, false)
	case FieldStatusStrict:
		return mp.mapStatus(ctx, entity, m, item, true)
	case FieldAssignee:
		mp.mapAssignee(m, item)
	case FieldAssigneeAdd:
		mp.mapAssigneeAdd(state, m, item)
	case FieldAssigneeRemove:
		mp.mapAssigneeRemove(state, m, item)
	case FieldTags:
		mapTags(state, m, item)
	case FieldTagAdd:
		mapTagAdd(state, m, item)
	case FieldTagRemove:
		mapTagRemove(state, m, item)
	case FieldMilestone:
		return mp.mapMilestone(ctx, entity, state, m, item.FromText, item.ToText)
	case FieldMilestoneDelta:
		return mp.mapMilestoneDelta(ctx, entity, state, m, item)
	case FieldPoints:
		return mp.mapPoints(ctx, entity, m, item)
	case FieldAttachment:
		mp.mapAttachment(entity, state, m, item, ev)
	case FieldCustomAttribute:
		return mp.mapCustomAttribute(ctx, entity, m, spec, item)
	case FieldEpicColor:
		mapEpicColor(entity, m, item)
	}
	return nil
}

func (mp *Mapper) render(projectID int64, text string) string {
	if mp.renderer == nil {
		return text
	}
	return mp.renderer.Render(projectID, text)
}
