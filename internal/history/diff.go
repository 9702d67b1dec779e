package history

import (
	"reflect"
	"strconv"

	"github.com/spec-kit/history-importer/internal/domain"
)

// sentinelCategories maps diff fields that may carry sentinel IDs to their
// side-table category.
var sentinelCategories = map[string]string{
	"assigned_to": "users",
	"status":      "status",
	"milestone":   "milestone",
}

// Assemble builds a diff holding only the keys present in either map whose
// values differ. A key missing on one side is recorded as nil on that side.
func Assemble(prev, next map[string]any) domain.Diff {
	diff := domain.Diff{Old: map[string]any{}, New: map[string]any{}}
	for key, ov := range prev {
		nv := next[key]
		if reflect.DeepEqual(ov, nv) {
			continue
		}
		diff.Old[key] = ov
		diff.New[key] = nv
	}
	for key, nv := range next {
		if _, seen := prev[key]; seen {
			continue
		}
		if nv == nil {
			continue
		}
		diff.Old[key] = nil
		diff.New[key] = nv
	}
	return diff
}

// RenderValues builds the side-table for every sentinel ID present in diff,
// taking display text from labels. A sentinel without a label maps to "".
func RenderValues(diff domain.Diff, labels domain.Values) domain.Values {
	values := domain.Values{}
	for field, category := range sentinelCategories {
		if isSentinel(diff.Old[field], domain.SentinelOld) {
			putLabel(values, category, domain.SentinelOld, labels)
		}
		if isSentinel(diff.New[field], domain.SentinelNew) {
			putLabel(values, category, domain.SentinelNew, labels)
		}
	}
	return values
}

func putLabel(values domain.Values, category string, sentinel int64, labels domain.Values) {
	key := strconv.FormatInt(sentinel, 10)
	if values[category] == nil {
		values[category] = map[string]string{}
	}
	values[category][key] = labels[category][key]
}

func isSentinel(v any, sentinel int64) bool {
	id, ok := v.(int64)
	return ok && id == sentinel
}
