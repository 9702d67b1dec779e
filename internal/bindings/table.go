package bindings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// File is the on-disk binding table for one vendor.
type File struct {
	Vendor string                 `yaml:"vendor"`
	Users  map[string]domain.User `yaml:"users"`
}

// LoadFile reads a binding table file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes binding table YAML. Entries without a target id are
// rejected so a typo cannot silently unbind a user.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errorutil.NewValidationError("invalid bindings yaml", map[string]any{"error": err.Error()})
	}
	if f.Vendor == "" {
		return nil, errorutil.NewValidationError("bindings vendor is required", nil)
	}
	for vendorID, user := range f.Users {
		if vendorID == "" || user.ID <= 0 {
			return nil, errorutil.NewValidationError("binding needs a vendor id and a target user id", map[string]any{
				"vendor_id": vendorID,
			})
		}
	}
	return &f, nil
}

// Table returns the bindings as a read-only lookup table.
func (f *File) Table() history.UserTable {
	table := make(history.UserTable, len(f.Users))
	for vendorID, user := range f.Users {
		table[vendorID] = user
	}
	return table
}

// UserIDs lists the distinct target user ids referenced by the table.
func UserIDs(table history.UserTable) []int64 {
	seen := map[int64]struct{}{}
	ids := make([]int64, 0, len(table))
	for _, user := range table {
		if _, ok := seen[user.ID]; ok {
			continue
		}
		seen[user.ID] = struct{}{}
		ids = append(ids, user.ID)
	}
	return ids
}
