// Package bindings loads import manifests and vendor user binding tables.
package bindings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/history-importer/internal/domain"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// ManifestEntity names one target entity and the vendor feed it replays.
type ManifestEntity struct {
	Kind       domain.EntityKind `yaml:"kind" json:"kind"`
	ID         int64             `yaml:"id" json:"id"`
	ExternalID string            `yaml:"external_id" json:"external_id"`
	Children   []ManifestEntity  `yaml:"children,omitempty" json:"children,omitempty"`
}

// Manifest lists the entities of one import run in replay order.
type Manifest struct {
	Vendor    string           `yaml:"vendor" json:"vendor"`
	ProjectID int64            `yaml:"project_id" json:"project_id"`
	Entities  []ManifestEntity `yaml:"entities" json:"entities"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes and validates manifest YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errorutil.NewValidationError("invalid manifest yaml", map[string]any{"error": err.Error()})
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the manifest is complete.
func (m *Manifest) Validate() error {
	if m.Vendor == "" {
		return errorutil.NewValidationError("manifest vendor is required", nil)
	}
	if m.ProjectID <= 0 {
		return errorutil.NewValidationError("manifest project_id is required", nil)
	}
	if len(m.Entities) == 0 {
		return errorutil.NewValidationError("manifest lists no entities", nil)
	}
	return validateEntities(m.Entities, "entities")
}

func validateEntities(entities []ManifestEntity, path string) error {
	for i, e := range entities {
		at := fmt.Sprintf("%s[%d]", path, i)
		if !e.Kind.Valid() {
			return errorutil.NewValidationError("unknown entity kind", map[string]any{"at": at, "kind": string(e.Kind)})
		}
		if e.ID <= 0 {
			return errorutil.NewValidationError("entity id is required", map[string]any{"at": at})
		}
		if e.ExternalID == "" {
			return errorutil.NewValidationError("entity external_id is required", map[string]any{"at": at})
		}
		if err := validateEntities(e.Children, at+".children"); err != nil {
			return err
		}
	}
	return nil
}

// Targets converts the manifest into domain entities bound to its project.
func (m *Manifest) Targets() []domain.Entity {
	return toEntities(m.Entities, m.ProjectID)
}

// Count returns the number of entities including children.
func (m *Manifest) Count() int {
	return count(m.Entities)
}

func toEntities(in []ManifestEntity, projectID int64) []domain.Entity {
	out := make([]domain.Entity, 0, len(in))
	for _, e := range in {
		out = append(out, domain.Entity{
			ID:         e.ID,
			ProjectID:  projectID,
			Kind:       e.Kind,
			ExternalID: e.ExternalID,
			Children:   toEntities(e.Children, projectID),
		})
	}
	return out
}

func count(entities []ManifestEntity) int {
	n := len(entities)
	for _, e := range entities {
		n += count(e.Children)
	}
	return n
}
