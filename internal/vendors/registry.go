// Package vendors wires the per-vendor adapters, decoders and API clients.
package vendors

import (
	"sort"
	"time"

	"github.com/spec-kit/history-importer/internal/config"
	"github.com/spec-kit/history-importer/internal/history"
	"github.com/spec-kit/history-importer/internal/vendors/asana"
	"github.com/spec-kit/history-importer/internal/vendors/github"
	"github.com/spec-kit/history-importer/internal/vendors/jira"
	"github.com/spec-kit/history-importer/internal/vendors/trello"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

// Vendor bundles everything the importer needs for one vendor.
type Vendor struct {
	Name    string
	Adapter history.Adapter
	// Decode parses the exported feed of one entity.
	Decode func(data []byte) ([]history.Event, error)
	// NewSource builds an API-backed event source.
	NewSource func(cfg config.VendorConfig, timeout time.Duration) history.Source
}

var registry = map[string]Vendor{
	"asana": {
		Name:    "asana",
		Adapter: asana.NewAdapter(),
		Decode:  asana.Decode,
		NewSource: func(cfg config.VendorConfig, timeout time.Duration) history.Source {
			return asana.NewClient(cfg.BaseURL, cfg.Token).WithPageSize(cfg.PageSize).WithTimeout(timeout)
		},
	},
	"github": {
		Name:    "github",
		Adapter: github.NewAdapter(),
		Decode:  github.Decode,
		NewSource: func(cfg config.VendorConfig, timeout time.Duration) history.Source {
			return github.NewClient(cfg.BaseURL, cfg.Token, cfg.Owner, cfg.Repo).WithPageSize(cfg.PageSize).WithTimeout(timeout)
		},
	},
	"jira": {
		Name:    "jira",
		Adapter: jira.NewAdapter(),
		Decode:  jira.Decode,
		NewSource: func(cfg config.VendorConfig, timeout time.Duration) history.Source {
			return jira.NewClient(cfg.BaseURL, cfg.Username, cfg.Token).WithPageSize(cfg.PageSize).WithTimeout(timeout)
		},
	},
	"trello": {
		Name:    "trello",
		Adapter: trello.NewAdapter(),
		Decode:  trello.Decode,
		NewSource: func(cfg config.VendorConfig, timeout time.Duration) history.Source {
			return trello.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Token).WithPageSize(cfg.PageSize).WithTimeout(timeout)
		},
	},
}

// Lookup returns the vendor registered under name.
func Lookup(name string) (Vendor, error) {
	v, ok := registry[name]
	if !ok {
		return Vendor{}, errorutil.NewValidationError("unknown vendor", map[string]any{
			"vendor":    name,
			"supported": Names(),
		})
	}
	return v, nil
}

// Names lists the registered vendors in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
