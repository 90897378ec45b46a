package catalog

import (
	"embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry holds the workspace types and icons a workspace may use
type Registry struct {
	catalog Catalog
	types   map[string]*WorkspaceType
	mu      sync.RWMutex
}

// NewRegistry creates a registry from the embedded catalog file
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return NewRegistryFromYAML(data)
}

// NewRegistryFromYAML creates a registry from raw catalog YAML
func NewRegistryFromYAML(data []byte) (*Registry, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	r := &Registry{
		catalog: c,
		types:   make(map[string]*WorkspaceType, len(c.Types)),
	}
	for i := range r.catalog.Types {
		t := &r.catalog.Types[i]
		if t.ID == "" {
			return nil, fmt.Errorf("catalog type %d has no id", i)
		}
		if _, dup := r.types[t.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog type %q", t.ID)
		}
		if t.Starter != nil {
			if err := t.Starter.check(); err != nil {
				return nil, fmt.Errorf("catalog type %q: %w", t.ID, err)
			}
			t.HasStarter = true
		}
		r.types[t.ID] = t
	}

	if _, ok := r.types[c.DefaultType]; !ok {
		return nil, fmt.Errorf("default type %q is not in the catalog", c.DefaultType)
	}
	if !slices.Contains(c.Icons, c.DefaultIcon) {
		return nil, fmt.Errorf("default icon %q is not in the catalog", c.DefaultIcon)
	}

	return r, nil
}

// DefaultType returns the type assigned when a request omits one
func (r *Registry) DefaultType() string {
	return r.catalog.DefaultType
}

// DefaultIcon returns the icon assigned when a request omits one
func (r *Registry) DefaultIcon() string {
	return r.catalog.DefaultIcon
}

// GetType returns a workspace type by id
func (r *Registry) GetType(id string) (*WorkspaceType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[id]
	return t, ok
}

// HasIcon reports whether icon is a known icon id
func (r *Registry) HasIcon(icon string) bool {
	return slices.Contains(r.catalog.Icons, icon)
}

// TypeIDs returns every type id in catalog order
func (r *Registry) TypeIDs() []string {
	ids := make([]string, 0, len(r.catalog.Types))
	for _, t := range r.catalog.Types {
		ids = append(ids, t.ID)
	}
	return ids
}

// Icons returns every icon id in catalog order
func (r *Registry) Icons() []string {
	return slices.Clone(r.catalog.Icons)
}

// Catalog returns the catalog for display
func (r *Registry) Catalog() Catalog {
	return r.catalog
}
