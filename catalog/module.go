// Package catalog supplies the module catalog consumed by the dependency
// graph and load order engines: module descriptors with their declared
// relations, plus the selection state tracking which modules are enabled.
//
// The catalog is read-only to the analysis packages. It can be populated
// from a catalog document (JSON/TOML/YAML) or by scanning a Bannerlord
// game directory for SubModule.xml descriptors.
package catalog

// ModuleRef references another module as a dependency
type ModuleRef struct {
	ID string `json:"id" toml:"id" yaml:"id"`
	// Version is the declared dependent version, informational only;
	// satisfiability is a presence check, not a range match
	Version string `json:"version,omitempty" toml:"version,omitempty" yaml:"version,omitempty"`
}

// Module describes one installable module and its declared relations
type Module struct {
	ID       string `json:"id" toml:"id" yaml:"id"`
	Name     string `json:"name" toml:"name" yaml:"name"`
	Version  string `json:"version" toml:"version" yaml:"version"`
	IsNative bool   `json:"native,omitempty" toml:"native,omitempty" yaml:"native,omitempty"`

	Required     []ModuleRef `json:"required,omitempty" toml:"required,omitempty" yaml:"required,omitempty"`
	Optional     []ModuleRef `json:"optional,omitempty" toml:"optional,omitempty" yaml:"optional,omitempty"`
	LoadAfter    []string    `json:"load_after,omitempty" toml:"load_after,omitempty" yaml:"load_after,omitempty"`
	LoadBefore   []string    `json:"load_before,omitempty" toml:"load_before,omitempty" yaml:"load_before,omitempty"`
	Incompatible []string    `json:"incompatible,omitempty" toml:"incompatible,omitempty" yaml:"incompatible,omitempty"`
}

// Selection tracks which modules are currently enabled
type Selection map[string]bool

// IsSelected reports whether the module id is enabled.
// Unknown ids are not selected.
func (s Selection) IsSelected(id string) bool {
	return s != nil && s[id]
}

// Clone returns an independent copy of the selection
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id, enabled := range s {
		out[id] = enabled
	}
	return out
}

// Catalog is an ordered collection of module descriptors with id lookup.
// Iteration order is the order modules were supplied in; the order
// synthesizer uses it as a tie-break for otherwise-unconstrained modules.
type Catalog struct {
	modules []*Module
	byID    map[string]*Module
}

// New builds a catalog from module descriptors.
// A duplicate id keeps the first descriptor; later ones are dropped.
func New(modules []Module) *Catalog {
	c := &Catalog{
		modules: make([]*Module, 0, len(modules)),
		byID:    make(map[string]*Module, len(modules)),
	}
	for i := range modules {
		m := modules[i]
		if _, exists := c.byID[m.ID]; exists {
			continue
		}
		c.modules = append(c.modules, &m)
		c.byID[m.ID] = &m
	}
	return c
}

// Modules returns the modules in catalog iteration order
func (c *Catalog) Modules() []*Module {
	return c.modules
}

// Get returns the module with the given id
func (c *Catalog) Get(id string) (*Module, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Has reports whether the id is present in the catalog
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Len returns the number of modules in the catalog
func (c *Catalog) Len() int {
	return len(c.modules)
}

// IDs returns module ids in catalog iteration order
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.modules))
	for i, m := range c.modules {
		ids[i] = m.ID
	}
	return ids
}
