// Package depgraph builds and analyzes the module dependency graph: typed
// nodes and edges derived from the catalog, circular chain detection, and
// per-module dependency/dependent trees.
//
// Everything here is a pure function of its inputs. A graph is built fresh
// per analysis call and never mutated after it is returned; cycles are
// ordinary data, not errors.
package depgraph

// EdgeKind classifies the relation an edge represents
type EdgeKind string

const (
	// KindModule marks the root of a module tree rather than a relation
	KindModule EdgeKind = "module"

	EdgeRequired     EdgeKind = "required"
	EdgeOptional     EdgeKind = "optional"
	EdgeIncompatible EdgeKind = "incompatible"
	EdgeLoadBefore   EdgeKind = "load_before"
	EdgeLoadAfter    EdgeKind = "load_after"
)

// Node represents one module in the dependency graph
type Node struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Version    string `json:"version"`
	IsNative   bool   `json:"is_native"`
	IsSelected bool   `json:"is_selected"`

	// Filled in a second pass over the edge set
	DependencyCount int `json:"dependency_count"` // outgoing required edges
	DependentCount  int `json:"dependent_count"`  // incoming required edges
}

// Edge represents a typed relation between two modules.
//
// IsSatisfied for required/optional edges means the target exists and is
// currently selected; for incompatible edges it means the target is NOT
// selected. Ordering-hint edges are always satisfied at the graph level,
// the order analyzer judges them against a concrete load order.
type Edge struct {
	SourceID        string   `json:"source_id"`
	TargetID        string   `json:"target_id"`
	Kind            EdgeKind `json:"kind"`
	RequiredVersion string   `json:"required_version,omitempty"`
	IsSatisfied     bool     `json:"is_satisfied"`
	Label           string   `json:"label"`
}

// Graph is the validated dependency graph for one analysis call.
// The edge set never references an id absent from Nodes; references to
// filtered-out or uninstalled modules are elided during the build.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	CircularChains          [][]string `json:"circular_chains"`
	OrphanedModules         []string   `json:"orphaned_modules"`
	RootModules             []string   `json:"root_modules"`
	HasCircularDependencies bool       `json:"has_circular_dependencies"`
}

// Node returns the node with the given id
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// RequiredEdges returns only the required edges of the graph
func (g *Graph) RequiredEdges() []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Kind == EdgeRequired {
			out = append(out, e)
		}
	}
	return out
}

// TreeNode is one node of a dependency or dependent tree. Depth increases
// by one per hop from the root module; a module already visited anywhere in
// the traversal is not expanded again, which keeps cyclic graphs finite.
type TreeNode struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	Kind        EdgeKind   `json:"kind"`
	IsSatisfied bool       `json:"is_satisfied"`
	IsInstalled bool       `json:"is_installed"`
	Depth       int        `json:"depth"`
	Children    []TreeNode `json:"children,omitempty"`
}

// ModuleTree holds both trees for a single module plus summary metrics
type ModuleTree struct {
	ModuleID       string    `json:"module_id"`
	DependencyTree *TreeNode `json:"dependency_tree"`
	DependentTree  *TreeNode `json:"dependent_tree"`

	// Distinct module count across each whole tree, duplicates not counted
	TotalDependencies int `json:"total_dependencies"`
	TotalDependents   int `json:"total_dependents"`
	// Deepest leaf depth across both trees, 0 for a module with no relations
	MaxDepth int `json:"max_depth"`
}
