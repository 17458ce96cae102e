package depgraph

import (
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
)

// BuildOptions controls which modules and relations enter the graph
type BuildOptions struct {
	// IncludeNative includes official game modules as nodes (default true).
	// When false, required references to native modules are elided rather
	// than reported as dangling.
	IncludeNative bool
	// IncludeOptional emits edges for optional dependencies
	IncludeOptional bool
	// SelectedOnly restricts nodes to the currently enabled selection
	SelectedOnly bool
}

// DefaultBuildOptions matches the launcher's standard graph view
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		IncludeNative:   true,
		IncludeOptional: true,
		SelectedOnly:    false,
	}
}

// Builder converts a module catalog plus selection state into a Graph
type Builder struct {
	logger *zap.SugaredLogger
}

// NewBuilder creates a graph builder
func NewBuilder(logger *zap.SugaredLogger) *Builder {
	return &Builder{logger: logger.Named("depgraph.builder")}
}

func noopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Build assembles the dependency graph. It is a pure function of its
// inputs: the catalog is read-only and the returned graph is never shared.
func (b *Builder) Build(cat *catalog.Catalog, selection catalog.Selection, opts BuildOptions) *Graph {
	graph := &Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}

	// Pass 1: nodes, in catalog iteration order
	nodeIndex := make(map[string]int, cat.Len())
	for _, m := range cat.Modules() {
		if !opts.IncludeNative && m.IsNative {
			continue
		}
		if opts.SelectedOnly && !selection.IsSelected(m.ID) {
			continue
		}
		nodeIndex[m.ID] = len(graph.Nodes)
		graph.Nodes = append(graph.Nodes, Node{
			ID:         m.ID,
			Name:       m.Name,
			Version:    m.Version,
			IsNative:   m.IsNative,
			IsSelected: selection.IsSelected(m.ID),
		})
	}

	// Pass 2: edges. Only relations whose target survived the node filters
	// are emitted, so the edge set never dangles.
	for _, m := range cat.Modules() {
		if _, ok := nodeIndex[m.ID]; !ok {
			continue
		}

		for _, ref := range m.Required {
			if _, ok := nodeIndex[ref.ID]; !ok {
				continue
			}
			graph.Edges = append(graph.Edges, Edge{
				SourceID:        m.ID,
				TargetID:        ref.ID,
				Kind:            EdgeRequired,
				RequiredVersion: ref.Version,
				IsSatisfied:     selection.IsSelected(ref.ID),
				Label:           "requires",
			})
		}

		if opts.IncludeOptional {
			for _, ref := range m.Optional {
				if _, ok := nodeIndex[ref.ID]; !ok {
					continue
				}
				graph.Edges = append(graph.Edges, Edge{
					SourceID:        m.ID,
					TargetID:        ref.ID,
					Kind:            EdgeOptional,
					RequiredVersion: ref.Version,
					IsSatisfied:     selection.IsSelected(ref.ID),
					Label:           "optionally uses",
				})
			}
		}

		for _, id := range m.Incompatible {
			if _, ok := nodeIndex[id]; !ok {
				continue
			}
			graph.Edges = append(graph.Edges, Edge{
				SourceID:    m.ID,
				TargetID:    id,
				Kind:        EdgeIncompatible,
				IsSatisfied: !selection.IsSelected(id),
				Label:       "incompatible with",
			})
		}

		// Ordering hints: the source carries the hint, the target is the
		// referenced module. LoadAfter means the target loads before the
		// source; LoadBefore the reverse.
		for _, id := range m.LoadAfter {
			if _, ok := nodeIndex[id]; !ok {
				continue
			}
			graph.Edges = append(graph.Edges, Edge{
				SourceID:    m.ID,
				TargetID:    id,
				Kind:        EdgeLoadAfter,
				IsSatisfied: true,
				Label:       "loads after",
			})
		}
		for _, id := range m.LoadBefore {
			if _, ok := nodeIndex[id]; !ok {
				continue
			}
			graph.Edges = append(graph.Edges, Edge{
				SourceID:    m.ID,
				TargetID:    id,
				Kind:        EdgeLoadBefore,
				IsSatisfied: true,
				Label:       "loads before",
			})
		}
	}

	// Pass 3: per-node required-edge counts
	for _, e := range graph.Edges {
		if e.Kind != EdgeRequired {
			continue
		}
		graph.Nodes[nodeIndex[e.SourceID]].DependencyCount++
		graph.Nodes[nodeIndex[e.TargetID]].DependentCount++
	}

	// Pass 4: orphans and roots among non-native nodes.
	// An orphan has nothing depending on it; a root depends only on the
	// native game modules (or on nothing at all).
	requiredTargets := make(map[string][]string)
	for _, e := range graph.Edges {
		if e.Kind == EdgeRequired {
			requiredTargets[e.SourceID] = append(requiredTargets[e.SourceID], e.TargetID)
		}
	}
	for _, n := range graph.Nodes {
		if n.IsNative {
			continue
		}
		if n.DependentCount == 0 {
			graph.OrphanedModules = append(graph.OrphanedModules, n.ID)
		}
		onlyNative := true
		for _, target := range requiredTargets[n.ID] {
			if t, ok := graph.Node(target); ok && !t.IsNative {
				onlyNative = false
				break
			}
		}
		if onlyNative {
			graph.RootModules = append(graph.RootModules, n.ID)
		}
	}

	// Cycle detection over required edges only
	graph.CircularChains = detectCycles(graph)
	graph.HasCircularDependencies = len(graph.CircularChains) > 0

	b.logger.Debugw("Built dependency graph",
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
		"cycles", len(graph.CircularChains),
		"orphans", len(graph.OrphanedModules),
		"roots", len(graph.RootModules))

	return graph
}
