package depgraph

import (
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// TreeBuilder expands a single module into its upstream dependency tree
// and downstream dependent tree. Both builds are independent and cycle
// safe: a shared visited set per traversal means no module is expanded
// twice, so a module that transitively depends on itself terminates at
// the first repeat.
type TreeBuilder struct {
	cat       *catalog.Catalog
	selection catalog.Selection
	logger    *zap.SugaredLogger
}

// NewTreeBuilder creates a tree builder over the given catalog state
func NewTreeBuilder(cat *catalog.Catalog, selection catalog.Selection, logger *zap.SugaredLogger) *TreeBuilder {
	return &TreeBuilder{
		cat:       cat,
		selection: selection,
		logger:    logger.Named("depgraph.tree"),
	}
}

// Build produces both trees for the module id.
// Returns ErrModuleNotFound when the id is not in the catalog.
func (tb *TreeBuilder) Build(moduleID string) (*ModuleTree, error) {
	module, ok := tb.cat.Get(moduleID)
	if !ok {
		return nil, errors.NewModuleNotFound(moduleID)
	}

	depRoot := tb.rootNode(module)
	depVisited := map[string]bool{moduleID: true}
	depRoot.Children = tb.expandDependencies(module, 1, depVisited)

	depdRoot := tb.rootNode(module)
	depdVisited := map[string]bool{moduleID: true}
	depdRoot.Children = tb.expandDependents(moduleID, 1, depdVisited)

	tree := &ModuleTree{
		ModuleID:          moduleID,
		DependencyTree:    depRoot,
		DependentTree:     depdRoot,
		TotalDependencies: countNodes(depRoot) - 1, // root does not count itself
		TotalDependents:   countNodes(depdRoot) - 1,
	}
	tree.MaxDepth = maxLeafDepth(depRoot)
	if d := maxLeafDepth(depdRoot); d > tree.MaxDepth {
		tree.MaxDepth = d
	}

	tb.logger.Debugw("Built module trees",
		"module", moduleID,
		"dependencies", tree.TotalDependencies,
		"dependents", tree.TotalDependents,
		"max_depth", tree.MaxDepth)

	return tree, nil
}

func (tb *TreeBuilder) rootNode(module *catalog.Module) *TreeNode {
	return &TreeNode{
		ID:          module.ID,
		Name:        module.Name,
		Version:     module.Version,
		Kind:        KindModule,
		IsSatisfied: tb.selection.IsSelected(module.ID),
		IsInstalled: true,
		Depth:       0,
	}
}

// expandDependencies walks required references outward, depth-first.
// A reference to an uninstalled module becomes an unexpandable leaf with
// IsInstalled false; an already-visited module is skipped entirely, so a
// dependency appears at most once anywhere in the tree.
func (tb *TreeBuilder) expandDependencies(module *catalog.Module, depth int, visited map[string]bool) []TreeNode {
	var children []TreeNode

	for _, ref := range module.Required {
		if visited[ref.ID] {
			continue
		}
		visited[ref.ID] = true

		target, installed := tb.cat.Get(ref.ID)
		if !installed {
			children = append(children, TreeNode{
				ID:          ref.ID,
				Name:        ref.ID,
				Version:     ref.Version,
				Kind:        EdgeRequired,
				IsSatisfied: false,
				IsInstalled: false,
				Depth:       depth,
			})
			continue
		}

		child := TreeNode{
			ID:          target.ID,
			Name:        target.Name,
			Version:     target.Version,
			Kind:        EdgeRequired,
			IsSatisfied: tb.selection.IsSelected(target.ID),
			IsInstalled: true,
			Depth:       depth,
		}
		child.Children = tb.expandDependencies(target, depth+1, visited)
		children = append(children, child)
	}

	return children
}

// expandDependents walks the reverse relation: every catalog module whose
// required list references the target id becomes a child.
func (tb *TreeBuilder) expandDependents(targetID string, depth int, visited map[string]bool) []TreeNode {
	var children []TreeNode

	for _, m := range tb.cat.Modules() {
		if visited[m.ID] || !requiresModule(m, targetID) {
			continue
		}
		visited[m.ID] = true

		child := TreeNode{
			ID:          m.ID,
			Name:        m.Name,
			Version:     m.Version,
			Kind:        EdgeRequired,
			IsSatisfied: tb.selection.IsSelected(m.ID),
			IsInstalled: true,
			Depth:       depth,
		}
		child.Children = tb.expandDependents(m.ID, depth+1, visited)
		children = append(children, child)
	}

	return children
}

func requiresModule(m *catalog.Module, targetID string) bool {
	for _, ref := range m.Required {
		if ref.ID == targetID {
			return true
		}
	}
	return false
}

// countNodes counts all nodes in the tree including the root
func countNodes(node *TreeNode) int {
	count := 1
	for i := range node.Children {
		count += countNodes(&node.Children[i])
	}
	return count
}

// maxLeafDepth returns the deepest depth present in the tree, 0 when the
// root has no children
func maxLeafDepth(node *TreeNode) int {
	max := node.Depth
	for i := range node.Children {
		if d := maxLeafDepth(&node.Children[i]); d > max {
			max = d
		}
	}
	return max
}
