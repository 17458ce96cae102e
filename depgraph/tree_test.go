package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

func TestTreeSharedVisited(t *testing.T) {
	// A requires B and C, B requires C: C appears once (under B),
	// totalDependencies counts distinct modules
	cat := catalog.New([]catalog.Module{
		{ID: "A", Name: "A", Required: []catalog.ModuleRef{{ID: "B"}, {ID: "C"}}},
		{ID: "B", Name: "B", Required: []catalog.ModuleRef{{ID: "C"}}},
		{ID: "C", Name: "C"},
	})

	tree, err := NewTreeBuilder(cat, allSelected(cat), testLogger()).Build("A")
	require.NoError(t, err)

	assert.Equal(t, 2, tree.TotalDependencies)
	assert.Equal(t, 2, tree.MaxDepth)

	root := tree.DependencyTree
	require.Len(t, root.Children, 1, "C is not shown again under the root")
	assert.Equal(t, "B", root.Children[0].ID)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "C", root.Children[0].Children[0].ID)
	assert.Equal(t, 2, root.Children[0].Children[0].Depth)
}

func TestTreeDependents(t *testing.T) {
	cat := catalog.New([]catalog.Module{
		{ID: "Native", Name: "Native", IsNative: true},
		{ID: "Harmony", Name: "Harmony", Required: []catalog.ModuleRef{{ID: "Native"}}},
		{ID: "UIExtender", Name: "UIExtender", Required: []catalog.ModuleRef{{ID: "Harmony"}}},
		{ID: "Tweaks", Name: "Tweaks", Required: []catalog.ModuleRef{{ID: "UIExtender"}}},
	})

	tree, err := NewTreeBuilder(cat, allSelected(cat), testLogger()).Build("Harmony")
	require.NoError(t, err)

	assert.Equal(t, 1, tree.TotalDependencies, "Native")
	assert.Equal(t, 2, tree.TotalDependents, "UIExtender and Tweaks")
	assert.Equal(t, 2, tree.MaxDepth, "dependent chain is the deeper side")

	depd := tree.DependentTree
	require.Len(t, depd.Children, 1)
	assert.Equal(t, "UIExtender", depd.Children[0].ID)
	require.Len(t, depd.Children[0].Children, 1)
	assert.Equal(t, "Tweaks", depd.Children[0].Children[0].ID)
}

func TestTreeCycleSafety(t *testing.T) {
	// A transitively depends on itself; the shared visited set terminates
	// the walk at the first repeat
	cat := catalog.New([]catalog.Module{
		{ID: "A", Name: "A", Required: []catalog.ModuleRef{{ID: "B"}}},
		{ID: "B", Name: "B", Required: []catalog.ModuleRef{{ID: "A"}}},
	})

	tree, err := NewTreeBuilder(cat, allSelected(cat), testLogger()).Build("A")
	require.NoError(t, err)

	assert.Equal(t, 1, tree.TotalDependencies)
	require.Len(t, tree.DependencyTree.Children, 1)
	assert.Empty(t, tree.DependencyTree.Children[0].Children, "A is not expanded again under B")

	// The dependent side also terminates
	assert.Equal(t, 1, tree.TotalDependents)
}

func TestTreeUninstalledDependency(t *testing.T) {
	cat := catalog.New([]catalog.Module{
		{ID: "Mod", Name: "Mod", Required: []catalog.ModuleRef{{ID: "Ghost", Version: "v1.0.0"}}},
	})

	tree, err := NewTreeBuilder(cat, allSelected(cat), testLogger()).Build("Mod")
	require.NoError(t, err)

	require.Len(t, tree.DependencyTree.Children, 1)
	ghost := tree.DependencyTree.Children[0]
	assert.False(t, ghost.IsInstalled)
	assert.False(t, ghost.IsSatisfied)
	assert.Equal(t, "v1.0.0", ghost.Version)
	assert.Empty(t, ghost.Children)
}

func TestTreeEmpty(t *testing.T) {
	cat := catalog.New([]catalog.Module{{ID: "Solo", Name: "Solo"}})

	tree, err := NewTreeBuilder(cat, allSelected(cat), testLogger()).Build("Solo")
	require.NoError(t, err)

	assert.Equal(t, 0, tree.TotalDependencies)
	assert.Equal(t, 0, tree.TotalDependents)
	assert.Equal(t, 0, tree.MaxDepth)
}

func TestTreeUnknownModule(t *testing.T) {
	cat := catalog.New(nil)
	_, err := NewTreeBuilder(cat, nil, testLogger()).Build("Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModuleNotFound))
}
