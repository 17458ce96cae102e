package depgraph

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
)

func buildFromModules(t *testing.T, modules []catalog.Module) *Graph {
	t.Helper()
	cat := catalog.New(modules)
	return NewBuilder(testLogger()).Build(cat, allSelected(cat), DefaultBuildOptions())
}

func TestDetectCyclesLinearChain(t *testing.T) {
	g := buildFromModules(t, []catalog.Module{
		{ID: "A", Name: "A", Required: []catalog.ModuleRef{{ID: "B"}}},
		{ID: "B", Name: "B", Required: []catalog.ModuleRef{{ID: "C"}}},
		{ID: "C", Name: "C"},
	})

	assert.Empty(t, g.CircularChains)
	assert.False(t, g.HasCircularDependencies)
}

func TestDetectCyclesTriangle(t *testing.T) {
	g := buildFromModules(t, []catalog.Module{
		{ID: "A", Name: "A", Required: []catalog.ModuleRef{{ID: "B"}}},
		{ID: "B", Name: "B", Required: []catalog.ModuleRef{{ID: "C"}}},
		{ID: "C", Name: "C", Required: []catalog.ModuleRef{{ID: "A"}}},
	})

	require.Len(t, g.CircularChains, 1)
	assert.True(t, g.HasCircularDependencies)

	chain := g.CircularChains[0]
	require.Len(t, chain, 4, "chain closes the loop by repeating the entry node")
	assert.Equal(t, chain[0], chain[len(chain)-1])
	assert.ElementsMatch(t, []string{"A", "B", "C"}, chain[:3])
}

func TestDetectCyclesSelfLoop(t *testing.T) {
	g := buildFromModules(t, []catalog.Module{
		{ID: "A", Name: "A", Required: []catalog.ModuleRef{{ID: "A"}}},
	})

	require.Len(t, g.CircularChains, 1)
	assert.Equal(t, []string{"A", "A"}, g.CircularChains[0])
}

func TestDetectCyclesDisjoint(t *testing.T) {
	g := buildFromModules(t, []catalog.Module{
		{ID: "A", Name: "A", Required: []catalog.ModuleRef{{ID: "B"}}},
		{ID: "B", Name: "B", Required: []catalog.ModuleRef{{ID: "A"}}},
		{ID: "C", Name: "C", Required: []catalog.ModuleRef{{ID: "D"}}},
		{ID: "D", Name: "D", Required: []catalog.ModuleRef{{ID: "C"}}},
		{ID: "E", Name: "E"},
	})

	assert.Len(t, g.CircularChains, 2, "both disjoint cycles are found")
}

func TestDetectCyclesOnlyRequiredEdges(t *testing.T) {
	// A loads after B, B loads after A: soft hints never form a cycle
	g := buildFromModules(t, []catalog.Module{
		{ID: "A", Name: "A", LoadAfter: []string{"B"}},
		{ID: "B", Name: "B", LoadAfter: []string{"A"}},
	})

	assert.Empty(t, g.CircularChains)
}

func TestDetectCyclesDeepChain(t *testing.T) {
	// A long linear chain exercises the explicit work stack
	const depth = 5000
	modules := make([]catalog.Module, depth)
	for i := 0; i < depth; i++ {
		id := nodeID(i)
		m := catalog.Module{ID: id, Name: id}
		if i < depth-1 {
			m.Required = []catalog.ModuleRef{{ID: nodeID(i + 1)}}
		}
		modules[i] = m
	}

	g := buildFromModules(t, modules)
	assert.Empty(t, g.CircularChains)
}

func nodeID(i int) string {
	return "mod-" + strconv.Itoa(i)
}
