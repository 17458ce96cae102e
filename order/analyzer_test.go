package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func allSelected(cat *catalog.Catalog) catalog.Selection {
	selection := make(catalog.Selection, cat.Len())
	for _, id := range cat.IDs() {
		selection[id] = true
	}
	return selection
}

func pairCatalog() *catalog.Catalog {
	// Y requires X
	return catalog.New([]catalog.Module{
		{ID: "X", Name: "X Library"},
		{ID: "Y", Name: "Y Mod", Required: []catalog.ModuleRef{{ID: "X"}}},
	})
}

func TestAnalyzeHealthyOrder(t *testing.T) {
	cat := pairCatalog()
	analyzer := NewAnalyzer(cat, testLogger())

	result := analyzer.Analyze([]string{"X", "Y"}, allSelected(cat), AnalyzeOptions{})

	assert.False(t, result.HasIssues)
	assert.Zero(t, result.CriticalIssues)
	assert.Zero(t, result.Warnings)
	assert.Equal(t, 100, result.HealthScore)
	assert.Empty(t, result.Suggestions)
	assert.Contains(t, result.Summary, "healthy")
}

func TestAnalyzeRequiredViolation(t *testing.T) {
	cat := pairCatalog()
	analyzer := NewAnalyzer(cat, testLogger())

	result := analyzer.Analyze([]string{"Y", "X"}, allSelected(cat), AnalyzeOptions{})

	assert.True(t, result.HasIssues)
	assert.Equal(t, 1, result.CriticalIssues)
	assert.Zero(t, result.Warnings)
	assert.Equal(t, 80, result.HealthScore)

	require.Len(t, result.Suggestions, 1)
	s := result.Suggestions[0]
	assert.Equal(t, "Y", s.ModuleID)
	assert.Equal(t, MoveAfter, s.Type)
	assert.Equal(t, "X", s.TargetModuleID)
	assert.Equal(t, 0, s.CurrentPosition)
	assert.Equal(t, 1, s.SuggestedPosition)
	assert.Equal(t, ConfidenceRequired, s.Confidence)
	assert.Equal(t, PriorityCritical, s.Priority)
	assert.NotEmpty(t, s.ID)
}

func TestAnalyzeLoadHints(t *testing.T) {
	cat := catalog.New([]catalog.Module{
		{ID: "Base", Name: "Base"},
		{ID: "Patch", Name: "Patch", LoadAfter: []string{"Base"}},
		{ID: "Early", Name: "Early", LoadBefore: []string{"Base"}},
	})
	analyzer := NewAnalyzer(cat, testLogger())

	// Patch before Base violates its load-after hint; Early after Base
	// violates its load-before hint
	result := analyzer.Analyze([]string{"Patch", "Base", "Early"}, allSelected(cat), AnalyzeOptions{})

	assert.Zero(t, result.CriticalIssues)
	assert.Equal(t, 2, result.Warnings)
	assert.Equal(t, 90, result.HealthScore)
	require.Len(t, result.Suggestions, 2)

	byModule := make(map[string]Suggestion)
	for _, s := range result.Suggestions {
		byModule[s.ModuleID] = s
	}
	assert.Equal(t, MoveAfter, byModule["Patch"].Type)
	assert.Equal(t, ConfidenceHigh, byModule["Patch"].Confidence)
	assert.Equal(t, MoveBefore, byModule["Early"].Type)
	assert.Equal(t, 1, byModule["Early"].SuggestedPosition)
}

func TestAnalyzeSuggestionsSortedByPriority(t *testing.T) {
	cat := catalog.New([]catalog.Module{
		{ID: "Base", Name: "Base"},
		{ID: "Soft", Name: "Soft", LoadAfter: []string{"Base"}},
		{ID: "Hard", Name: "Hard", Required: []catalog.ModuleRef{{ID: "Base"}}},
	})
	analyzer := NewAnalyzer(cat, testLogger())

	result := analyzer.Analyze([]string{"Soft", "Hard", "Base"}, allSelected(cat), AnalyzeOptions{})

	require.Len(t, result.Suggestions, 2)
	assert.Equal(t, PriorityCritical, result.Suggestions[0].Priority)
	assert.Equal(t, "Hard", result.Suggestions[0].ModuleID)
	assert.Equal(t, PriorityWarning, result.Suggestions[1].Priority)
}

func TestAnalyzeMissingModulesSkipped(t *testing.T) {
	cat := pairCatalog()
	analyzer := NewAnalyzer(cat, testLogger())

	// X absent from the order: the required check has no position to
	// compare against and stays silent
	result := analyzer.Analyze([]string{"Y"}, allSelected(cat), AnalyzeOptions{})
	assert.False(t, result.HasIssues)

	// Unknown ids in the order are ignored outright
	result = analyzer.Analyze([]string{"Ghost", "X", "Y"}, allSelected(cat), AnalyzeOptions{})
	assert.False(t, result.HasIssues)
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name     string
		critical int
		warnings int
		want     int
	}{
		{"clean", 0, 0, 100},
		{"one critical", 1, 0, 80},
		{"one of each", 1, 2, 70},
		{"clamped at zero", 5, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, healthScore(tt.critical, tt.warnings))
		})
	}
}

func TestAnalyzeWithSynthesis(t *testing.T) {
	cat := pairCatalog()
	analyzer := NewAnalyzer(cat, testLogger())

	result := analyzer.Analyze([]string{"Y", "X"}, allSelected(cat), AnalyzeOptions{Synthesize: true})
	assert.Equal(t, []string{"X", "Y"}, result.OptimizedOrder)

	result = analyzer.Analyze([]string{"Y", "X"}, allSelected(cat), AnalyzeOptions{})
	assert.Nil(t, result.OptimizedOrder)
}

func TestApplySuggestion(t *testing.T) {
	cat := pairCatalog()
	analyzer := NewAnalyzer(cat, testLogger())
	order := []string{"Y", "X"}

	result := analyzer.Analyze(order, allSelected(cat), AnalyzeOptions{})
	require.Len(t, result.Suggestions, 1)

	fixed, err := ApplySuggestion(order, result, result.Suggestions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, fixed)
	assert.Equal(t, []string{"Y", "X"}, order, "input order is not mutated")

	// The fixed order analyzes clean
	assert.False(t, analyzer.Analyze(fixed, allSelected(cat), AnalyzeOptions{}).HasIssues)
}

func TestApplySuggestionUnknownID(t *testing.T) {
	result := &Result{}
	_, err := ApplySuggestion([]string{"A"}, result, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSuggestionNotFound))
}

func TestPositions(t *testing.T) {
	cat := pairCatalog()
	selection := catalog.Selection{"X": true, "Y": false}

	positions := Positions(cat, []string{"X", "Y", "Ghost"}, selection)

	require.Len(t, positions, 3)
	assert.Equal(t, Position{ID: "X", Index: 0, Name: "X Library", Selected: true}, positions[0])
	assert.Equal(t, Position{ID: "Y", Index: 1, Name: "Y Mod", Selected: false}, positions[1])
	assert.Equal(t, "Ghost", positions[2].Name, "unknown id falls back to the id")
}
