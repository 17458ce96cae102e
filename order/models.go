// Package order checks a linear module load order against the catalog's
// declared constraints and synthesizes topologically consistent orders.
//
// The analyzer never fails on malformed input: a module missing from the
// current order simply skips that check, and every finding is graded data
// rather than an error.
package order

// SuggestionType names the reordering action a suggestion proposes
type SuggestionType string

const (
	MoveBefore SuggestionType = "move_before"
	MoveAfter  SuggestionType = "move_after"
)

// Confidence grades how certain a suggestion is
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceRequired Confidence = "required"
)

// Suggestion priorities: hard dependency-order violations outrank soft
// ordering-hint violations.
const (
	PriorityCritical = 1
	PriorityWarning  = 2
)

// Suggestion is one actionable reordering proposal
type Suggestion struct {
	ID                string         `json:"id"`
	ModuleID          string         `json:"module_id"`
	Type              SuggestionType `json:"type"`
	TargetModuleID    string         `json:"target_module_id,omitempty"`
	CurrentPosition   int            `json:"current_position"`
	SuggestedPosition int            `json:"suggested_position"`
	Confidence        Confidence     `json:"confidence"`
	Reason            string         `json:"reason"`
	Explanation       string         `json:"explanation"`
	Priority          int            `json:"priority"`
}

// Result summarizes one load order analysis
type Result struct {
	HasIssues      bool         `json:"has_issues"`
	CriticalIssues int          `json:"critical_issues"`
	Warnings       int          `json:"warnings"`
	HealthScore    int          `json:"health_score"` // 0..100
	Suggestions    []Suggestion `json:"suggestions"`  // sorted by priority
	OptimizedOrder []string     `json:"optimized_order,omitempty"`
	Summary        string       `json:"summary"`
}

// Position assigns one module a zero-based slot in the applied load order.
// This is the structure handed to the external apply step.
type Position struct {
	ID       string `json:"id"`
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// CyclePolicy controls synthesizer behavior when required edges form a
// cycle. The lenient policy silently skips the in-progress module, which
// breaks the cycle arbitrarily; the report policy produces the same order
// but surfaces the broken edges on the result.
type CyclePolicy string

const (
	CyclePolicyLenient CyclePolicy = "lenient"
	CyclePolicyReport  CyclePolicy = "report"
)

// BrokenEdge records a required dependency the synthesizer could not honor
// because it participated in a cycle
type BrokenEdge struct {
	ModuleID     string `json:"module_id"`
	DependencyID string `json:"dependency_id"`
}

// SynthesisResult carries a synthesized order plus any broken edges
// (populated only under CyclePolicyReport)
type SynthesisResult struct {
	Order       []string     `json:"order"`
	BrokenEdges []BrokenEdge `json:"broken_edges,omitempty"`
}
