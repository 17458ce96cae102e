package order

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// Per-violation health score penalties
const (
	criticalPenalty = 20
	warningPenalty  = 5
)

// AnalyzeOptions controls an analysis run
type AnalyzeOptions struct {
	// Synthesize attaches a topologically consistent order to the result
	Synthesize bool
	// CyclePolicy is forwarded to the synthesizer when Synthesize is set
	CyclePolicy CyclePolicy
}

// Analyzer checks a concrete load order against the catalog's constraints
type Analyzer struct {
	cat    *catalog.Catalog
	logger *zap.SugaredLogger
}

// NewAnalyzer creates an analyzer over the given catalog
func NewAnalyzer(cat *catalog.Catalog, logger *zap.SugaredLogger) *Analyzer {
	return &Analyzer{
		cat:    cat,
		logger: logger.Named("order.analyzer"),
	}
}

// Analyze grades the current order of enabled modules. Three constraint
// classes are checked against the position map:
//
//  1. required dependencies must load at or before the module (critical)
//  2. load-after hints should load at or before the module (warning)
//  3. load-before hints should load at or after the module (warning)
//
// Modules absent from the order skip the corresponding check; nothing
// here raises an error for malformed input.
func (a *Analyzer) Analyze(currentOrder []string, selection catalog.Selection, opts AnalyzeOptions) *Result {
	positions := make(map[string]int, len(currentOrder))
	for i, id := range currentOrder {
		positions[id] = i
	}

	result := &Result{Suggestions: []Suggestion{}}

	for _, id := range currentOrder {
		module, ok := a.cat.Get(id)
		if !ok {
			continue
		}
		modulePos := positions[id]

		for _, ref := range module.Required {
			depPos, present := positions[ref.ID]
			if !present || depPos <= modulePos {
				continue
			}
			result.CriticalIssues++
			result.Suggestions = append(result.Suggestions, Suggestion{
				ID:                uuid.NewString(),
				ModuleID:          id,
				Type:              MoveAfter,
				TargetModuleID:    ref.ID,
				CurrentPosition:   modulePos,
				SuggestedPosition: depPos,
				Confidence:        ConfidenceRequired,
				Reason:            "required dependency loads after this module",
				Explanation: fmt.Sprintf("%s requires %s but loads before it; move %s after %s",
					a.displayName(id), a.displayName(ref.ID), a.displayName(id), a.displayName(ref.ID)),
				Priority: PriorityCritical,
			})
		}

		for _, hintID := range module.LoadAfter {
			hintPos, present := positions[hintID]
			if !present || hintPos <= modulePos {
				continue
			}
			result.Warnings++
			result.Suggestions = append(result.Suggestions, Suggestion{
				ID:                uuid.NewString(),
				ModuleID:          id,
				Type:              MoveAfter,
				TargetModuleID:    hintID,
				CurrentPosition:   modulePos,
				SuggestedPosition: hintPos,
				Confidence:        ConfidenceHigh,
				Reason:            "load-after hint not honored",
				Explanation: fmt.Sprintf("%s prefers to load after %s; move %s later",
					a.displayName(id), a.displayName(hintID), a.displayName(id)),
				Priority: PriorityWarning,
			})
		}

		for _, hintID := range module.LoadBefore {
			hintPos, present := positions[hintID]
			if !present || hintPos >= modulePos {
				continue
			}
			result.Warnings++
			result.Suggestions = append(result.Suggestions, Suggestion{
				ID:                uuid.NewString(),
				ModuleID:          id,
				Type:              MoveBefore,
				TargetModuleID:    hintID,
				CurrentPosition:   modulePos,
				SuggestedPosition: hintPos,
				Confidence:        ConfidenceHigh,
				Reason:            "load-before hint not honored",
				Explanation: fmt.Sprintf("%s prefers to load before %s; move %s earlier",
					a.displayName(id), a.displayName(hintID), a.displayName(id)),
				Priority: PriorityWarning,
			})
		}
	}

	sort.SliceStable(result.Suggestions, func(i, j int) bool {
		return result.Suggestions[i].Priority < result.Suggestions[j].Priority
	})

	result.HasIssues = len(result.Suggestions) > 0
	result.HealthScore = healthScore(result.CriticalIssues, result.Warnings)
	result.Summary = summarize(result)

	if opts.Synthesize {
		synth := NewSynthesizer(a.cat, a.logger, opts.CyclePolicy)
		result.OptimizedOrder = synth.Synthesize(selection).Order
	}

	a.logger.Debugw("Analyzed load order",
		"modules", len(currentOrder),
		"critical", result.CriticalIssues,
		"warnings", result.Warnings,
		"health", result.HealthScore)

	return result
}

// ApplySuggestion returns a new order with the suggestion's module moved to
// its suggested position. Returns ErrSuggestionNotFound for an unknown id.
func ApplySuggestion(currentOrder []string, result *Result, suggestionID string) ([]string, error) {
	var suggestion *Suggestion
	for i := range result.Suggestions {
		if result.Suggestions[i].ID == suggestionID {
			suggestion = &result.Suggestions[i]
			break
		}
	}
	if suggestion == nil {
		return nil, errors.Wrapf(errors.ErrSuggestionNotFound, "suggestion %q", suggestionID)
	}

	out := make([]string, 0, len(currentOrder))
	for _, id := range currentOrder {
		if id != suggestion.ModuleID {
			out = append(out, id)
		}
	}
	if len(out) == len(currentOrder) {
		// Module vanished from the order since the analysis; nothing to move
		return currentOrder, nil
	}

	insert := suggestion.SuggestedPosition
	if insert > len(out) {
		insert = len(out)
	}
	if insert < 0 {
		insert = 0
	}
	out = append(out[:insert], append([]string{suggestion.ModuleID}, out[insert:]...)...)
	return out, nil
}

// Positions renders an order as the position-indexed structure handed to
// the external apply step
func Positions(cat *catalog.Catalog, currentOrder []string, selection catalog.Selection) []Position {
	out := make([]Position, 0, len(currentOrder))
	for i, id := range currentOrder {
		name := id
		if m, ok := cat.Get(id); ok {
			name = m.Name
		}
		out = append(out, Position{
			ID:       id,
			Index:    i,
			Name:     name,
			Selected: selection.IsSelected(id),
		})
	}
	return out
}

func (a *Analyzer) displayName(id string) string {
	if m, ok := a.cat.Get(id); ok && m.Name != "" {
		return m.Name
	}
	return id
}

// healthScore maps violation counts onto the 0..100 heuristic
func healthScore(critical, warnings int) int {
	score := 100 - critical*criticalPenalty - warnings*warningPenalty
	if score < 0 {
		return 0
	}
	return score
}

func summarize(r *Result) string {
	if !r.HasIssues {
		return "load order is healthy; no violations found"
	}
	return fmt.Sprintf("%d critical issue(s), %d warning(s); health %d/100",
		r.CriticalIssues, r.Warnings, r.HealthScore)
}
