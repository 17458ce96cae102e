package order

import (
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
)

// Synthesizer produces a topologically consistent load order honoring
// required dependencies and load-after hints. For an acyclic required
// subgraph the output respects every required edge; catalog iteration
// order breaks ties between otherwise-unconstrained modules.
type Synthesizer struct {
	cat    *catalog.Catalog
	logger *zap.SugaredLogger
	policy CyclePolicy
}

// NewSynthesizer creates a synthesizer with the given cycle policy.
// An empty policy defaults to lenient.
func NewSynthesizer(cat *catalog.Catalog, logger *zap.SugaredLogger, policy CyclePolicy) *Synthesizer {
	if policy == "" {
		policy = CyclePolicyLenient
	}
	return &Synthesizer{
		cat:    cat,
		logger: logger.Named("order.synthesizer"),
		policy: policy,
	}
}

// Synthesize orders every enabled module: depth-first postorder visiting
// required dependencies first, then load-after hints, then the module
// itself. A module encountered while it is still being visited closes a
// cycle; that edge is skipped, silently under the lenient policy or
// recorded under the report policy.
func (s *Synthesizer) Synthesize(selection catalog.Selection) *SynthesisResult {
	result := &SynthesisResult{}

	ordered := make(map[string]bool, s.cat.Len())
	inProgress := make(map[string]bool)

	var visit func(m *catalog.Module)
	visit = func(m *catalog.Module) {
		if ordered[m.ID] || inProgress[m.ID] {
			return
		}
		inProgress[m.ID] = true

		for _, ref := range m.Required {
			dep, ok := s.cat.Get(ref.ID)
			if !ok || !selection.IsSelected(dep.ID) {
				continue
			}
			if inProgress[dep.ID] {
				if s.policy == CyclePolicyReport {
					result.BrokenEdges = append(result.BrokenEdges, BrokenEdge{
						ModuleID:     m.ID,
						DependencyID: dep.ID,
					})
				}
				continue
			}
			visit(dep)
		}

		for _, hintID := range m.LoadAfter {
			hinted, ok := s.cat.Get(hintID)
			if !ok || !selection.IsSelected(hinted.ID) || inProgress[hinted.ID] {
				continue
			}
			visit(hinted)
		}

		inProgress[m.ID] = false
		ordered[m.ID] = true
		result.Order = append(result.Order, m.ID)
	}

	for _, m := range s.cat.Modules() {
		if selection.IsSelected(m.ID) {
			visit(m)
		}
	}

	if len(result.BrokenEdges) > 0 {
		s.logger.Warnw("Synthesized order breaks dependency cycles",
			"broken_edges", len(result.BrokenEdges))
	}
	s.logger.Debugw("Synthesized load order", "modules", len(result.Order))

	return result
}
