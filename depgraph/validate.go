package depgraph

import (
	"fmt"
	"strings"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
)

// IssueSeverity grades a validation finding
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is one per-module validation finding: a reason the current module
// set may fail to load. Issues are diagnostics, never errors; a catalog
// full of problems still validates cleanly into a list of findings.
type Issue struct {
	ModuleID string        `json:"module_id"`
	Severity IssueSeverity `json:"severity"`
	Kind     string        `json:"kind"`
	Message  string        `json:"message"`
	// RelatedID names the other module involved, when there is one
	RelatedID string `json:"related_id,omitempty"`
}

// Validate aggregates missing-dependency, disabled-dependency,
// incompatibility and cycle findings per module, feeding the launcher's
// "modules with problems" view.
func Validate(cat *catalog.Catalog, selection catalog.Selection) []Issue {
	var issues []Issue

	for _, m := range cat.Modules() {
		if !selection.IsSelected(m.ID) {
			continue
		}

		for _, ref := range m.Required {
			target, installed := cat.Get(ref.ID)
			if !installed {
				issues = append(issues, Issue{
					ModuleID:  m.ID,
					Severity:  SeverityError,
					Kind:      "missing_dependency",
					Message:   fmt.Sprintf("%s requires %s, which is not installed", m.Name, ref.ID),
					RelatedID: ref.ID,
				})
				continue
			}
			if !selection.IsSelected(ref.ID) {
				issues = append(issues, Issue{
					ModuleID:  m.ID,
					Severity:  SeverityError,
					Kind:      "disabled_dependency",
					Message:   fmt.Sprintf("%s requires %s, which is disabled", m.Name, target.Name),
					RelatedID: ref.ID,
				})
			}
		}

		for _, id := range m.Incompatible {
			if selection.IsSelected(id) {
				issues = append(issues, Issue{
					ModuleID:  m.ID,
					Severity:  SeverityError,
					Kind:      "incompatible_enabled",
					Message:   fmt.Sprintf("%s is incompatible with enabled module %s", m.Name, id),
					RelatedID: id,
				})
			}
		}
	}

	// Cycle membership, derived from a selected-only required graph
	builder := &Builder{logger: noopLogger()}
	graph := builder.Build(cat, selection, BuildOptions{IncludeNative: true, SelectedOnly: true})
	for _, chain := range graph.CircularChains {
		members := chain[:len(chain)-1] // last element repeats the first
		for _, id := range members {
			issues = append(issues, Issue{
				ModuleID: id,
				Severity: SeverityError,
				Kind:     "circular_dependency",
				Message:  fmt.Sprintf("circular dependency chain: %s", strings.Join(chain, " -> ")),
			})
		}
	}

	return issues
}
