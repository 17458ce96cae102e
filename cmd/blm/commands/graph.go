package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/export"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
)

// GraphCmd builds and exports the module dependency graph
var GraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build and export the module dependency graph",
	Long: `Build the dependency graph from the installed module catalog and print
it in the requested format.

Formats:
  summary - human-readable overview with diagnostics (default)
  json    - structured graph document
  dot     - Graphviz directed-graph markup
  mermaid - Mermaid flowchart markup
  csv     - tabular edge list
  table   - edge list rendered as a terminal table

Examples:
  blm graph                       # Summary with cycle and orphan diagnostics
  blm graph --format dot          # Pipe into Graphviz
  blm graph --format json -o g.json
  blm graph --selected-only       # Restrict to the enabled selection`,
	RunE: runGraph,
}

var (
	graphFormat       string
	graphOutput       string
	graphSelectedOnly bool
	graphNoNative     bool
	graphNoOptional   bool
)

func init() {
	registerCatalogFlags(GraphCmd)
	GraphCmd.Flags().StringVarP(&graphFormat, "format", "f", "summary", "Output format: summary, json, dot, mermaid, csv, table")
	GraphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "Write output to a file instead of stdout")
	GraphCmd.Flags().BoolVar(&graphSelectedOnly, "selected-only", false, "Only include enabled modules")
	GraphCmd.Flags().BoolVar(&graphNoNative, "no-native", false, "Exclude official game modules")
	GraphCmd.Flags().BoolVar(&graphNoOptional, "no-optional", false, "Omit optional dependency edges")
}

func buildGraph(cfg *config.Config) (*depgraph.Graph, error) {
	cat, selection, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	opts := depgraph.BuildOptions{
		IncludeNative:   cfg.Graph.IncludeNative && !graphNoNative,
		IncludeOptional: cfg.Graph.IncludeOptional && !graphNoOptional,
		SelectedOnly:    cfg.Graph.SelectedOnly || graphSelectedOnly,
	}
	builder := depgraph.NewBuilder(logger.Logger)
	return builder.Build(cat, selection, opts), nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	g, err := buildGraph(cfg)
	if err != nil {
		return err
	}

	if graphFormat == "summary" {
		printGraphSummary(g)
		return nil
	}

	var out string
	if graphFormat == "table" {
		out, err = export.Table(g)
	} else {
		out, err = export.Render(g, export.Format(graphFormat))
	}
	if err != nil {
		return err
	}

	if graphOutput != "" {
		if err := os.WriteFile(graphOutput, []byte(out), config.DefaultFilePermissions); err != nil {
			return errors.Wrapf(err, "write %s", graphOutput)
		}
		pterm.Success.Printf("Wrote %s graph to %s\n", graphFormat, graphOutput)
		return nil
	}
	fmt.Print(out)
	return nil
}

func printGraphSummary(g *depgraph.Graph) {
	pterm.Printf("Modules: %s   Edges: %s\n",
		pterm.Green(fmt.Sprintf("%d", len(g.Nodes))),
		pterm.Green(fmt.Sprintf("%d", len(g.Edges))))

	if g.HasCircularDependencies {
		pterm.Warning.Printf("Circular dependencies: %d chain(s)\n", len(g.CircularChains))
		for _, chain := range g.CircularChains {
			pterm.Printf("  %s\n", pterm.Yellow(joinChain(chain)))
		}
	} else {
		pterm.Success.Println("No circular dependencies")
	}

	if len(g.OrphanedModules) > 0 {
		pterm.Printf("Orphaned (nothing depends on them): %s\n",
			pterm.Gray(strings.Join(g.OrphanedModules, ", ")))
	}
	if len(g.RootModules) > 0 {
		pterm.Printf("Roots (only need the game itself): %s\n",
			pterm.Gray(strings.Join(g.RootModules, ", ")))
	}

	unsatisfied := 0
	for _, edge := range g.Edges {
		if !edge.IsSatisfied {
			unsatisfied++
		}
	}
	if unsatisfied > 0 {
		pterm.Warning.Printf("Unsatisfied edges: %d (run 'blm validate' for details)\n", unsatisfied)
	}
}

func joinChain(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}
