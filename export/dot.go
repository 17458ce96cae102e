package export

import (
	"fmt"
	"strings"

	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
)

// DOT renders the graph as Graphviz directed-graph markup. Node shape and
// fill follow the native and selected flags; edge style follows the edge
// kind, with unsatisfied edges drawn in red.
func DOT(graph *depgraph.Graph) string {
	var b strings.Builder
	b.WriteString("digraph modules {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, fontname=\"Helvetica\"];\n\n")

	for _, node := range graph.Nodes {
		b.WriteString(fmt.Sprintf("  %s [label=%s%s];\n",
			dotQuote(node.ID),
			dotQuote(nodeLabel(node)),
			dotNodeAttrs(node)))
	}

	b.WriteString("\n")
	for _, edge := range graph.Edges {
		b.WriteString(fmt.Sprintf("  %s -> %s [%s];\n",
			dotQuote(edge.SourceID),
			dotQuote(edge.TargetID),
			dotEdgeAttrs(edge)))
	}

	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(node depgraph.Node) string {
	label := node.Name
	if label == "" {
		label = node.ID
	}
	if node.Version != "" {
		label += "\n" + node.Version
	}
	return label
}

func dotNodeAttrs(node depgraph.Node) string {
	var attrs []string
	if node.IsNative {
		attrs = append(attrs, "style=filled", "fillcolor=lightgray")
	}
	if !node.IsSelected {
		attrs = append(attrs, "color=gray", "fontcolor=gray")
	}
	if len(attrs) == 0 {
		return ""
	}
	return ", " + strings.Join(attrs, ", ")
}

func dotEdgeAttrs(edge depgraph.Edge) string {
	attrs := []string{fmt.Sprintf("label=%s", dotQuote(edge.Label))}
	switch edge.Kind {
	case depgraph.EdgeOptional:
		attrs = append(attrs, "style=dashed")
	case depgraph.EdgeIncompatible:
		attrs = append(attrs, "style=bold", "color=red", "arrowhead=tee")
	case depgraph.EdgeLoadBefore, depgraph.EdgeLoadAfter:
		attrs = append(attrs, "style=dotted", "color=gray")
	}
	if !edge.IsSatisfied && edge.Kind != depgraph.EdgeIncompatible {
		attrs = append(attrs, "color=red")
	}
	return strings.Join(attrs, ", ")
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}
