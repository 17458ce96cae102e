package export

import (
	"fmt"
	"strings"

	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
)

// Mermaid renders the graph as flow-diagram markup. Module ids are mapped to
// positional identifiers so arbitrary catalog ids never collide with the
// diagram syntax.
func Mermaid(graph *depgraph.Graph) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	ids := make(map[string]string, len(graph.Nodes))
	for i, node := range graph.Nodes {
		mid := fmt.Sprintf("n%d", i)
		ids[node.ID] = mid

		label := node.Name
		if label == "" {
			label = node.ID
		}
		if node.IsNative {
			b.WriteString(fmt.Sprintf("    %s[[%q]]\n", mid, label))
		} else {
			b.WriteString(fmt.Sprintf("    %s[%q]\n", mid, label))
		}
		if !node.IsSelected {
			b.WriteString(fmt.Sprintf("    style %s stroke-dasharray: 5 5\n", mid))
		}
	}

	for _, edge := range graph.Edges {
		source, ok := ids[edge.SourceID]
		if !ok {
			continue
		}
		target, ok := ids[edge.TargetID]
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("    %s %s|%q| %s\n",
			source, mermaidArrow(edge.Kind), edge.Label, target))
	}

	return b.String()
}

func mermaidArrow(kind depgraph.EdgeKind) string {
	switch kind {
	case depgraph.EdgeRequired:
		return "-->"
	case depgraph.EdgeIncompatible:
		return "--x"
	default:
		return "-.->"
	}
}
