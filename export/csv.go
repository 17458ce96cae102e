package export

import (
	"fmt"
	"strconv"
	"strings"

	csvenc "encoding/csv"

	"github.com/pterm/pterm"

	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

var edgeListHeader = []string{"source", "target", "kind", "required_version", "satisfied", "label"}

// CSV renders the graph as a tabular edge list
func CSV(graph *depgraph.Graph) (string, error) {
	var b strings.Builder
	w := csvenc.NewWriter(&b)

	if err := w.Write(edgeListHeader); err != nil {
		return "", errors.Wrap(err, "write edge list header")
	}
	for _, edge := range graph.Edges {
		record := []string{
			edge.SourceID,
			edge.TargetID,
			string(edge.Kind),
			edge.RequiredVersion,
			strconv.FormatBool(edge.IsSatisfied),
			edge.Label,
		}
		if err := w.Write(record); err != nil {
			return "", errors.Wrap(err, "write edge list row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flush edge list")
	}
	return b.String(), nil
}

// Table renders the edge list as a terminal table
func Table(graph *depgraph.Graph) (string, error) {
	data := pterm.TableData{{"Source", "Target", "Kind", "Satisfied", "Label"}}
	for _, edge := range graph.Edges {
		satisfied := "yes"
		if !edge.IsSatisfied {
			satisfied = pterm.Red("no")
		}
		data = append(data, []string{
			edge.SourceID,
			edge.TargetID,
			string(edge.Kind),
			satisfied,
			edge.Label,
		})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", errors.Wrap(err, "render edge table")
	}
	return out + "\n", nil
}

// TreeText renders a module tree as indented text, one node per line
func TreeText(tree *depgraph.ModuleTree) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (dependencies: %d, dependents: %d, depth: %d)\n",
		tree.ModuleID, tree.TotalDependencies, tree.TotalDependents, tree.MaxDepth))

	if tree.DependencyTree != nil && len(tree.DependencyTree.Children) > 0 {
		b.WriteString("depends on:\n")
		for _, child := range tree.DependencyTree.Children {
			writeTreeNode(&b, child, 1)
		}
	}
	if tree.DependentTree != nil && len(tree.DependentTree.Children) > 0 {
		b.WriteString("depended on by:\n")
		for _, child := range tree.DependentTree.Children {
			writeTreeNode(&b, child, 1)
		}
	}
	return b.String()
}

func writeTreeNode(b *strings.Builder, node depgraph.TreeNode, indent int) {
	b.WriteString(strings.Repeat("  ", indent))
	label := node.Name
	if label == "" {
		label = node.ID
	}
	b.WriteString(label)
	if node.Version != "" {
		b.WriteString(" " + node.Version)
	}
	if !node.IsInstalled {
		b.WriteString(" (missing)")
	} else if !node.IsSatisfied {
		b.WriteString(" (disabled)")
	}
	b.WriteString("\n")
	for _, child := range node.Children {
		writeTreeNode(b, child, indent+1)
	}
}
