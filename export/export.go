// Package export renders a dependency graph in interchange and diagram
// formats. Every renderer reads the graph without modifying it and emits
// nodes and edges in the graph's own deterministic order.
package export

import (
	"encoding/json"

	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// Format names one of the supported renderings
type Format string

const (
	FormatJSON    Format = "json"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatCSV     Format = "csv"
)

// Formats lists every supported format in display order
func Formats() []Format {
	return []Format{FormatJSON, FormatDOT, FormatMermaid, FormatCSV}
}

// Render emits the graph in the requested format
func Render(graph *depgraph.Graph, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return JSON(graph)
	case FormatDOT:
		return DOT(graph), nil
	case FormatMermaid:
		return Mermaid(graph), nil
	case FormatCSV:
		return CSV(graph)
	default:
		return "", errors.Newf("unknown export format %q", format)
	}
}

// JSON renders the graph as an indented JSON document, field for field
func JSON(graph *depgraph.Graph) (string, error) {
	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode graph")
	}
	return string(data) + "\n", nil
}
