package formatter

import (
	"fmt"
	"strings"

	"netgraphx/internal/builder"
	"netgraphx/internal/graph"
	"netgraphx/internal/runner"
)

// Format renders a report in the named output format.
func Format(report *runner.Report, format string) (string, error) {
	switch format {
	case "", "text":
		return ToText(report), nil
	case "json":
		return ToJSON(report)
	case "cypher":
		return ToCypher(report.Graph)
	case "dot":
		if report.Rendering == nil {
			return "", fmt.Errorf("report has no rendering")
		}
		return report.Rendering.DOT, nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// ToText renders a report for a terminal.
func ToText(report *runner.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Run:      %s\n", report.RunID)
	fmt.Fprintf(&sb, "Document: %s\n", report.Filename)
	sb.WriteString("\nConfiguration topology:\n")
	writeAdjacency(&sb, report.ConfigTopology)
	if report.Graph != nil {
		roles := builder.Roles(report.Graph)
		sb.WriteString("\nDevices:\n")
		for _, id := range report.Graph.NodeIDs() {
			fmt.Fprintf(&sb, "  %s (%s)\n", id, roles[id])
		}
	}
	sb.WriteString("\nDiagram topology (external nodes removed):\n")
	writeAdjacency(&sb, report.ImageTopology)
	if len(report.Removed) > 0 {
		fmt.Fprintf(&sb, "  removed: %s\n", strings.Join(report.Removed, ", "))
	}

	sb.WriteString("\n")
	if report.Match {
		sb.WriteString("Verdict: MATCH - the diagram reproduces the configuration topology\n")
		return sb.String()
	}

	sb.WriteString("Verdict: MISMATCH\n")
	for _, key := range report.Diff.MissingKeys {
		fmt.Fprintf(&sb, "  missing from diagram: %s\n", key)
	}
	for _, key := range report.Diff.ExtraKeys {
		fmt.Fprintf(&sb, "  only in diagram:      %s\n", key)
	}
	for _, nd := range report.Diff.Neighbors {
		fmt.Fprintf(&sb, "  %s: expected [%s], got [%s]\n", nd.Node, strings.Join(nd.Expected, ", "), strings.Join(nd.Actual, ", "))
	}
	return sb.String()
}

func writeAdjacency(sb *strings.Builder, adj graph.Adjacency) {
	if len(adj) == 0 {
		sb.WriteString("  (empty)\n")
		return
	}
	for _, key := range adj.Keys() {
		fmt.Fprintf(sb, "  %s: %s\n", key, strings.Join(adj[key], ", "))
	}
}
