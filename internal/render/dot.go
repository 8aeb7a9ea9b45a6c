package render

import (
	"fmt"
	"strings"

	"netgraphx/internal/classify"
	"netgraphx/internal/graph"
	"netgraphx/internal/layout"

	"github.com/awalterschulze/gographviz"
)

const graphName = "topology"

// shapes is used for roles whose icon is missing.
var shapes = map[classify.Role]string{
	classify.Server: "box3d",
	classify.Router: "ellipse",
	classify.Switch: "box",
	classify.PC:     "component",
	classify.Other:  "octagon",
}

// quoter escapes the two characters that are special inside a quoted DOT ID.
var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote turns any string into a quoted DOT ID. Device names may be DOT
// keywords or contain port separators, so nothing is left bare.
func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// DOT converts a topology graph into Graphviz source with every node pinned
// at its layout position. Positions are in points, for `neato -n2`.
func DOT(g *graph.Graph, positions map[string]layout.Position, icons IconSet) (string, error) {
	dot := gographviz.NewGraph()
	if err := dot.SetName(graphName); err != nil {
		return "", fmt.Errorf("failed to set graph name: %w", err)
	}
	if err := dot.SetDir(false); err != nil {
		return "", fmt.Errorf("failed to set graph direction: %w", err)
	}
	if err := dot.AddAttr(graphName, "outputorder", "edgesfirst"); err != nil {
		return "", fmt.Errorf("failed to set graph attribute: %w", err)
	}

	for _, n := range g.Nodes {
		pos, ok := positions[n.ID]
		if !ok {
			return "", fmt.Errorf("no position for node %q", n.ID)
		}
		if err := dot.AddNode(graphName, quote(n.ID), nodeAttrs(n, pos, icons)); err != nil {
			return "", fmt.Errorf("failed to add node %q: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		attrs := map[string]string{"color": "gray"}
		if err := dot.AddEdge(quote(e.From), quote(e.To), false, attrs); err != nil {
			return "", fmt.Errorf("failed to add edge %q -- %q: %w", e.From, e.To, err)
		}
	}

	return dot.String(), nil
}

func nodeAttrs(n graph.Node, pos layout.Position, icons IconSet) map[string]string {
	role := n.Role
	if role == "" {
		role = classify.Other
	}

	attrs := map[string]string{
		"label":    quote(n.ID),
		"pos":      quote(fmt.Sprintf("%.2f,%.2f!", pos.X, pos.Y)),
		"fontsize": "14",
	}

	if icon := icons.Lookup(role); icon != "" {
		attrs["image"] = quote(icon)
		attrs["shape"] = "none"
		attrs["labelloc"] = "b"
		attrs["imagescale"] = "true"
		return attrs
	}

	attrs["shape"] = shapes[role]
	attrs["style"] = "filled"
	attrs["fillcolor"] = "lightblue"
	return attrs
}
