package builder

import (
	"netgraphx/internal/classify"
	"netgraphx/internal/graph"
)

// Build constructs the undirected topology graph for an adjacency list and
// assigns every node its device role.
func Build(adj graph.Adjacency) *graph.Graph {
	g := graph.New()

	// Sorted keys keep node and edge order stable between runs
	for _, node := range adj.Keys() {
		// Keys with no neighbors are still devices
		g.AddNode(node)
		for _, neighbor := range adj[node] {
			g.AddEdge(node, neighbor)
		}
	}

	assignRoles(g)

	return g
}

// assignRoles classifies every node once all edges are in place.
func assignRoles(g *graph.Graph) {
	for _, id := range g.NodeIDs() {
		g.SetRole(id, classify.Classify(id))
	}
}

// Roles returns the role of every node keyed by node ID.
func Roles(g *graph.Graph) map[string]classify.Role {
	roles := make(map[string]classify.Role, g.Len())
	for _, n := range g.Nodes {
		roles[n.ID] = n.Role
	}
	return roles
}
