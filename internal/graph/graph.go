package graph

import (
	"sort"

	"netgraphx/internal/classify"
)

// Adjacency maps a node identifier to the identifiers it is connected to.
// It is treated as undirected; asymmetric entries are accepted as-is.
type Adjacency map[string][]string

// Node is a device in the topology graph.
type Node struct {
	ID   string        `json:"id"`
	Role classify.Role `json:"role"`
}

// Edge is an undirected link between two devices. From and To keep the
// order in which the link was first seen.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the undirected topology graph built from an Adjacency.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	nodeIndex map[string]int
	edgeIndex map[edgeKey]struct{}
}

// edgeKey identifies an undirected edge by its endpoints in sorted order.
type edgeKey [2]string

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		Nodes:     make([]Node, 0),
		Edges:     make([]Edge, 0),
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[edgeKey]struct{}),
	}
}

// AddNode inserts a node if it is not already present.
func (g *Graph) AddNode(id string) {
	if g.nodeIndex == nil {
		g.reindex()
	}
	if _, ok := g.nodeIndex[id]; ok {
		return
	}
	g.nodeIndex[id] = len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{ID: id})
}

// AddEdge inserts the undirected edge (u, v) and both endpoints. Adding an
// edge that already exists in either direction is a no-op. Self-loops are kept.
func (g *Graph) AddEdge(u, v string) {
	g.AddNode(u)
	g.AddNode(v)

	key := newEdgeKey(u, v)
	if _, ok := g.edgeIndex[key]; ok {
		return
	}
	g.edgeIndex[key] = struct{}{}
	g.Edges = append(g.Edges, Edge{From: u, To: v})
}

// HasNode reports whether id is a node of the graph.
func (g *Graph) HasNode(id string) bool {
	if g.nodeIndex == nil {
		g.reindex()
	}
	_, ok := g.nodeIndex[id]
	return ok
}

// HasEdge reports whether the undirected edge (u, v) exists.
func (g *Graph) HasEdge(u, v string) bool {
	if g.edgeIndex == nil {
		g.reindex()
	}
	_, ok := g.edgeIndex[newEdgeKey(u, v)]
	return ok
}

// SetRole assigns a role to an existing node.
func (g *Graph) SetRole(id string, role classify.Role) {
	if g.nodeIndex == nil {
		g.reindex()
	}
	if i, ok := g.nodeIndex[id]; ok {
		g.Nodes[i].Role = role
	}
}

// Role returns the role of a node, or Other when the node is unknown.
func (g *Graph) Role(id string) classify.Role {
	if g.nodeIndex == nil {
		g.reindex()
	}
	if i, ok := g.nodeIndex[id]; ok && g.Nodes[i].Role != "" {
		return g.Nodes[i].Role
	}
	return classify.Other
}

// NodeIDs returns the node identifiers in insertion order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// reindex rebuilds the lookup tables, e.g. after the graph was decoded.
func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[edgeKey]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		g.edgeIndex[newEdgeKey(e.From, e.To)] = struct{}{}
	}
}

func newEdgeKey(u, v string) edgeKey {
	if v < u {
		u, v = v, u
	}
	return edgeKey{u, v}
}

// Keys returns the adjacency keys in sorted order.
func (a Adjacency) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
