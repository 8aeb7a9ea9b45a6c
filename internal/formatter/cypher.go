package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"netgraphx/internal/graph"
)

var cypherQuoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// ToCypher converts a graph to a series of idempotent Cypher MERGE statements.
func ToCypher(g *graph.Graph) (string, error) {
	var sb strings.Builder

	for _, node := range g.Nodes {
		sb.WriteString(fmt.Sprintf("MERGE (n:Device {id: '%s'})\n", cypherQuoter.Replace(node.ID)))
		sb.WriteString(fmt.Sprintf("SET n.role = '%s';\n", node.Role))
	}

	sb.WriteString("\n")

	// Undirected MERGE reuses a link stored in either direction.
	for _, edge := range g.Edges {
		sb.WriteString(fmt.Sprintf(
			"MATCH (a:Device {id: '%s'}), (b:Device {id: '%s'})\nMERGE (a)-[:CONNECTED_TO]-(b);\n",
			cypherQuoter.Replace(edge.From),
			cypherQuoter.Replace(edge.To),
		))
	}

	return sb.String(), nil
}

// ToCypherTransaction converts a graph to a parameterized Cypher query.
func ToCypherTransaction(g *graph.Graph) (string, map[string]interface{}) {
	var query bytes.Buffer
	params := make(map[string]interface{})

	nodesData := make([]map[string]interface{}, len(g.Nodes))
	for i, node := range g.Nodes {
		nodesData[i] = map[string]interface{}{
			"id":   node.ID,
			"role": string(node.Role),
		}
	}
	params["nodes"] = nodesData

	query.WriteString("UNWIND $nodes AS node_data\n")
	query.WriteString("MERGE (n:Device {id: node_data.id})\n")
	query.WriteString("SET n.role = node_data.role\n")

	if len(g.Edges) > 0 {
		edgesData := make([]map[string]string, len(g.Edges))
		for i, edge := range g.Edges {
			edgesData[i] = map[string]string{
				"from": edge.From,
				"to":   edge.To,
			}
		}
		params["edges"] = edgesData

		query.WriteString("WITH count(n) AS merged\n")
		query.WriteString("UNWIND $edges AS edge_data\n")
		query.WriteString("MATCH (a:Device {id: edge_data.from})\n")
		query.WriteString("MATCH (b:Device {id: edge_data.to})\n")
		query.WriteString("MERGE (a)-[:CONNECTED_TO]-(b)\n")
	}

	return query.String(), params
}
