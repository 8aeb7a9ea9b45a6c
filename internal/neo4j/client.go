package neo4j

import (
	"context"
	"fmt"
	"sort"

	"netgraphx/internal/formatter"
	"netgraphx/internal/graph"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Client stores device topologies in Neo4j as (:Device {id, role}) nodes
// joined by CONNECTED_TO relationships.
type Client struct {
	Driver neo4j.DriverWithContext
}

// NewClient creates a new Neo4j client and establishes a connection.
func NewClient(uri, user, pass string) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}

	return &Client{Driver: driver}, nil
}

// Close gracefully shuts down the driver.
func (c *Client) Close(ctx context.Context) error {
	return c.Driver.Close(ctx)
}

// VerifyConnectivity checks if a connection can be established with the database.
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.Driver.VerifyConnectivity(ctx)
}

// UpdateGraph replaces the stored topology with g. Devices missing from g are
// detached and deleted, links between remaining devices are rebuilt, then
// the current devices and links are merged.
func (c *Client) UpdateGraph(ctx context.Context, g *graph.Graph) error {
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		existingIDs, err := c.fetchExistingDeviceIDs(ctx, tx)
		if err != nil {
			return nil, err
		}

		if err := c.deleteObsoleteDevices(ctx, tx, existingIDs, g); err != nil {
			return nil, err
		}

		// A link removed from the topology must not survive between two
		// devices that are still present.
		if _, err := tx.Run(ctx, "MATCH (:Device)-[r:CONNECTED_TO]-(:Device) DELETE r", nil); err != nil {
			return nil, fmt.Errorf("failed to clear links: %w", err)
		}

		return c.upsertGraph(ctx, tx, g)
	})

	if err != nil {
		return fmt.Errorf("failed to update graph: %w", err)
	}

	return nil
}

// fetchExistingDeviceIDs retrieves all device IDs currently in Neo4j.
func (c *Client) fetchExistingDeviceIDs(ctx context.Context, tx neo4j.ManagedTransaction) (map[string]bool, error) {
	query := "MATCH (n:Device) RETURN n.id AS id"
	result, err := tx.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing devices: %w", err)
	}

	existingIDs := make(map[string]bool)
	for result.Next(ctx) {
		record := result.Record()
		if id, ok := record.Get("id"); ok {
			if idStr, ok := id.(string); ok {
				existingIDs[idStr] = true
			}
		}
	}

	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate existing devices: %w", err)
	}

	return existingIDs, nil
}

// deleteObsoleteDevices removes devices that exist in Neo4j but not in g.
func (c *Client) deleteObsoleteDevices(ctx context.Context, tx neo4j.ManagedTransaction, existingIDs map[string]bool, g *graph.Graph) error {
	stale := ObsoleteIDs(existingIDs, g)
	if len(stale) == 0 {
		return nil
	}

	query := "UNWIND $obsoleteIds AS obsoleteId MATCH (n:Device {id: obsoleteId}) DETACH DELETE n"
	params := map[string]interface{}{"obsoleteIds": stale}
	if _, err := tx.Run(ctx, query, params); err != nil {
		return fmt.Errorf("failed to delete obsolete devices: %w", err)
	}
	return nil
}

// ObsoleteIDs returns the sorted stored IDs that are not nodes of g.
func ObsoleteIDs(existingIDs map[string]bool, g *graph.Graph) []string {
	var stale []string
	for id := range existingIDs {
		if !g.HasNode(id) {
			stale = append(stale, id)
		}
	}
	sort.Strings(stale)
	return stale
}

// upsertGraph inserts or updates the current graph state in Neo4j.
func (c *Client) upsertGraph(ctx context.Context, tx neo4j.ManagedTransaction, g *graph.Graph) (interface{}, error) {
	query, params := formatter.ToCypherTransaction(g)
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert graph: %w", err)
	}
	return result.Consume(ctx)
}

// Stats summarizes the stored topology.
type Stats struct {
	Devices int64
	Links   int64
}

// Stats counts the stored devices and links.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (interface{}, error) {
		query := `MATCH (n:Device)
OPTIONAL MATCH (n)-[r:CONNECTED_TO]-(:Device)
RETURN count(DISTINCT n) AS devices, count(DISTINCT r) AS links`
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		devices, _, err := neo4j.GetRecordValue[int64](record, "devices")
		if err != nil {
			return nil, err
		}
		links, _, err := neo4j.GetRecordValue[int64](record, "links")
		if err != nil {
			return nil, err
		}
		return Stats{Devices: devices, Links: links}, nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read topology stats: %w", err)
	}

	return result.(Stats), nil
}
