package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"netgraphx/internal/builder"
	"netgraphx/internal/config"
	"netgraphx/internal/graph"
	"netgraphx/internal/neo4j"

	neo4jdriver "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	e2eTimeout = 60 * time.Second
)

// getBinaryPath returns the absolute path to the netgraphx binary
func getBinaryPath(t *testing.T) string {
	cwd, _ := os.Getwd()
	path := filepath.Join(cwd, "netgraphx")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("netgraphx binary not built at %s, skipping", path)
	}
	return path
}

// connectNeo4j returns a client for the configured database or skips.
func connectNeo4j(t *testing.T, ctx context.Context) *neo4j.Client {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Neo4j.Password == "" {
		t.Skip("Neo4j password not configured in .netgraphx.yaml, skipping E2E test")
	}

	client, err := neo4j.NewClient(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		t.Fatalf("Failed to create Neo4j client: %v", err)
	}
	t.Cleanup(func() { client.Close(context.Background()) })

	if err := client.VerifyConnectivity(ctx); err != nil {
		t.Skipf("Cannot connect to Neo4j at %s: %v", cfg.Neo4j.URI, err)
	}
	return client
}

// TestE2E_Neo4jSync stores topologies in Neo4j and checks the stored state
func TestE2E_Neo4jSync(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), e2eTimeout)
	defer cancel()
	client := connectNeo4j(t, ctx)

	office := builder.Build(graph.Adjacency{
		"R1":      {"Server1", "SW1"},
		"Server1": {"R1"},
		"SW1":     {"R1", "PC1"},
		"PC1":     {"SW1"},
	})

	t.Run("1_ClearDatabase", func(t *testing.T) {
		runWrite(t, ctx, client, "MATCH (n:Device) DETACH DELETE n")
	})

	t.Run("2_InsertTopology", func(t *testing.T) {
		if err := client.UpdateGraph(ctx, office); err != nil {
			t.Fatalf("UpdateGraph failed: %v", err)
		}
		if got := countInNeo4j(t, ctx, client, "MATCH (n:Device) RETURN count(n) AS count"); got != 4 {
			t.Errorf("Expected 4 devices, got %d", got)
		}
		if got := countInNeo4j(t, ctx, client, "MATCH (:Device)-[r:CONNECTED_TO]-(:Device) RETURN count(DISTINCT r) AS count"); got != 3 {
			t.Errorf("Expected 3 links, got %d", got)
		}
		if role := deviceRole(t, ctx, client, "R1"); role != "router" {
			t.Errorf("Expected R1 to be stored as router, got %q", role)
		}
	})

	t.Run("3_Idempotency", func(t *testing.T) {
		if err := client.UpdateGraph(ctx, office); err != nil {
			t.Fatalf("Second UpdateGraph failed: %v", err)
		}
		if got := countInNeo4j(t, ctx, client, "MATCH (:Device)-[r:CONNECTED_TO]-(:Device) RETURN count(DISTINCT r) AS count"); got != 3 {
			t.Errorf("Expected 3 links after second update, got %d", got)
		}
	})

	t.Run("4_RemovesStaleDevicesAndLinks", func(t *testing.T) {
		smaller := builder.Build(graph.Adjacency{
			"R1":  {"SW1"},
			"SW1": {"R1"},
		})
		if err := client.UpdateGraph(ctx, smaller); err != nil {
			t.Fatalf("UpdateGraph failed: %v", err)
		}
		stats, err := client.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Devices != 2 || stats.Links != 1 {
			t.Errorf("Expected 2 devices and 1 link, got %+v", stats)
		}
	})
}

// TestE2E_InitCommand tests configuration management commands
func TestE2E_InitCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	binary := getBinaryPath(t)
	tmpDir := t.TempDir()

	t.Run("Init", func(t *testing.T) {
		cmd := exec.Command(binary, "init")
		cmd.Dir = tmpDir

		output, err := cmd.CombinedOutput()
		if err != nil {
			t.Fatalf("init failed: %v\nOutput: %s", err, output)
		}

		for _, name := range []string{".netgraphx.yaml", ".env", "neo4j-data"} {
			if _, err := os.Stat(filepath.Join(tmpDir, name)); os.IsNotExist(err) {
				t.Errorf("%s was not created", name)
			}
		}
	})

	t.Run("Init_AlreadyExists", func(t *testing.T) {
		cmd := exec.Command(binary, "init")
		cmd.Dir = tmpDir

		output, err := cmd.CombinedOutput()
		if err == nil {
			t.Fatal("Expected error when config already exists")
		}
		if !strings.Contains(string(output), "already exists") {
			t.Errorf("Expected 'already exists' error, got: %s", output)
		}
	})
}

// TestE2E_Reconcile runs the whole pipeline against the live oracle
func TestE2E_Reconcile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	if os.Getenv("API_KEY") == "" && os.Getenv("NETGRAPHX_API_KEY") == "" {
		t.Skip("API_KEY not set, skipping live reconciliation")
	}
	if _, err := exec.LookPath("neato"); err != nil {
		t.Skip("graphviz not installed, skipping live reconciliation")
	}

	binary := getBinaryPath(t)
	outDir := t.TempDir()
	input := filepath.Join("internal", "document", "testdata", "office.yaml")

	cmd := exec.Command(binary, "reconcile", input, "--format=json", "--output", outDir, "--seed=1")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("reconcile failed: %v\nOutput: %s", err, output)
	}

	if !strings.Contains(string(output), `"state": "Reported"`) {
		t.Errorf("Expected a completed report, got: %s", output)
	}
	for _, name := range []string{"processed_office.yaml", "topology.png", "topology.dot"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("Expected output %s: %v", name, err)
		}
	}
}

// TestE2E_CheckDatabase tests database connectivity check
func TestE2E_CheckDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	binary := getBinaryPath(t)
	ctx, cancel := context.WithTimeout(context.Background(), e2eTimeout)
	defer cancel()
	connectNeo4j(t, ctx)

	cmd := exec.Command(binary, "check", "database")
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("check database failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(string(output), "Successfully connected") {
		t.Errorf("Expected success message, got: %s", output)
	}
}

// Helper functions

func runWrite(t *testing.T, ctx context.Context, client *neo4j.Client, query string) {
	session := client.Driver.NewSession(ctx, neo4jdriver.SessionConfig{AccessMode: neo4jdriver.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	if err != nil {
		t.Fatalf("Failed to run %q: %v", query, err)
	}
}

func countInNeo4j(t *testing.T, ctx context.Context, client *neo4j.Client, query string) int64 {
	session := client.Driver.NewSession(ctx, neo4jdriver.SessionConfig{AccessMode: neo4jdriver.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return int64(0), err
		}

		if res.Next(ctx) {
			count, _ := res.Record().Get("count")
			return count.(int64), nil
		}

		return int64(0), fmt.Errorf("no result returned")
	})
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}

	return result.(int64)
}

func deviceRole(t *testing.T, ctx context.Context, client *neo4j.Client, id string) string {
	session := client.Driver.NewSession(ctx, neo4jdriver.SessionConfig{AccessMode: neo4jdriver.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4jdriver.ManagedTransaction) (interface{}, error) {
		res, err := tx.Run(ctx, "MATCH (n:Device {id: $id}) RETURN n.role AS role", map[string]interface{}{"id": id})
		if err != nil {
			return "", err
		}
		if res.Next(ctx) {
			role, _ := res.Record().Get("role")
			s, _ := role.(string)
			return s, nil
		}
		return "", res.Err()
	})
	if err != nil {
		t.Fatalf("Failed to read device %s: %v", id, err)
	}

	return result.(string)
}
