package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"netgraphx/internal/classify"
	"netgraphx/internal/config"
	"netgraphx/internal/neo4j"
	"netgraphx/internal/runner"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate netgraphx configuration and external tools",
	Long:  `Validate netgraphx configuration and verify connections to external tools.`,
}

var checkDatabaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Check Neo4j database connectivity",
	Long: `Verify that netgraphx can connect to the Neo4j database using
the credentials from the configuration file (.netgraphx.yaml).

Example:
  netgraphx check database`,
	RunE: runCheckDatabase,
}

var checkRendererCmd = &cobra.Command{
	Use:   "renderer",
	Short: "Check the Graphviz renderer and role icons",
	Long: `Verify that the Graphviz command used to rasterize topology diagrams is
installed and report which role icons were found.

Example:
  netgraphx check renderer`,
	RunE: runCheckRenderer,
}

func runCheckDatabase(cmd *cobra.Command, args []string) error {
	log.Println("Loading configuration from .netgraphx.yaml...")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !config.Exists() {
		fmt.Println("⚠ Warning: No configuration file found.")
		fmt.Println("  Run 'netgraphx init' to create one.")
		fmt.Println("  Using default values...")
		fmt.Println()
	}

	// Display connection info (without password)
	fmt.Println("Neo4j Connection Settings:")
	fmt.Printf("  URI:  %s\n", cfg.Neo4j.URI)
	fmt.Printf("  User: %s\n", cfg.Neo4j.User)
	fmt.Println()

	if cfg.Neo4j.Password == "" {
		return fmt.Errorf("neo4j password is not set in configuration file")
	}

	log.Printf("Connecting to Neo4j at %s...", cfg.Neo4j.URI)
	ctx := context.Background()

	client, err := neo4j.NewClient(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password)
	if err != nil {
		return fmt.Errorf("failed to create neo4j client: %w", err)
	}
	defer client.Close(ctx)

	log.Println("Verifying connectivity...")
	if err := client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Successfully connected to Neo4j database!")

	stats, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("  Stored topology: %d devices, %d links\n", stats.Devices, stats.Links)

	return nil
}

func runCheckRenderer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	renderer, err := runner.NewRenderer(cfg.Render)
	if err != nil {
		return err
	}

	fmt.Println("Renderer Settings:")
	fmt.Printf("  Command: %s\n", renderer.Command)
	fmt.Printf("  Layout:  %s\n", cfg.Render.Layout)
	fmt.Println()

	path, err := renderer.Available()
	if err != nil {
		return fmt.Errorf("graphviz is not available: %w", err)
	}
	fmt.Printf("✓ Found %s at %s\n", renderer.Command, path)

	fmt.Println("\nRole icons:")
	for _, role := range classify.Roles {
		icon, configured := cfg.Render.Icons[string(role)]
		switch {
		case !configured:
			fmt.Printf("  %-7s falls back to %q\n", role, cfg.Render.Icons[string(classify.Other)])
		case fileExists(icon):
			fmt.Printf("  %-7s ✓ %s\n", role, icon)
		default:
			fmt.Printf("  %-7s ⚠ %s not found, drawn as a shape\n", role, icon)
		}
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.AddCommand(checkDatabaseCmd)
	checkCmd.AddCommand(checkRendererCmd)
}
