package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"netgraphx/internal/config"
	"netgraphx/internal/formatter"
	"netgraphx/internal/logging"
	"netgraphx/internal/neo4j"
	"netgraphx/internal/runner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <config_file>",
	Short: "Check that a rendered topology diagram matches its configuration",
	Long: `netgraphx reconcile derives the topology of a JSON or YAML network
configuration, renders it with Graphviz, reads the topology back from the
rendered image and compares both adjacency lists. External infrastructure in
the diagram (ISP, Internet, cloud, ...) is ignored.

The processed document, topology.png and topology.dot are written to the
output directory.

Examples:
  # Reconcile a YAML configuration and print a summary
  netgraphx reconcile office.yaml

  # Print the report as JSON
  netgraphx reconcile office.json --format=json

  # Store the verified topology in Neo4j
  netgraphx reconcile office.yaml --update`,
	Args: cobra.ExactArgs(1),
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadAndMerge(cmd, args)
	if err != nil {
		return err
	}

	// Validate Neo4j configuration early
	if cfg.Update {
		if err := config.ValidateNeo4j(&cfg.Neo4j); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	content, err := os.ReadFile(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cfg.InputFile, err)
	}

	r, err := runner.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}

	report, err := r.RunFile(ctx, filepath.Base(cfg.InputFile), content)
	if err != nil {
		return err
	}

	if err := writeOutputs(cfg.OutputDir, report); err != nil {
		return err
	}
	logger.Debug("wrote outputs", zap.String("dir", cfg.OutputDir))

	out, err := formatter.Format(report, cfg.Format)
	if err != nil {
		return err
	}
	fmt.Println(out)

	if cfg.Update {
		if !report.Match {
			logger.Warn("topology not verified; skipping database update")
		} else if err := updateNeo4jDatabase(ctx, report, &cfg.Neo4j, logger); err != nil {
			return err
		}
	}

	if failOnMismatch, _ := cmd.Flags().GetBool("fail-on-mismatch"); failOnMismatch && !report.Match {
		return fmt.Errorf("diagram topology does not match the configuration")
	}
	return nil
}

// writeOutputs stores the processed document and the rendering.
func writeOutputs(dir string, report *runner.Report) error {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := map[string][]byte{
		"processed_" + report.Filename: report.Processed,
	}
	if report.Rendering != nil {
		files["topology.png"] = report.Rendering.PNG
		files["topology.dot"] = []byte(report.Rendering.DOT)
	}

	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

func updateNeo4jDatabase(ctx context.Context, report *runner.Report, neo4jCfg *config.Neo4jConfig, logger *zap.Logger) error {
	logger.Info("connecting to neo4j", zap.String("uri", neo4jCfg.URI))

	client, err := neo4j.NewClient(neo4jCfg.URI, neo4jCfg.User, neo4jCfg.Password)
	if err != nil {
		return fmt.Errorf("failed to create neo4j client: %w", err)
	}
	defer client.Close(ctx)

	if err := client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	if err := client.UpdateGraph(ctx, report.Graph); err != nil {
		return fmt.Errorf("failed to update neo4j graph: %w", err)
	}

	logger.Info("neo4j updated", zap.String("run_id", report.RunID), zap.Int("devices", report.Graph.Len()))
	return nil
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	registerReconcileFlags(reconcileCmd)
}

func registerReconcileFlags(cmd *cobra.Command) {
	// Output flags
	cmd.Flags().String("format", "text", "Output format for the report (text, json, cypher, dot)")
	cmd.Flags().StringP("output", "o", "out", "Directory for the processed document and rendered diagram")
	cmd.Flags().Bool("fail-on-mismatch", false, "Exit with an error when the topologies differ")

	// Pipeline flags
	cmd.Flags().String("model", "gemini-2.0-flash", "Gemini model used for both oracle calls")
	cmd.Flags().String("layout", "spring", "Node layout (spring, circular)")
	cmd.Flags().Int64("seed", 0, "Layout seed; 0 picks a random layout")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")

	// Neo4j integration flags
	cmd.Flags().Bool("update", false, "Store the verified topology in Neo4j")
	cmd.Flags().String("neo4j-uri", "bolt://localhost:7687", "URI for the Neo4j database")
	cmd.Flags().String("neo4j-user", "neo4j", "Username for the Neo4j database")
	cmd.Flags().String("neo4j-pass", "", "Password for the Neo4j database")
}
