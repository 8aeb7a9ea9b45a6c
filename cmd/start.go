package cmd

import (
	"fmt"

	"netgraphx/internal/config"
	"netgraphx/internal/docker"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run a local Neo4j for verified topologies",
	Long: `Run Neo4j in Docker so 'netgraphx reconcile --update' has somewhere to
store verified topologies. The image and credentials come from .netgraphx.yaml;
run 'netgraphx init' first to generate a password.

The image is pulled on first use. Bolt is published on 7687 and the browser
on 7474. Data lives in the data directory and survives 'netgraphx stop'.

Example:
  netgraphx start
  netgraphx start --data-dir /var/lib/netgraphx/neo4j`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dataDir, _ := cmd.Flags().GetString("data-dir")
	return docker.StartContainer(cmd.Context(), docker.StartContainerOptions{
		Config:  cfg,
		DataDir: dataDir,
		Out:     cmd.OutOrStdout(),
	})
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().String("data-dir", docker.DefaultDataDir, "Host directory mounted as the Neo4j data volume")
}
