package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "netgraphx [command]",
	Short: "Reconcile network configurations with their rendered topology",
	Long: `netgraphx reads a JSON or YAML network configuration, asks an inference
service for its adjacency list, renders the topology as a diagram, reads the
adjacency list back from the diagram and reports whether both agree. The
verified topology can be pushed to Neo4j.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
