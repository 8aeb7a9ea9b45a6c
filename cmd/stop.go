package cmd

import (
	"fmt"

	"netgraphx/internal/docker"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Remove the local Neo4j container",
	Long: `Stop and remove the container created by 'netgraphx start'. Stored
topologies stay in the data directory and are picked up again by the next
'netgraphx start'.

Example:
  netgraphx stop`,
	RunE: runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if err := docker.StopContainer(cmd.Context(), out); err != nil {
		return err
	}
	fmt.Fprintln(out, "\nStored topologies were kept; 'netgraphx start' brings them back.")
	return nil
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
