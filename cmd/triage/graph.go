package main

import (
	"fmt"

	"github.com/aretw0/triage/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the pipeline state machine as a Mermaid flowchart",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), graph.Pipeline(nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
