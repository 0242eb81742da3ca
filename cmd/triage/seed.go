package main

import (
	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/internal/config"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Index the reference documents",
	Long:  `Loads the triage protocols, routing rules and preliminary orders into the configured reference store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		app, err := buildApp(ctx, cmd, func(cfg *config.Config) {
			cfg.Reference.AutoSeed = false
		})
		if err != nil {
			return err
		}
		defer closeApp(app)

		force, _ := cmd.Flags().GetBool("force")
		return cli.Seed(ctx, app, force, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolP("force", "f", false, "Re-index collections that are already complete")
}
