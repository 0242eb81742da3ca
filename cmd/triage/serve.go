package main

import (
	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/internal/config"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Serves the session, chat, process and result endpoints until SIGINT or SIGTERM, then drains running jobs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		addr, _ := cmd.Flags().GetString("addr")
		app, err := buildApp(ctx, cmd, func(cfg *config.Config) {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
		})
		if err != nil {
			return err
		}
		return cli.Serve(ctx, app)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on (overrides server.addr)")
}
