package main

import (
	"context"

	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/internal/config"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sessions"},
	Short:   "Manage intake sessions",
	Long:    `List, inspect and remove intake sessions held by the configured session store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStoreApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.ListSessions(ctx, app, cmd.OutOrStdout())
		})
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect [session-id]",
	Short: "Show the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStoreApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.InspectSession(ctx, app, args[0], cmd.OutOrStdout())
		})
	},
}

var sessionRmCmd = &cobra.Command{
	Use:     "rm [session-id]",
	Aliases: []string{"delete"},
	Short:   "Remove a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStoreApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.RemoveSession(ctx, app, args[0], cmd.OutOrStdout())
		})
	},
}

var jobCmd = &cobra.Command{
	Use:     "job",
	Aliases: []string{"jobs"},
	Short:   "Manage pipeline jobs",
}

var jobInspectCmd = &cobra.Command{
	Use:   "inspect [job-id]",
	Short: "Show a job record and its result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStoreApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.InspectJob(ctx, app, args[0], cmd.OutOrStdout())
		})
	},
}

var jobRmCmd = &cobra.Command{
	Use:     "rm [job-id]",
	Aliases: []string{"delete"},
	Short:   "Remove a job record",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStoreApp(cmd, func(ctx context.Context, app *cli.App) error {
			return cli.RemoveJob(ctx, app, args[0], cmd.OutOrStdout())
		})
	},
}

// withStoreApp builds the service without seeding for commands that only
// touch the session and result stores.
func withStoreApp(cmd *cobra.Command, fn func(context.Context, *cli.App) error) error {
	ctx := cli.NewSignalContext(cmd.Context())
	defer ctx.Cancel()

	app, err := buildApp(ctx, cmd, func(cfg *config.Config) {
		cfg.Reference.AutoSeed = false
	})
	if err != nil {
		return err
	}
	defer closeApp(app)
	return fn(ctx, app)
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd, sessionInspectCmd, sessionRmCmd)

	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobInspectCmd, jobRmCmd)
}
