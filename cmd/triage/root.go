package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/triage/internal/cli"
	"github.com/aretw0/triage/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Triage runs a guided medical intake and an LLM triage pipeline",
	Long: `Triage asks a patient a fixed questionnaire, then extracts, classifies
and routes the answers with a hosted language model grounded in seeded
reference protocols.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML config file (default ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file loaded before reading TRIAGE_* variables")
	rootCmd.PersistentFlags().Bool("debug", false, "Log at debug level")
}

// loadConfig reads the configuration selected by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// buildApp loads the configuration and wires the service.
func buildApp(ctx context.Context, cmd *cobra.Command, adjust func(*config.Config)) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(cfg)
	}
	return cli.Build(ctx, cfg)
}

// closeApp gives running jobs the shutdown timeout to finish.
func closeApp(app *cli.App) {
	timeout := app.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		app.Logger.Warn("Shutdown incomplete", "err", err)
	}
}
