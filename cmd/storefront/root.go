package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/storefront/internal/cli"
	"github.com/aretw0/storefront/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront is a modal action engine for a storefront client",
	Long: `Storefront hosts the client's modal forms (streams, reviews, donations,
phone orders) and dispatches their mutations to the storefront backend.

Configuration is read from --config (YAML) and STOREFRONT_* environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("fallback", "", "Override the fallback backend (memory, sqlite, redis)")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if backend, _ := cmd.Flags().GetString("fallback"); backend != "" {
		cfg.Fallback.Backend = backend
	}
	return cfg, cfg.Validate()
}

// loadApp builds the client for a command. The caller must call closeApp.
func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	return cli.Build(cmd.Context(), cfg, logger)
}

func closeApp(app *cli.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		app.Logger.Warn("Shutdown incomplete", "err", err)
	}
}
