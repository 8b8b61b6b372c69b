package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/matthieukhl/shopcore/internal/app"
	"github.com/matthieukhl/shopcore/internal/config"
	"github.com/matthieukhl/shopcore/internal/logging"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "shopcore",
	Short: "Shopcore - order management for a small storefront",
	Long: `Shopcore manages a product catalog, customer carts, coupon and tax
pricing, stock-checked order placement and administrative reporting.

It can run as an HTTP server, or be used via CLI commands to set up the
store, import a catalog and print reports.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(loadDotEnv)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: search ./deploy, ./, $HOME/.shopcore, /etc/shopcore)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv reads .env into the environment. A missing file is fine.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadConfig()
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return logger
}

// openApp loads config, connects the store and loads all state.
func openApp(ctx context.Context) (*config.Config, *app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := app.Open(ctx, cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	return cfg, a, nil
}
