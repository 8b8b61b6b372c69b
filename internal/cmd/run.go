package cmd

import (
	"fmt"

	"github.com/matthieukhl/shopcore/internal/server"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Shopcore server",
	Long: `Start the Shopcore server which provides:
- REST API for browsing products, carts and checkout
- Administrative endpoints for catalog, orders and reports
- Health checks against the configured store`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Shopcore Starting...")

	fmt.Println("📝 Loading configuration and state...")
	cfg, a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("✅ %s store connected, %d products loaded\n", cfg.Store.Driver, len(a.Inventory.List()))

	fmt.Println("⚙️  Setting up server...")
	srv := server.NewServer(a, cfg.Server)

	fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
