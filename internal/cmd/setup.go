package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthieukhl/shopcore/internal/apperr"
	"github.com/matthieukhl/shopcore/internal/app"
	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/config"
	"github.com/matthieukhl/shopcore/internal/database"
	"github.com/matthieukhl/shopcore/internal/ingest"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/matthieukhl/shopcore/internal/users"
	"github.com/spf13/cobra"
)

var (
	dropFirst     bool
	resetData     bool
	skipData      bool
	adminID       string
	adminName     string
	adminPassword string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set up the store and seed an administrator and sample catalog",
	Long: `Prepares the configured store (creating the record table for SQL
backends), optionally empties it, then registers an administrator account
and imports the sample catalog.

Re-running setup is safe: existing accounts and products are kept.`,
	RunE: setupStore,
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop the record table before creating it (mysql only)")
	setupCmd.Flags().BoolVar(&resetData, "reset", false, "Remove every product, user and order before seeding")
	setupCmd.Flags().BoolVar(&skipData, "schema-only", false, "Prepare the store only, skip seeding")
	setupCmd.Flags().StringVar(&adminID, "admin-id", "1000", "4-digit id of the seeded administrator")
	setupCmd.Flags().StringVar(&adminName, "admin-name", "Administrator", "Name of the seeded administrator")
	setupCmd.Flags().StringVar(&adminPassword, "admin-password", "", "Password of the seeded administrator (skipped when empty)")
}

func setupStore(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 Setting up store...")

	if dropFirst {
		if err := dropRecordTable(cmd.Context()); err != nil {
			return err
		}
	}

	_, a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if resetData {
		fmt.Println("🗑️  Removing existing records...")
		if err := a.Reset(cmd.Context()); err != nil {
			return err
		}
	}

	if !skipData {
		fmt.Println("📊 Seeding data...")
		if err := seed(cmd, a); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	fmt.Println("✅ Store setup complete!")
	return nil
}

func dropRecordTable(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Driver != config.DriverMySQL {
		return fmt.Errorf("--drop-first is only supported for the mysql store, not %s", cfg.Store.Driver)
	}

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fmt.Println("🗑️  Dropping record table...")
	if err := db.DropSchema(ctx); err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

func seed(cmd *cobra.Command, a *app.App) error {
	if adminPassword != "" {
		fmt.Println("   👤 Creating administrator...")
		_, err := a.Users.Register(cmd.Context(), users.Registration{
			ID:       adminID,
			Name:     adminName,
			Role:     models.RoleAdmin,
			Password: adminPassword,
		})
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			fmt.Printf("   ↪️  Administrator %s already exists\n", adminID)
		case err != nil:
			return err
		}
	}

	fmt.Println("   📦 Importing sample catalog...")
	inputs, err := ingest.SampleCatalog()
	if err != nil {
		return err
	}
	result, err := a.Catalog.Import(cmd.Context(), auth.System(), inputs)
	if err != nil {
		return err
	}
	fmt.Printf("   ✅ %d created, %d already present\n", len(result.Created), len(result.Skipped))
	return nil
}
