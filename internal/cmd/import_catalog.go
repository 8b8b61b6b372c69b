package cmd

import (
	"fmt"

	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/ingest"
	"github.com/spf13/cobra"
)

var catalogFile string

var importCatalogCmd = &cobra.Command{
	Use:   "import-catalog",
	Short: "Import products from a YAML catalog file",
	Long: `Import products from a YAML catalog file into the store.

Products whose name already exists in the catalog are skipped, so the
same file can be imported repeatedly.`,
	RunE: importCatalog,
}

func init() {
	rootCmd.AddCommand(importCatalogCmd)

	importCatalogCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "Path to the catalog YAML file")
	_ = importCatalogCmd.MarkFlagRequired("file")
}

func importCatalog(cmd *cobra.Command, args []string) error {
	fmt.Printf("🔄 Importing catalog from %s...\n", catalogFile)

	inputs, err := ingest.ParseCatalogFile(catalogFile)
	if err != nil {
		return err
	}
	fmt.Printf("   Found %d product%s\n", len(inputs), plural(len(inputs)))

	_, a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.Catalog.Import(cmd.Context(), auth.System(), inputs)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	fmt.Printf("\n📋 Imported %d product%s\n", len(result.Created), plural(len(result.Created)))
	for i, p := range result.Created {
		fmt.Printf("   %d. [%s] %s - %s\n", i+1, p.ID, truncate(p.Name, 40), p.Price.StringFixed(2))
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("\n↪️  Skipped %d already in the catalog\n", len(result.Skipped))
	}

	return nil
}
