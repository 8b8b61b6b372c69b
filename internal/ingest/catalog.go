package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matthieukhl/shopcore/internal/auth"
	"github.com/matthieukhl/shopcore/internal/inventory"
	"github.com/matthieukhl/shopcore/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CatalogFile is the YAML layout accepted by the importer:
//
//	products:
//	  - name: Coffee Mug
//	    category: home
//	    price: "9.99"
//	    quantity: 300
//	    visible: true
type CatalogFile struct {
	Products []CatalogEntry `yaml:"products"`
}

type CatalogEntry struct {
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Price    string `yaml:"price"`
	Quantity int    `yaml:"quantity"`
	Visible  *bool  `yaml:"visible"`
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Created []models.Product
	Skipped []string
}

type CatalogIngester struct {
	inv *inventory.Inventory
}

func NewCatalogIngester(inv *inventory.Inventory) *CatalogIngester {
	return &CatalogIngester{inv: inv}
}

// ParseCatalog decodes a catalog document into product inputs.
func ParseCatalog(r io.Reader) ([]inventory.ProductInput, error) {
	var file CatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	inputs := make([]inventory.ProductInput, 0, len(file.Products))
	for i, e := range file.Products {
		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): invalid price %q: %w", i+1, e.Name, e.Price, err)
		}
		inputs = append(inputs, inventory.ProductInput{
			Name:     e.Name,
			Category: e.Category,
			Price:    price,
			Quantity: e.Quantity,
			Visible:  e.Visible,
		})
	}
	return inputs, nil
}

// ParseCatalogFile reads and decodes the catalog at path.
func ParseCatalogFile(path string) ([]inventory.ProductInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// Import creates every input whose name is not already in the catalog.
// Names compare case-insensitively, so re-running an import is a no-op.
func (c *CatalogIngester) Import(ctx context.Context, caller auth.Principal, inputs []inventory.ProductInput) (ImportResult, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return ImportResult{}, err
	}

	existing := make(map[string]bool)
	for _, p := range c.inv.List() {
		existing[normalizeName(p.Name)] = true
	}

	var result ImportResult
	for _, in := range inputs {
		key := normalizeName(in.Name)
		if existing[key] {
			result.Skipped = append(result.Skipped, in.Name)
			continue
		}

		p, err := c.inv.Create(ctx, caller, in)
		if err != nil {
			return result, fmt.Errorf("failed to import %q: %w", in.Name, err)
		}
		existing[key] = true
		result.Created = append(result.Created, p)
	}
	return result, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
