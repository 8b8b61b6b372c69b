package ingest

import (
	"bytes"
	_ "embed"

	"github.com/matthieukhl/shopcore/internal/inventory"
)

//go:embed sample_catalog.yaml
var sampleCatalog []byte

// SampleCatalog returns the demo catalog seeded by the setup command.
func SampleCatalog() ([]inventory.ProductInput, error) {
	return ParseCatalog(bytes.NewReader(sampleCatalog))
}
