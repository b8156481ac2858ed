package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestBuiltinDefaults(t *testing.T) {
	d := BuiltinDefaults()

	require.Len(t, d.CatalogSell["Block"], 3)
	assert.Equal(t, []string{"6 inch", "4 inch", "8 inch"},
		[]string{d.CatalogSell["Block"][0].Size, d.CatalogSell["Block"][1].Size, d.CatalogSell["Block"][2].Size})
	assert.Equal(t, "1.5 ft", d.CatalogSell["Cover"][0].Size)
	assert.Equal(t, "700", d.CatalogSell["Ring"][1].Price.String())
	for _, product := range []string{"Dust", "Jalli", "Cement"} {
		require.Len(t, d.CatalogBuy[product], 1)
		assert.Equal(t, "Default", d.CatalogBuy[product][0].Size)
		assert.True(t, d.CatalogBuy[product][0].Price.IsZero())
	}
	assert.Equal(t, models.Traders{models.WalkInTrader: {Contact: "Unknown", Type: models.Customer}}, d.Traders)
}

func TestBuiltinDefaults_AreIndependentCopies(t *testing.T) {
	a := BuiltinDefaults()
	a.CatalogSell["Block"][0].Size = "mutated"
	assert.Equal(t, "6 inch", BuiltinDefaults().CatalogSell["Block"][0].Size)
}

func TestParseDefaults(t *testing.T) {
	d, err := ParseDefaults([]byte(`
catalog_sell:
  Tile:
    - {size: "1 ft", price: 12.5}
traders:
  Supplier:
    contact: "044-1234"
    type: dealer
`))
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.CatalogSell["Tile"][0].Price.String())
	assert.Empty(t, d.CatalogBuy)
	assert.Equal(t, models.Dealer, d.Traders["Supplier"].Type)

	_, err = ParseDefaults([]byte("traders:\n  X: {type: Vendor}\n"))
	assert.Error(t, err)

	_, err = ParseDefaults([]byte("catalog_sell: [oops"))
	assert.Error(t, err)
}

func TestFindDefaultsFile(t *testing.T) {
	dir := t.TempDir()
	testFile := filepath.Join(dir, "seed.yaml")
	writeFile(t, testFile, "catalog_sell: {}")

	file, err := FindDefaultsFile(testFile)
	assert.NoError(t, err)
	assert.Equal(t, testFile, file)

	_, err = FindDefaultsFile(filepath.Join(dir, "nonexistent.yaml"))
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	d, err := LoadDefaults("")
	require.NoError(t, err)
	assert.Contains(t, d.CatalogSell, "Block")

	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	writeFile(t, path, "catalog_buy:\n  Sand:\n    - {size: Truck, price: 9000}\n")
	d, err = LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sand"}, d.CatalogBuy.Products())

	_, err = LoadDefaults(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestOpen_WithDefaults(t *testing.T) {
	d, err := ParseDefaults([]byte("catalog_buy:\n  Sand:\n    - {size: Truck, price: 9000}\n"))
	require.NoError(t, err)

	s, err := Open(backing.NewMemory(0), WithDefaults(d))
	require.NoError(t, err)

	assert.Equal(t, []string{"Sand"}, s.Catalog(models.Buy).Products())
	assert.Empty(t, s.Catalog(models.Sell))
	assert.Empty(t, s.Traders())
}
