package store

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"uhb/trade-ledger/internal/models"
)

//go:embed defaults.yaml
var embeddedDefaults []byte

// Defaults are the values a collection takes when nothing was ever saved for
// it or when the stored value cannot be read.
type Defaults struct {
	CatalogSell models.Catalog
	CatalogBuy  models.Catalog
	Traders     models.Traders
}

type seedEntry struct {
	Size  string  `yaml:"size"`
	Price float64 `yaml:"price"`
}

type seedTrader struct {
	Contact string `yaml:"contact"`
	Type    string `yaml:"type"`
}

type seedFile struct {
	CatalogSell map[string][]seedEntry `yaml:"catalog_sell"`
	CatalogBuy  map[string][]seedEntry `yaml:"catalog_buy"`
	Traders     map[string]seedTrader  `yaml:"traders"`
}

// BuiltinDefaults returns the seed data compiled into the binary.
func BuiltinDefaults() *Defaults {
	d, err := ParseDefaults(embeddedDefaults)
	if err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	return d
}

// ParseDefaults decodes a seed YAML document. Sections left out of the
// document are empty.
func ParseDefaults(data []byte) (*Defaults, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("error parsing defaults: %w", err)
	}

	d := &Defaults{
		CatalogSell: toCatalog(seed.CatalogSell),
		CatalogBuy:  toCatalog(seed.CatalogBuy),
		Traders:     models.Traders{},
	}
	for name, t := range seed.Traders {
		typ, err := models.ParseTraderType(t.Type)
		if err != nil {
			return nil, fmt.Errorf("trader %s: %w", name, err)
		}
		d.Traders[name] = models.Trader{Contact: t.Contact, Type: typ}
	}
	return d, nil
}

func toCatalog(seed map[string][]seedEntry) models.Catalog {
	c := make(models.Catalog, len(seed))
	for product, entries := range seed {
		list := make([]models.CatalogEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, models.CatalogEntry{Size: e.Size, Price: decimal.NewFromFloat(e.Price)})
		}
		c[product] = list
	}
	return c
}

// LoadDefaults reads seed data from filename, looked up with FindDefaultsFile.
// An empty filename selects the built-in defaults.
func LoadDefaults(filename string) (*Defaults, error) {
	if filename == "" {
		return BuiltinDefaults(), nil
	}
	path, err := FindDefaultsFile(filename)
	if err != nil {
		return nil, fmt.Errorf("defaults file %s: %w", filename, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading defaults file: %w", err)
	}
	return ParseDefaults(data)
}

// FindDefaultsFile looks for a seed file in the usual places: the path as
// given, ./config and ~/.trade-ledger.
func FindDefaultsFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".trade-ledger", filename))
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}
