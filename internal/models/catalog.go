package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CatalogEntry is one sellable or purchasable variant of a product.
type CatalogEntry struct {
	Size  string          `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// Catalog maps a product name to its ordered variants. Sizes are expected to
// be unique per product but that is not enforced; Lookup returns the last match.
type Catalog map[string][]CatalogEntry

// Clone returns a deep copy.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for product, entries := range c {
		cp := make([]CatalogEntry, len(entries))
		copy(cp, entries)
		out[product] = cp
	}
	return out
}

// Lookup finds the entry for product/size.
func (c Catalog) Lookup(product, size string) (CatalogEntry, bool) {
	var (
		found CatalogEntry
		ok    bool
	)
	for _, e := range c[product] {
		if e.Size == size {
			found, ok = e, true
		}
	}
	return found, ok
}

// Products returns the product names in lexical order.
func (c Catalog) Products() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CatalogItem is a flattened (product, entry) pair.
type CatalogItem struct {
	Product string
	CatalogEntry
}

// Items flattens the catalog in a deterministic order: products sorted,
// variants in their stored order.
func (c Catalog) Items() []CatalogItem {
	var items []CatalogItem
	for _, product := range c.Products() {
		for _, e := range c[product] {
			items = append(items, CatalogItem{Product: product, CatalogEntry: e})
		}
	}
	return items
}
