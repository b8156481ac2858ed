// Package ledger derives stock, valuation and balance figures by replaying
// transaction history. Nothing here is cached or persisted; every function is
// a pure function of the transactions it is given.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/models"
)

// Inventory maps models.ItemKey(product, size) to net quantity on hand.
type Inventory map[string]decimal.Decimal

// Get returns the quantity for product/size, zero when never traded.
func (inv Inventory) Get(product, size string) decimal.Decimal {
	return inv[models.ItemKey(product, size)]
}

// Stock sums signed quantities of every transaction for product/size:
// purchases add, sales subtract. It scans all transactions; use InventoryMap
// when stock is needed for many items.
func Stock(txs []models.Transaction, product, size string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Product == product && t.Size == size {
			total = total.Add(t.SignedQty())
		}
	}
	return total
}

// InventoryMap computes stock for every traded item in a single pass.
func InventoryMap(txs []models.Transaction) Inventory {
	inv := make(Inventory)
	for _, t := range txs {
		key := t.ItemKey()
		inv[key] = inv[key].Add(t.SignedQty())
	}
	return inv
}

// BalanceEntry is one row of an item ledger: the transaction and the stock
// level right after it.
type BalanceEntry struct {
	Transaction models.Transaction
	Balance     decimal.Decimal
}

// RunningBalance builds the ledger view of product/size. Transactions are
// replayed oldest first (same-day ties keep their input order) and the result
// is returned newest first for display. Dates that cannot be parsed sort before
// everything else.
func RunningBalance(txs []models.Transaction, product, size string) []BalanceEntry {
	type dated struct {
		tx   models.Transaction
		when time.Time
	}
	var items []dated
	for _, t := range txs {
		if t.Product != product || t.Size != size {
			continue
		}
		when, _, _ := dateutils.ParseDate(t.Date)
		items = append(items, dated{tx: t, when: when})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].when.Before(items[j].when)
	})

	entries := make([]BalanceEntry, len(items))
	balance := decimal.Zero
	for i, it := range items {
		balance = balance.Add(it.tx.SignedQty())
		entries[i] = BalanceEntry{Transaction: it.tx, Balance: balance}
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries
}

// Valuation prices the positive stock of every catalog variant. Items with
// zero or negative stock contribute nothing.
func Valuation(catalog models.Catalog, inv Inventory) decimal.Decimal {
	total := decimal.Zero
	for _, item := range catalog.Items() {
		stock := inv.Get(item.Product, item.Size)
		if stock.IsPositive() {
			total = total.Add(stock.Mul(item.Price))
		}
	}
	return total
}

// TraderBalance nets a counterparty's sales (+amount) against purchases
// (-amount) made with the same name.
func TraderBalance(txs []models.Transaction, name string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Name != name {
			continue
		}
		switch t.Direction {
		case models.Sell:
			total = total.Add(t.Amount)
		case models.Buy:
			total = total.Sub(t.Amount)
		}
	}
	return total
}

// DueOn returns booked transactions promised for date (YYYY-MM-DD). The match
// is exact string equality on the promise date.
func DueOn(txs []models.Transaction, date string) []models.Transaction {
	var due []models.Transaction
	for _, t := range txs {
		if t.Status == models.Booked && t.PromiseDate == date {
			due = append(due, t)
		}
	}
	return due
}
