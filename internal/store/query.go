package store

import (
	"time"

	"github.com/shopspring/decimal"

	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/ledger"
	"uhb/trade-ledger/internal/models"
)

// CalculateStock is the net quantity of product/size across both collections.
func (s *Store) CalculateStock(product, size string) decimal.Decimal {
	return ledger.Stock(s.AllTransactions(), product, size)
}

// InventoryMap returns stock for every traded item in one pass.
func (s *Store) InventoryMap() ledger.Inventory {
	return ledger.InventoryMap(s.AllTransactions())
}

// Ledger is the running-balance view of product/size, newest first.
func (s *Store) Ledger(product, size string) []ledger.BalanceEntry {
	return ledger.RunningBalance(s.AllTransactions(), product, size)
}

// Valuation prices positive stock with the catalog for d (active when empty).
func (s *Store) Valuation(d models.Direction) decimal.Decimal {
	return ledger.Valuation(s.catalogRef(d), s.InventoryMap())
}

// TraderBalance nets sales against purchases for name.
func (s *Store) TraderBalance(name string) decimal.Decimal {
	return ledger.TraderBalance(s.AllTransactions(), name)
}

// TraderSummary is the contact card view of name.
func (s *Store) TraderSummary(name string) ledger.TraderSummary {
	return ledger.SummarizeTrader(s.AllTransactions(), name)
}

// Reminders lists booked transactions promised for today's date.
func (s *Store) Reminders(today time.Time) []models.Transaction {
	return ledger.DueOn(s.AllTransactions(), dateutils.ToISODate(today))
}

// LowStock lists variants of the catalog for d that are below their alert level.
func (s *Store) LowStock(d models.Direction) []ledger.LowStockItem {
	return ledger.LowStock(s.catalogRef(d), s.InventoryMap(), s.thresholds, s.lowStock)
}

// Dashboard filters the active direction's transactions by the current date
// filter and totals them.
func (s *Store) Dashboard(now time.Time) ledger.Totals {
	return ledger.Summarize(ledger.FilterPeriod(s.Transactions(""), s.dateFilter, now))
}
