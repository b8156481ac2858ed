package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/models"
)

// DefaultLowStock is the alert level for items without their own threshold.
const DefaultLowStock = 50

// TraderSummary is the contact card view of one counterparty.
type TraderSummary struct {
	Name        string
	Type        models.TraderType
	Orders      int
	Purchases   int
	Balance     decimal.Decimal
	Outstanding decimal.Decimal
	// History is newest first.
	History []models.Transaction
}

// SummarizeTrader collects every transaction of name. The type is Dealer as
// soon as one purchase references the name.
func SummarizeTrader(txs []models.Transaction, name string) TraderSummary {
	s := TraderSummary{Name: name, Type: models.Customer, Balance: TraderBalance(txs, name), Outstanding: decimal.Zero}
	for _, t := range txs {
		if t.Name != name {
			continue
		}
		s.Orders++
		if t.Direction == models.Buy {
			s.Purchases++
			s.Type = models.Dealer
		}
		s.Outstanding = s.Outstanding.Add(t.Outstanding())
		s.History = append(s.History, t)
	}
	sortByDateDesc(s.History)
	return s
}

// FilterPeriod keeps the transactions whose date falls in period as of now.
// Unparseable dates only pass the AllTime filter.
func FilterPeriod(txs []models.Transaction, period dateutils.Period, now time.Time) []models.Transaction {
	var out []models.Transaction
	for _, t := range txs {
		if period == dateutils.AllTime {
			out = append(out, t)
			continue
		}
		when, _, err := dateutils.ParseDate(t.Date)
		if err != nil {
			continue
		}
		if period.Contains(when, now) {
			out = append(out, t)
		}
	}
	return out
}

// Totals is the headline count and value of a set of transactions.
type Totals struct {
	Count  int
	Amount decimal.Decimal
}

// Summarize counts txs and sums their amounts.
func Summarize(txs []models.Transaction) Totals {
	total := Totals{Amount: decimal.Zero}
	for _, t := range txs {
		total.Count++
		total.Amount = total.Amount.Add(t.Amount)
	}
	return total
}

// DatePoint is the amount traded on one date.
type DatePoint struct {
	Date   string
	Amount decimal.Decimal
}

// DailyTotals sums amounts per date, oldest date first.
func DailyTotals(txs []models.Transaction) []DatePoint {
	sums := make(map[string]decimal.Decimal)
	var dates []string
	for _, t := range txs {
		if _, seen := sums[t.Date]; !seen {
			dates = append(dates, t.Date)
		}
		sums[t.Date] = sums[t.Date].Add(t.Amount)
	}
	sort.SliceStable(dates, func(i, j int) bool {
		a, _, _ := dateutils.ParseDate(dates[i])
		b, _, _ := dateutils.ParseDate(dates[j])
		return a.Before(b)
	})
	points := make([]DatePoint, 0, len(dates))
	for _, d := range dates {
		points = append(points, DatePoint{Date: d, Amount: sums[d]})
	}
	return points
}

// ProductTotals sums amounts per product.
func ProductTotals(txs []models.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, t := range txs {
		out[t.Product] = out[t.Product].Add(t.Amount)
	}
	return out
}

// LowStockItem is a catalog variant below its alert level.
type LowStockItem struct {
	Product   string
	Size      string
	Stock     decimal.Decimal
	Threshold int
}

// LowStock lists catalog variants whose stock is below their threshold, or
// below fallback when no threshold is set. Order follows catalog.Items.
func LowStock(catalog models.Catalog, inv Inventory, thresholds models.Thresholds, fallback int) []LowStockItem {
	var out []LowStockItem
	for _, item := range catalog.Items() {
		limit, ok := thresholds[models.ItemKey(item.Product, item.Size)]
		if !ok {
			limit = fallback
		}
		stock := inv.Get(item.Product, item.Size)
		if stock.LessThan(decimal.NewFromInt(int64(limit))) {
			out = append(out, LowStockItem{Product: item.Product, Size: item.Size, Stock: stock, Threshold: limit})
		}
	}
	return out
}

func sortByDateDesc(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, _, _ := dateutils.ParseDate(txs[i].Date)
		b, _, _ := dateutils.ParseDate(txs[j].Date)
		if c := dateutils.CompareDates(a, b); c != 0 {
			return c > 0
		}
		return txs[i].ID > txs[j].ID
	})
}
