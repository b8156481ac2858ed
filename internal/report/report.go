// Package report produces CSV extracts of transactions, stock and traders.
// Reports only read from the store.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"

	"uhb/trade-ledger/internal/fileutils"
	"uhb/trade-ledger/internal/ledger"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
)

// Default file names, one per report.
const (
	FilteredSalesFile = "Filtered_Sales_Report.csv"
	FullSalesFile     = "Full_Sales_Report.csv"
	TraderListFile    = "Customer_List.csv"
)

// InventoryFile names the stock report of direction d.
func InventoryFile(d models.Direction) string {
	return fmt.Sprintf("%s_Inventory_Report.csv", strings.ToUpper(string(d)))
}

// SalesRow is one line of the transaction report.
type SalesRow struct {
	Date     string `csv:"Date"`
	Type     string `csv:"Type"`
	Customer string `csv:"Customer"`
	Product  string `csv:"Product"`
	Size     string `csv:"Size"`
	Qty      string `csv:"Qty"`
	Amount   string `csv:"Amount"`
	Status   string `csv:"Status"`
}

// StockRow is one line of the inventory report.
type StockRow struct {
	Product string `csv:"Product"`
	Size    string `csv:"Size"`
	Stock   string `csv:"Current Stock"`
}

// TraderRow is one line of the contact list.
type TraderRow struct {
	Name    string `csv:"Name"`
	Contact string `csv:"Contact"`
	Type    string `csv:"Type"`
}

// Filter narrows the transaction report. Zero values match everything.
type Filter struct {
	// Date must equal the stored date exactly.
	Date string
	// Name is a case-insensitive substring of the trader name.
	Name string
	// Product must match exactly; "all" matches everything.
	Product string
	// Size is a case-insensitive substring of the size.
	Size string
	// Status must match; an empty stored status counts as purchased.
	Status models.Status
}

// IsZero reports whether f filters nothing.
func (f Filter) IsZero() bool {
	return f.Date == "" && f.Name == "" && (f.Product == "" || f.Product == "all") && f.Size == "" &&
		(f.Status == "" || f.Status == "all")
}

// Match reports whether t passes the filter.
func (f Filter) Match(t models.Transaction) bool {
	if f.Date != "" && t.Date != f.Date {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Product != "" && f.Product != "all" && t.Product != f.Product {
		return false
	}
	if f.Size != "" && !strings.Contains(strings.ToLower(t.Size), strings.ToLower(f.Size)) {
		return false
	}
	if f.Status != "" && f.Status != "all" && t.Status.OrDefault() != f.Status {
		return false
	}
	return true
}

// SalesRows converts the transactions that pass f.
func SalesRows(txs []models.Transaction, f Filter) []SalesRow {
	rows := []SalesRow{}
	for _, t := range txs {
		if !f.Match(t) {
			continue
		}
		rows = append(rows, SalesRow{
			Date:     t.Date,
			Type:     string(t.Direction),
			Customer: t.Name,
			Product:  t.Product,
			Size:     t.Size,
			Qty:      t.Qty.String(),
			Amount:   t.Amount.StringFixed(2),
			Status:   string(t.Status.OrDefault()),
		})
	}
	return rows
}

// StockRows lists every variant of catalog with its stock.
func StockRows(catalog models.Catalog, inv ledger.Inventory) []StockRow {
	rows := []StockRow{}
	for _, item := range catalog.Items() {
		rows = append(rows, StockRow{
			Product: item.Product,
			Size:    item.Size,
			Stock:   inv.Get(item.Product, item.Size).String(),
		})
	}
	return rows
}

// TraderRows lists traders sorted by name.
func TraderRows(traders models.Traders) []TraderRow {
	names := make([]string, 0, len(traders))
	for name := range traders {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]TraderRow, 0, len(names))
	for _, name := range names {
		t := traders[name]
		rows = append(rows, TraderRow{Name: name, Contact: t.Contact, Type: string(t.Type)})
	}
	return rows
}

// Writer renders rows as CSV with a configurable delimiter.
type Writer struct {
	Delimiter rune
	logger    logging.Logger
}

// NewWriter returns a Writer. A zero delimiter means comma.
func NewWriter(delimiter rune, logger logging.Logger) *Writer {
	if delimiter == 0 {
		delimiter = ','
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Writer{Delimiter: delimiter, logger: logger}
}

// Write marshals rows to out, header first.
func Write[T any](w *Writer, out io.Writer, rows []T) error {
	csvWriter := csv.NewWriter(out)
	csvWriter.Comma = w.Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteFile writes rows to path, creating parent directories.
func WriteFile[T any](w *Writer, path string, rows []T) error {
	file, err := fileutils.CreateFile(path)
	if err != nil {
		w.logger.WithError(err).Error("Failed to create CSV file")
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := Write(w, file, rows); err != nil {
		w.logger.WithError(err).Error("Failed to marshal rows to CSV")
		return err
	}
	w.logger.WithFields(
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, len(rows)),
	).Info("Wrote CSV report")
	return nil
}

// ReadFile reads a CSV file with a header row into rows of T.
func ReadFile[T any](w *Writer, path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			w.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	reader := csv.NewReader(file)
	reader.Comma = w.Delimiter
	reader.FieldsPerRecord = -1

	var rows []T
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}
	w.logger.WithFields(
		logging.F(logging.FieldInputFile, path),
		logging.F(logging.FieldCount, len(rows)),
	).Debug("Read CSV file")
	return rows, nil
}
