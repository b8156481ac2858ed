// Package report handles the CSV report and dashboard commands.
package report

import (
	"fmt"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/fileutils"
	"uhb/trade-ledger/internal/ledger"
	"uhb/trade-ledger/internal/models"
	csvreport "uhb/trade-ledger/internal/report"
)

// Cmd represents the report command
var Cmd = NewCmd()

// NewCmd builds the report command tree.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export CSV reports and show the dashboard",
		Long: `Export transactions, stock and contacts as CSV. Without --output the CSV
is printed; when --output is a directory the standard file name is used.`,
	}
	cmd.PersistentFlags().StringP("output", "o", "", "Output file or directory (default: stdout)")
	cmd.AddCommand(newSalesCmd(), newStockCmd(), newTradersCmd(), newSummaryCmd())
	return cmd
}

// emit writes rows to stdout or to the resolved output path.
func emit[T any](cmd *cobra.Command, defaultName string, rows []T) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	w := c.GetReportWriter()
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		return csvreport.Write(w, cmd.OutOrStdout(), rows)
	}
	if fileutils.DirectoryExists(output) {
		output = filepath.Join(output, defaultName)
	}
	if err := csvreport.WriteFile(w, output, rows); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(rows), output)
	return nil
}

func newSalesCmd() *cobra.Command {
	var direction, status string
	var f csvreport.Filter
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Export transactions, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			dir, err := root.ParseDirection(direction)
			if err != nil {
				return err
			}
			if f.Date != "" {
				if f.Date, err = dateutils.NormalizeDate(f.Date); err != nil {
					return err
				}
			}
			f.Status = models.Status(status)

			name := csvreport.FullSalesFile
			if !f.IsZero() {
				name = csvreport.FilteredSalesFile
			}
			return emit(cmd, name, csvreport.SalesRows(c.GetStore().Transactions(dir), f))
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&direction, "direction", "d", "", "sell or buy (default: active direction)")
	flags.StringVar(&f.Date, "date", "", "Only this date")
	flags.StringVar(&f.Name, "name", "", "Trader name contains")
	flags.StringVar(&f.Product, "product", "all", "Product, or all")
	flags.StringVar(&f.Size, "size", "", "Size contains")
	flags.StringVar(&status, "status", "all", "purchased, booked or all")
	return cmd
}

func newStockCmd() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Export the stock of every catalog item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			dir, err := root.ParseDirection(direction)
			if err != nil {
				return err
			}
			s := c.GetStore()
			dir = dir.Or(s.ActiveDirection())
			return emit(cmd, csvreport.InventoryFile(dir), csvreport.StockRows(s.Catalog(dir), s.InventoryMap()))
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "Catalog to use: sell or buy (default: active direction)")
	return cmd
}

func newTradersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "traders",
		Aliases: []string{"customers"},
		Short:   "Export the contact list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			return emit(cmd, csvreport.TraderListFile, csvreport.TraderRows(c.GetStore().Traders()))
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var direction, period string
	cmd := &cobra.Command{
		Use:     "summary",
		Aliases: []string{"dashboard"},
		Short:   "Show totals, daily amounts and product split for a period",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			dir, err := root.ParseDirection(direction)
			if err != nil {
				return err
			}
			p, err := dateutils.ParsePeriod(period)
			if err != nil {
				return err
			}
			s := c.GetStore()
			if dir != "" {
				s.SetActiveDirection(dir)
			}
			s.SetDateFilter(p)

			now := time.Now()
			txs := ledger.FilterPeriod(s.Transactions(""), p, now)
			totals := s.Dashboard(now)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s %s: %d transactions, %s\n", s.ActiveDirection(), p, totals.Count, models.FormatRupees(totals.Amount))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "DATE\tAMOUNT")
			for _, point := range ledger.DailyTotals(txs) {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", point.Date, models.FormatRupees(point.Amount))
			}
			_, _ = fmt.Fprintln(w, "\nPRODUCT\tAMOUNT")
			byProduct := ledger.ProductTotals(txs)
			for _, product := range sortedKeys(byProduct) {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", product, models.FormatRupees(byProduct[product]))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "sell or buy (default: active direction)")
	cmd.Flags().StringVar(&period, "period", string(dateutils.DefaultPeriod), "daily, weekly, monthly, 6months, 1year or all")
	return cmd
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
