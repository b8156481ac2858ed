// Package stock handles the inventory commands: stock levels, item ledgers,
// valuation and low-stock alerts.
package stock

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/models"
	"uhb/trade-ledger/internal/report"
)

// Cmd represents the stock command
var Cmd = NewCmd()

// NewCmd builds the stock command tree.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stock",
		Aliases: []string{"inventory"},
		Short:   "Show stock levels derived from transactions",
		Long: `Stock is never stored: it is the sum of purchases minus the sum of sales
for each product and size.`,
	}
	cmd.AddCommand(newShowCmd(), newLedgerCmd(), newInventoryCmd(), newValuationCmd(), newLowCmd(), newThresholdCmd())
	return cmd
}

func directionFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "direction", "d", "", "Catalog to use: sell or buy (default: active direction)")
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <product> <size>",
		Short: "Print the stock of one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			qty := c.GetStore().CalculateStock(args[0], args[1])
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", args[0], args[1], qty)
			return nil
		},
	}
}

func newLedgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger <product> <size>",
		Short: "Print the running stock balance of one item, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "DATE\tTYPE\tNAME\tIN\tOUT\tBALANCE")
			for _, e := range c.GetStore().Ledger(args[0], args[1]) {
				in, out := "", ""
				if e.Transaction.Direction == models.Buy {
					in = e.Transaction.Qty.String()
				} else {
					out = e.Transaction.Qty.String()
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Transaction.Date, e.Transaction.Direction, e.Transaction.Name, in, out, e.Balance)
			}
			return w.Flush()
		},
	}
}

func newInventoryCmd() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Print the stock of every catalog item",
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
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PRODUCT\tSIZE\tSTOCK")
			for _, row := range report.StockRows(s.Catalog(dir), s.InventoryMap()) {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", row.Product, row.Size, row.Stock)
			}
			return w.Flush()
		},
	}
	directionFlag(cmd, &direction)
	return cmd
}

func newValuationCmd() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "valuation",
		Short: "Value the positive stock at catalog prices",
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
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stock value: %s\n", models.FormatRupees(c.GetStore().Valuation(dir)))
			return nil
		},
	}
	directionFlag(cmd, &direction)
	return cmd
}

func newLowCmd() *cobra.Command {
	var direction string
	cmd := &cobra.Command{
		Use:   "low",
		Short: "List catalog items below their alert level",
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
			items := c.GetStore().LowStock(dir)
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All items are above their alert level")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PRODUCT\tSIZE\tSTOCK\tALERT BELOW")
			for _, item := range items {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", item.Product, item.Size, item.Stock, item.Threshold)
			}
			return w.Flush()
		},
	}
	directionFlag(cmd, &direction)
	return cmd
}

func newThresholdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threshold",
		Short: "Set or clear the low-stock alert level of an item",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <product> <size> <level>",
		Short: "Alert when stock drops below level",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			level, err := strconv.Atoi(args[2])
			if err != nil || level < 0 {
				return fmt.Errorf("invalid alert level: %s", args[2])
			}
			if err := c.GetStore().SetThreshold(args[0], args[1], level); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Alert for %s %s below %d\n", args[0], args[1], level)
			return nil
		},
	}, &cobra.Command{
		Use:   "clear <product> <size>",
		Short: "Return to the default alert level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			if err := c.GetStore().RemoveThreshold(args[0], args[1]); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default alert for %s %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}
