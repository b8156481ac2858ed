// Package trader handles the customer and dealer contact commands.
package trader

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
	"uhb/trade-ledger/internal/report"
)

// Cmd represents the trader command
var Cmd = NewCmd()

// NewCmd builds the trader command tree.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "trader",
		Aliases: []string{"traders", "contact"},
		Short:   "Manage customers and dealers",
		Long: `Manage customer and dealer contacts. Renaming a trader also renames every
transaction that references it.`,
	}
	cmd.AddCommand(newAddCmd(), newRemoveCmd(), newRenameCmd(), newListCmd(), newBalanceCmd(), newImportCmd())
	return cmd
}

func parseType(s string) (models.TraderType, error) {
	if s == "" {
		return models.Customer, nil
	}
	return models.ParseTraderType(s)
}

func newAddCmd() *cobra.Command {
	var contact, typ string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or replace a trader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			tt, err := parseType(typ)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("trader name is required")
			}
			if err := c.GetStore().AddTrader(name, models.Trader{Contact: contact, Type: tt}); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", name, tt)
			return nil
		},
	}
	cmd.Flags().StringVarP(&contact, "contact", "c", "", "Phone number")
	cmd.Flags().StringVarP(&typ, "type", "t", string(models.Customer), "Customer or Dealer")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a trader; its transactions are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			if err := c.GetStore().RemoveTrader(args[0]); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newRenameCmd() *cobra.Command {
	var contact, typ string
	cmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a trader and its transactions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			s := c.GetStore()
			current, ok := s.Trader(args[0])
			if !ok {
				return fmt.Errorf("unknown trader: %s", args[0])
			}
			if _, taken := s.Trader(args[1]); taken && args[1] != args[0] {
				return fmt.Errorf("trader %s already exists", args[1])
			}
			if contact != "" {
				current.Contact = contact
			}
			if typ != "" {
				if current.Type, err = models.ParseTraderType(typ); err != nil {
					return err
				}
			}
			if err := s.RenameTrader(args[0], args[1], current); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().StringVarP(&contact, "contact", "c", "", "New phone number (default: unchanged)")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "New type (default: unchanged)")
	return cmd
}

func newListCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List traders with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			s := c.GetStore()
			var only models.TraderType
			if typ != "" {
				if only, err = models.ParseTraderType(typ); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tCONTACT\tTYPE\tBALANCE")
			for _, row := range report.TraderRows(s.Traders()) {
				if only != "" && row.Type != string(only) {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", row.Name, row.Contact, row.Type,
					models.FormatRupees(s.TraderBalance(row.Name)))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only Customer or Dealer")
	return cmd
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <name>",
		Short: "Show a trader's balance and history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			summary := c.GetStore().TraderSummary(args[0])
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s (%s)\n", summary.Name, summary.Type)
			_, _ = fmt.Fprintf(out, "Orders: %d  Purchases: %d\n", summary.Orders, summary.Purchases)
			_, _ = fmt.Fprintf(out, "Balance: %s  Outstanding: %s\n",
				models.FormatRupees(summary.Balance), models.FormatRupees(summary.Outstanding))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, t := range summary.History {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n", t.Date, t.Direction, t.Product, t.Size, t.Qty,
					models.FormatRupees(t.Amount))
			}
			return w.Flush()
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Add traders from a CSV file with Name, Contact and Type columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			rows, err := report.ReadFile[report.TraderRow](c.GetReportWriter(), args[0])
			if err != nil {
				return err
			}
			s := c.GetStore()
			added := 0
			for _, row := range rows {
				name := strings.TrimSpace(row.Name)
				if name == "" {
					continue
				}
				tt, err := parseType(row.Type)
				if err != nil {
					c.GetLogger().WithError(err).WithField(logging.FieldTrader, name).Warn("Skipping trader with unknown type")
					continue
				}
				if err := s.AddTrader(name, models.Trader{Contact: strings.TrimSpace(row.Contact), Type: tt}); err != nil {
					return root.SaveWarning(err)
				}
				added++
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d traders\n", added)
			return nil
		},
	}
}
