// Package reminders lists the booked transactions whose balance is promised
// for a given day.
package reminders

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/models"
)

// Cmd represents the reminders command
var Cmd = NewCmd()

// NewCmd builds the reminders command.
func NewCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List payments promised for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			day := time.Now()
			if date != "" {
				if day, _, err = dateutils.ParseDate(date); err != nil {
					return err
				}
			}
			s := c.GetStore()
			due := s.Reminders(day)
			out := cmd.OutOrStdout()
			if len(due) == 0 {
				_, _ = fmt.Fprintf(out, "No payments due on %s\n", dateutils.ToISODate(day))
				return nil
			}

			_, _ = fmt.Fprintf(out, "%d payments due on %s\n", len(due), dateutils.ToISODate(day))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tCONTACT\tITEM\tDUE")
			for _, t := range due {
				contact := ""
				if trader, ok := s.Trader(t.Name); ok {
					contact = trader.Contact
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s (%s)\t%s\n", t.ID, t.Name, contact, t.Product, t.Size,
					models.FormatRupees(t.Outstanding()))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to check (default: today)")
	return cmd
}
