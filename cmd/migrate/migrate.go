// Package migrate reports the schema migrations applied when the ledger
// was opened and lists what the backend holds.
package migrate

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/backing"
	ledgermigrate "uhb/trade-ledger/internal/migrate"
)

// Cmd represents the migrate command
var Cmd = NewCmd()

// NewCmd builds the migrate command.
func NewCmd() *cobra.Command {
	var listKeys bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade stored data to the current schema and show what changed",
		Long: `Stored data is upgraded every time the ledger opens. This command shows
what that upgrade did, and with --keys what the storage backend now holds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printReport(cmd, c.GetStore().MigrationReport())
			if !listKeys {
				return nil
			}

			b := c.GetBackend()
			keys, err := b.Keys()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "KEY\tBYTES\tSTATE")
			for _, key := range keys {
				value, _, err := b.Get(key)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", key, len(value), keyState(key))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&listKeys, "keys", false, "List stored keys and their sizes")
	return cmd
}

func keyState(key string) string {
	for _, legacy := range backing.LegacyKeys {
		if key == legacy {
			return "legacy"
		}
	}
	if backing.IsKnownKey(key) {
		return "current"
	}
	return "unknown"
}

func printReport(cmd *cobra.Command, r *ledgermigrate.Report) {
	out := cmd.OutOrStdout()
	if r == nil || (!r.Changed() && len(r.Skipped) == 0) {
		_, _ = fmt.Fprintln(out, "Schema is current, nothing migrated")
		return
	}
	lines := []struct {
		label string
		value int
	}{
		{"Catalog products upgraded", r.CatalogProductsUpgraded},
		{"Sales merged", r.SalesMerged},
		{"Purchases merged", r.PurchasesMerged},
		{"Duplicates skipped", r.DuplicatesSkipped},
		{"Legacy records kept (no direction)", r.Unrouted},
		{"Roles renamed", r.RolesRenamed},
		{"Users removed", r.UsersRemoved},
		{"Traders upgraded", r.TradersUpgraded},
	}
	for _, l := range lines {
		if l.value > 0 {
			_, _ = fmt.Fprintf(out, "%s: %d\n", l.label, l.value)
		}
	}
	if r.LegacyTransactionsMoved {
		_, _ = fmt.Fprintln(out, "Legacy transaction list split into sales and purchases")
	}
	if r.CatalogSplit {
		_, _ = fmt.Fprintln(out, "Legacy catalog split into sell and buy catalogs")
	}
	if len(r.Skipped) > 0 {
		_, _ = fmt.Fprintf(out, "Skipped (unreadable data): %s\n", strings.Join(r.Skipped, ", "))
	}
}
