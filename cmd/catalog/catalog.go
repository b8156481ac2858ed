// Package catalog handles the commands that edit the sell and buy catalogs.
package catalog

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/models"
)

// Cmd represents the catalog command
var Cmd = NewCmd()

// NewCmd builds the catalog command tree.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the sell and buy catalogs",
		Long: `Manage the products and sizes offered for sale and bought from dealers.
Every subcommand works on the sell catalog unless --direction buy is given.`,
	}
	cmd.PersistentFlags().StringP("direction", "d", "", "sell or buy (default: active direction)")
	cmd.AddCommand(newAddCmd(), newRemoveCmd(), newPriceCmd(), newListCmd())
	return cmd
}

func direction(cmd *cobra.Command) (models.Direction, error) {
	value, err := cmd.Flags().GetString("direction")
	if err != nil {
		return "", err
	}
	return root.ParseDirection(value)
}

func newAddCmd() *cobra.Command {
	var price string
	cmd := &cobra.Command{
		Use:   "add <product> <size>",
		Short: "Add a size to a product, creating the product if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			dir, err := direction(cmd)
			if err != nil {
				return err
			}
			p, err := models.ParseNonNegative("price", price)
			if err != nil {
				return err
			}
			s := c.GetStore()
			if _, exists := s.Catalog(dir).Lookup(args[0], args[1]); exists {
				return fmt.Errorf("%s %s is already in the catalog; use 'catalog price' to change it", args[0], args[1])
			}
			if err := s.AddCatalogItem(dir, args[0], models.CatalogEntry{Size: args[1], Price: p}); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s at %s\n", args[0], args[1], models.FormatRupees(p))
			return nil
		},
	}
	cmd.Flags().StringVar(&price, "price", "0", "Unit price")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product> <size>",
		Short: "Remove a size; a product without sizes is removed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			dir, err := direction(cmd)
			if err != nil {
				return err
			}
			if err := c.GetStore().RemoveCatalogItem(dir, args[0], args[1]); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", args[0], args[1])
			return nil
		},
	}
}

func newPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "price <product> <size> <price>",
		Short: "Change the unit price of a size",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			dir, err := direction(cmd)
			if err != nil {
				return err
			}
			p, err := models.ParseNonNegative("price", args[2])
			if err != nil {
				return err
			}
			s := c.GetStore()
			if _, ok := s.Catalog(dir).Lookup(args[0], args[1]); !ok {
				return fmt.Errorf("%s %s is not in the catalog", args[0], args[1])
			}
			if err := s.UpdateCatalogItem(dir, args[0], args[1], p); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s now %s\n", args[0], args[1], models.FormatRupees(p))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List products, sizes and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			dir, err := direction(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PRODUCT\tSIZE\tPRICE")
			for _, item := range c.GetStore().Catalog(dir).Items() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", item.Product, item.Size, models.FormatRupees(item.Price))
			}
			return w.Flush()
		},
	}
}
