// Package transaction handles the commands that record, edit and list buy
// and sell transactions.
package transaction

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"uhb/trade-ledger/cmd/root"
	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/ledger"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
	"uhb/trade-ledger/internal/store"
)

// MinContactLength is the shortest phone number accepted for a new trader.
const MinContactLength = 10

// Cmd represents the tx command
var Cmd = NewCmd()

// NewCmd builds the tx command tree.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Record, edit and list transactions",
		Long: `Record, edit and list buy and sell transactions. A sale lowers stock,
a purchase raises it. Booked transactions carry a paid amount and a promise date.`,
	}
	cmd.AddCommand(newAddCmd(), newUpdateCmd(), newPayCmd(), newDeleteCmd(), newListCmd())
	return cmd
}

type entryFlags struct {
	direction string
	date      string
	name      string
	contact   string
	product   string
	size      string
	qty       string
	amount    string
	status    string
	paid      string
	promise   string
	payment   string
	upi       string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.direction, "direction", "d", "", "sell or buy (default: active direction)")
	flags.StringVar(&f.date, "date", "", "Transaction date (default: today)")
	flags.StringVarP(&f.name, "name", "n", models.WalkInTrader, "Customer or dealer name")
	flags.StringVar(&f.contact, "contact", "", "Phone number, required when the trader is new")
	flags.StringVarP(&f.product, "product", "p", "", "Product name")
	flags.StringVarP(&f.size, "size", "s", "", "Product size")
	flags.StringVarP(&f.qty, "qty", "q", "", "Quantity")
	flags.StringVarP(&f.amount, "amount", "a", "", "Total amount (default: qty x catalog price)")
	flags.StringVar(&f.status, "status", string(models.Purchased), "purchased or booked")
	flags.StringVar(&f.paid, "paid", "", "Amount paid so far (booked only)")
	flags.StringVar(&f.promise, "promise", "", "Date the balance is promised (booked only)")
	flags.StringVar(&f.payment, "payment", models.PaymentCash, "Payment method")
	flags.StringVar(&f.upi, "upi", "", "UPI id when paid by UPI")
}

// build turns the flags into a transaction. The product and size must be in
// the catalog of the transaction's direction; its price is used when no
// amount was given.
func (f *entryFlags) build(s *store.Store, now time.Time) (models.Transaction, error) {
	dir, err := root.ParseDirection(f.direction)
	if err != nil {
		return models.Transaction{}, err
	}
	dir = dir.Or(s.ActiveDirection())

	date := dateutils.ToISODate(now)
	if f.date != "" {
		if date, err = dateutils.NormalizeDate(f.date); err != nil {
			return models.Transaction{}, err
		}
	}

	entry, ok := s.Catalog(dir).Lookup(f.product, f.size)
	if !ok {
		return models.Transaction{}, fmt.Errorf("%s %s is not in the %s catalog", f.product, f.size, dir)
	}

	qty, err := models.ParseNonNegative("quantity", f.qty)
	if err != nil {
		return models.Transaction{}, err
	}

	amount := entry.Price.Mul(qty)
	if f.amount != "" {
		if amount, err = models.ParseAmount(f.amount); err != nil {
			return models.Transaction{}, err
		}
	}

	tx := models.Transaction{
		Date:          date,
		Direction:     dir,
		Name:          strings.TrimSpace(f.name),
		Product:       f.product,
		Size:          f.size,
		Qty:           qty,
		Amount:        amount,
		Status:        models.Status(strings.ToLower(f.status)),
		PaymentMethod: f.payment,
		UPIID:         strings.TrimSpace(f.upi),
	}
	if tx.Status.OrDefault() == models.Booked {
		if tx.PaidAmount, err = models.ParseAmount(f.paid); err != nil {
			return models.Transaction{}, err
		}
		if f.promise != "" {
			if tx.PromiseDate, err = dateutils.NormalizeDate(f.promise); err != nil {
				return models.Transaction{}, err
			}
		}
	} else {
		tx.PaidAmount = tx.Amount
	}
	return tx, tx.Validate()
}

// ensureTrader registers a new counterparty. New traders need a contact number.
func ensureTrader(s *store.Store, tx models.Transaction, contact string) error {
	if _, ok := s.Trader(tx.Name); ok {
		return nil
	}
	contact = strings.TrimSpace(contact)
	if len(contact) < MinContactLength {
		return fmt.Errorf("%s is a new trader: pass --contact with a valid %d-digit number", tx.Name, MinContactLength)
	}
	return s.AddTrader(tx.Name, models.Trader{Contact: contact, Type: models.TraderTypeFor(tx.Direction)})
}

func newAddCmd() *cobra.Command {
	var f entryFlags
	var id int64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			s := c.GetStore()

			tx, err := f.build(s, time.Now())
			if err != nil {
				return err
			}
			if err := ensureTrader(s, tx, f.contact); err != nil {
				return root.SaveWarning(err)
			}
			tx.ID = models.TxID(id)
			if id == 0 {
				tx.ID = s.NewTransactionID()
			}
			if err := s.AddTransaction(tx); err != nil {
				return root.SaveWarning(err)
			}

			c.GetLogger().WithFields(
				logging.F(logging.FieldTransactionID, tx.ID),
				logging.F(logging.FieldDirection, tx.Direction),
			).Info("Transaction saved")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s\n", tx.Direction, tx.ID)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().Int64Var(&id, "id", 0, "Transaction id (default: generated)")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("size")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var f entryFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a transaction, keeping its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			s := c.GetStore()

			id, err := models.ParseTxID(args[0])
			if err != nil {
				return err
			}
			existing, ok := find(s, id)
			if !ok {
				return fmt.Errorf("transaction %s not found", id)
			}
			if f.direction == "" {
				f.direction = string(existing.Direction)
			}
			tx, err := f.build(s, time.Now())
			if err != nil {
				return err
			}
			if err := ensureTrader(s, tx, f.contact); err != nil {
				return root.SaveWarning(err)
			}
			tx.ID = id
			if err := s.UpdateTransaction(tx); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", id)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("size")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newPayCmd() *cobra.Command {
	var amount string
	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Record a payment against a booked transaction",
		Long: `Record a payment against a booked transaction. Without --amount the whole
balance is paid. A fully paid transaction becomes purchased.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			s := c.GetStore()
			id, err := models.ParseTxID(args[0])
			if err != nil {
				return err
			}
			tx, ok := find(s, id)
			if !ok {
				return fmt.Errorf("transaction %s not found", id)
			}
			due := tx.Outstanding()
			if due.IsZero() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Nothing due on %s\n", id)
				return nil
			}

			payment := due
			if amount != "" {
				if payment, err = models.ParseNonNegative("payment", amount); err != nil {
					return err
				}
			}
			tx.PaidAmount = tx.PaidAmount.Add(payment)
			if !tx.PaidAmount.LessThan(tx.Amount) {
				tx.PaidAmount = tx.Amount
				tx.Status = models.Purchased
				tx.PromiseDate = ""
			}
			if err := s.UpdateTransaction(tx); err != nil {
				return root.SaveWarning(err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Paid %s on %s, %s due\n",
				models.FormatRupees(payment), id, models.FormatRupees(tx.Outstanding()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount paid now (default: the full balance)")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			id, err := models.ParseTxID(args[0])
			if err != nil {
				return err
			}
			removed, err := c.GetStore().DeleteTransaction(id)
			if err != nil {
				return root.SaveWarning(err)
			}
			if !removed {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No transaction %s\n", id)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var direction, period string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.GetContainer()
			if err != nil {
				return err
			}
			s := c.GetStore()

			dir, err := root.ParseDirection(direction)
			if err != nil {
				return err
			}
			p, err := dateutils.ParsePeriod(period)
			if err != nil {
				return err
			}
			txs := ledger.FilterPeriod(s.Transactions(dir), p, time.Now())
			sort.SliceStable(txs, func(i, j int) bool { return txs[i].ID > txs[j].ID })

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tDATE\tNAME\tPRODUCT\tSIZE\tQTY\tAMOUNT\tSTATUS\tDUE")
			for _, t := range txs {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Date, t.Name, t.Product, t.Size, t.Qty,
					models.FormatRupees(t.Amount), t.Status.OrDefault(), models.FormatRupees(t.Outstanding()))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			totals := ledger.Summarize(txs)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d transactions, %s\n", totals.Count, models.FormatRupees(totals.Amount))
			return nil
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "sell or buy (default: active direction)")
	cmd.Flags().StringVar(&period, "period", string(dateutils.AllTime), "daily, weekly, monthly, 6months, 1year or all")
	return cmd
}

func find(s *store.Store, id models.TxID) (models.Transaction, bool) {
	for _, t := range s.AllTransactions() {
		if t.ID == id {
			return t, true
		}
	}
	return models.Transaction{}, false
}
