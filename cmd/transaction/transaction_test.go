package transaction_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhb/trade-ledger/cmd/cmdtest"
	"uhb/trade-ledger/cmd/transaction"
	"uhb/trade-ledger/internal/models"
)

func TestTransactionCommand_Metadata(t *testing.T) {
	assert.Equal(t, "tx", transaction.Cmd.Use)
	assert.Contains(t, transaction.Cmd.Aliases, "transaction")
	names := []string{}
	for _, sub := range transaction.Cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"add", "update", "pay", "delete", "list"}, names)
}

func TestAdd_PricesFromCatalog(t *testing.T) {
	c := cmdtest.UseMemory(t)

	out, err := cmdtest.Run(t, transaction.NewCmd(), "add", "--date", "2024-05-01",
		"--product", "Block", "--size", "6 inch", "--qty", "10", "--id", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved sell 7")

	sales := c.GetStore().Transactions(models.Sell)
	require.Len(t, sales, 1)
	tx := sales[0]
	assert.Equal(t, models.TxID(7), tx.ID)
	assert.Equal(t, models.WalkInTrader, tx.Name)
	assert.Equal(t, "500", tx.Amount.String())
	assert.Equal(t, "500", tx.PaidAmount.String(), "purchased means fully paid")
	assert.Equal(t, models.Purchased, tx.Status)
}

func TestAdd_PurchaseRaisesStock(t *testing.T) {
	c := cmdtest.UseMemory(t)

	_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "-d", "buy", "--product", "Dust", "--size", "Default",
		"--qty", "100", "--amount", "5000", "--name", "Anand", "--contact", "9845012345")
	require.NoError(t, err)
	s := c.GetStore()
	require.NoError(t, s.AddCatalogItem(models.Sell, "Dust", models.CatalogEntry{Size: "Default", Price: decimal.NewFromInt(60)}))
	_, err = cmdtest.Run(t, transaction.NewCmd(), "add", "--product", "Dust", "--size", "Default", "--qty", "30")
	require.NoError(t, err)

	assert.Equal(t, "70", s.CalculateStock("Dust", "Default").String())
	trader, ok := s.Trader("Anand")
	require.True(t, ok)
	assert.Equal(t, models.Dealer, trader.Type)
}

func TestAdd_NewTraderNeedsContact(t *testing.T) {
	c := cmdtest.UseMemory(t)

	_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "--name", "Ravi",
		"--product", "Block", "--size", "6 inch", "--qty", "1", "--contact", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "new trader")
	assert.Empty(t, c.GetStore().Transactions(models.Sell))
}

func TestAdd_Booked(t *testing.T) {
	c := cmdtest.UseMemory(t)

	_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "--product", "Ring", "--size", "3 ft", "--qty", "2",
		"--status", "booked", "--paid", "400", "--promise", "09/05/2024")
	require.NoError(t, err)

	tx := c.GetStore().Transactions(models.Sell)[0]
	assert.Equal(t, models.Booked, tx.Status)
	assert.Equal(t, "1000", tx.Amount.String())
	assert.Equal(t, "600", tx.Outstanding().String())
	assert.Equal(t, "2024-05-09", tx.PromiseDate)
}

func TestAdd_RejectsInvalid(t *testing.T) {
	cmdtest.UseMemory(t)

	_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "--product", "Ring", "--size", "3 ft", "--qty", "2",
		"--status", "booked", "--paid", "5000")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidTransaction)

	_, err = cmdtest.Run(t, transaction.NewCmd(), "add", "--product", "Ring", "--size", "3 ft", "--qty", "-1")
	assert.Error(t, err)
}

func TestAdd_RejectsItemMissingFromCatalog(t *testing.T) {
	c := cmdtest.UseMemory(t)

	_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "-d", "sell", "--product", "Nonexistent", "--size", "99 ft",
		"--qty", "3", "--amount", "10")
	assert.ErrorContains(t, err, "Nonexistent 99 ft is not in the sell catalog")

	// Dust is only bought, never sold from the default catalogs.
	_, err = cmdtest.Run(t, transaction.NewCmd(), "add", "-d", "sell", "--product", "Dust", "--size", "Default", "--qty", "1")
	assert.Error(t, err)
	assert.Empty(t, c.GetStore().Transactions(models.Sell))
}

func TestUpdateAndDelete(t *testing.T) {
	c := cmdtest.UseMemory(t)
	s := c.GetStore()

	_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "-d", "buy", "--id", "42", "--product", "Dust",
		"--size", "Default", "--qty", "10", "--amount", "100")
	require.NoError(t, err)

	out, err := cmdtest.Run(t, transaction.NewCmd(), "update", "42", "--product", "Dust",
		"--size", "Default", "--qty", "12", "--amount", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 42")

	purchases := s.Transactions(models.Buy)
	require.Len(t, purchases, 1, "update keeps the original direction")
	assert.Equal(t, "12", purchases[0].Qty.String())

	_, err = cmdtest.Run(t, transaction.NewCmd(), "update", "42", "--product", "Dust", "--size", "9 ft", "--qty", "1")
	assert.ErrorContains(t, err, "not in the buy catalog")
	assert.Equal(t, "12", s.Transactions(models.Buy)[0].Qty.String())

	_, err = cmdtest.Run(t, transaction.NewCmd(), "update", "999", "--product", "Dust", "--size", "Default", "--qty", "1")
	assert.Error(t, err)

	out, err = cmdtest.Run(t, transaction.NewCmd(), "delete", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 42")
	assert.Empty(t, s.Transactions(models.Buy))

	out, err = cmdtest.Run(t, transaction.NewCmd(), "delete", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "No transaction 42")
}

func TestList(t *testing.T) {
	cmdtest.UseMemory(t)

	for _, id := range []string{"1", "2"} {
		_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "--id", id, "--date", "2024-05-0"+id,
			"--product", "Block", "--size", "4 inch", "--qty", "1")
		require.NoError(t, err)
	}

	out, err := cmdtest.Run(t, transaction.NewCmd(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-05-02")
	assert.Contains(t, out, "2 transactions, ₹80.00")
	assert.Less(t, strings.Index(out, "2024-05-02"), strings.Index(out, "2024-05-01"), "newest first")

	_, err = cmdtest.Run(t, transaction.NewCmd(), "list", "--period", "fortnight")
	assert.Error(t, err)
}

func TestPay(t *testing.T) {
	c := cmdtest.UseMemory(t)
	s := c.GetStore()

	_, err := cmdtest.Run(t, transaction.NewCmd(), "add", "--id", "9", "--product", "Ring", "--size", "3 ft",
		"--qty", "2", "--status", "booked", "--paid", "400", "--promise", "2024-05-09")
	require.NoError(t, err)

	out, err := cmdtest.Run(t, transaction.NewCmd(), "pay", "9", "--amount", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Paid ₹100.00 on 9, ₹500.00 due")
	tx := s.Transactions(models.Sell)[0]
	assert.Equal(t, models.Booked, tx.Status)
	assert.Equal(t, "500", tx.PaidAmount.String())

	out, err = cmdtest.Run(t, transaction.NewCmd(), "pay", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "₹0.00 due")
	tx = s.Transactions(models.Sell)[0]
	assert.Equal(t, models.Purchased, tx.Status)
	assert.Equal(t, "1000", tx.PaidAmount.String())
	assert.Empty(t, tx.PromiseDate)

	out, err = cmdtest.Run(t, transaction.NewCmd(), "pay", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing due on 9")
}
