package reminders_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhb/trade-ledger/cmd/cmdtest"
	"uhb/trade-ledger/cmd/reminders"
	"uhb/trade-ledger/internal/models"
)

func TestReminders(t *testing.T) {
	c := cmdtest.UseMemory(t)
	s := c.GetStore()
	require.NoError(t, s.AddTrader("Ravi", models.Trader{Contact: "9845012345", Type: models.Customer}))
	require.NoError(t, s.AddTransaction(models.Transaction{
		ID: 1, Date: "2024-05-01", Direction: models.Sell, Name: "Ravi", Product: "Ring", Size: "3 ft",
		Qty: decimal.NewFromInt(2), Amount: decimal.NewFromInt(1000), Status: models.Booked,
		PaidAmount: decimal.NewFromInt(400), PromiseDate: "2024-05-09",
	}))
	require.NoError(t, s.AddTransaction(models.Transaction{
		ID: 2, Date: "2024-05-01", Direction: models.Buy, Name: "Anand", Product: "Dust", Size: "Default",
		Qty: decimal.NewFromInt(2), Amount: decimal.NewFromInt(300), Status: models.Booked,
		PromiseDate: "2024-05-09",
	}))

	out, err := cmdtest.Run(t, reminders.NewCmd(), "--date", "09/05/2024")
	require.NoError(t, err)
	assert.Contains(t, out, "2 payments due on 2024-05-09")
	assert.Regexp(t, `Ravi\s+9845012345\s+Ring \(3 ft\)\s+₹600.00`, out)
	assert.Regexp(t, `Anand\s+Dust \(Default\)\s+₹300.00`, out)

	out, err = cmdtest.Run(t, reminders.NewCmd(), "--date", "2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "No payments due on 2024-05-10\n", out)

	_, err = cmdtest.Run(t, reminders.NewCmd(), "--date", "someday")
	assert.Error(t, err)
}

func TestRemindersCommand_Metadata(t *testing.T) {
	assert.Equal(t, "reminders", reminders.Cmd.Use)
	assert.NotNil(t, reminders.Cmd.Flags().Lookup("date"))
}
