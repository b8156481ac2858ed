package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/ledgererror"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
	"uhb/trade-ledger/internal/store"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func yes() bool { return true }
func no() bool  { return false }

func populated(t *testing.T) (*backing.Memory, *store.Store) {
	t.Helper()
	b := backing.NewMemory(0)
	s, err := store.Open(b)
	require.NoError(t, err)

	require.NoError(t, s.AddTransaction(models.Transaction{
		ID: 1, Date: "2024-04-01", Direction: models.Buy, Name: "Dealer",
		Product: "Dust", Size: "Default", Qty: decimal.NewFromInt(100), Amount: decimal.NewFromInt(5000),
	}))
	require.NoError(t, s.AddTransaction(models.Transaction{
		ID: 2, Date: "2024-04-02", Direction: models.Sell, Name: "Ravi",
		Product: "Block", Size: "6 inch", Qty: decimal.NewFromInt(10), Amount: decimal.RequireFromString("500.50"),
		Status: models.Booked, PaidAmount: decimal.NewFromInt(100), PromiseDate: "2024-04-09",
	}))
	require.NoError(t, s.AddTrader("Ravi", models.Trader{Contact: "98450", Type: models.Customer}))
	require.NoError(t, s.AddUser(models.User{Username: "owner", Role: models.RoleOwner}))
	require.NoError(t, s.SetThreshold("Dust", "Default", 80))
	require.NoError(t, s.Flush())
	return b, s
}

type state struct {
	Sales, Purchases        []models.Transaction
	CatalogSell, CatalogBuy models.Catalog
	Traders                 models.Traders
	Users                   []models.User
	Thresholds              models.Thresholds
}

func capture(s *store.Store) state {
	return state{
		Sales:       s.Transactions(models.Sell),
		Purchases:   s.Transactions(models.Buy),
		CatalogSell: s.Catalog(models.Sell),
		CatalogBuy:  s.Catalog(models.Buy),
		Traders:     s.Traders(),
		Users:       s.Users(),
		Thresholds:  s.Thresholds(),
	}
}

func TestRoundTrip(t *testing.T) {
	src, srcStore := populated(t)
	srcStore.SetActiveDirection(models.Buy)
	srcStore.SetDateFilter(dateutils.Daily)

	doc, err := NewManager(src, nil).Export()
	require.NoError(t, err)
	data, err := doc.Encode()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	dst := backing.NewMemory(0)
	require.NoError(t, dst.Set(backing.KeySales, []byte(`[{"id":99,"direction":"sell"}]`)))
	require.NoError(t, NewManager(dst, nil).Import(parsed, yes))

	dstStore, err := store.Open(dst)
	require.NoError(t, err)
	if diff := cmp.Diff(capture(srcStore), capture(dstStore), decimalEqual); diff != "" {
		t.Errorf("restored store differs (-want +got):\n%s", diff)
	}
	assert.Equal(t, models.Sell, dstStore.ActiveDirection(), "UI state is not part of a backup")
	assert.Equal(t, dateutils.Monthly, dstStore.DateFilter())
}

func TestExport_OnlyPopulatedKnownKeys(t *testing.T) {
	b := backing.NewMemory(0)
	require.NoError(t, b.Set(backing.KeyTraders, []byte(`{}`)))
	require.NoError(t, b.Set(backing.KeyLegacyCatalog, []byte(`{"Block":["6 inch"]}`)))
	require.NoError(t, b.Set("something_else", []byte(`1`)))

	doc, err := NewManager(b, nil).Export()
	require.NoError(t, err)

	assert.Equal(t, []string{backing.KeyLegacyCatalog, backing.KeyTraders}, doc.Keys())
	assert.Equal(t, `{"Block":["6 inch"]}`, doc[backing.KeyLegacyCatalog])
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"array", `["a"]`},
		{"truncated", `{"udt_sales_v3": "[]"`},
		{"non-string value", `{"udt_sales_v3": []}`},
		{"value not JSON", `{"udt_sales_v3": "[{oops"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
			assert.True(t, ledgererror.IsInvalidBackup(err))
		})
	}
}

func TestImport_Cancelled(t *testing.T) {
	b, _ := populated(t)
	before, _ := NewManager(b, nil).Export()

	err := NewManager(b, nil).Import(Document{backing.KeySales: `[]`}, no)

	assert.ErrorIs(t, err, ErrCancelled)
	after, _ := NewManager(b, nil).Export()
	assert.Equal(t, before, after)
}

func TestImportFile_CorruptLeavesBackendUntouched(t *testing.T) {
	b, _ := populated(t)
	before, _ := NewManager(b, nil).Export()

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"udt_sales_v3": "[{"`), 0600))

	asked := false
	logger := logging.NewMockLogger()
	err := NewManager(b, logger).ImportFile(path, func() bool { asked = true; return true })

	require.Error(t, err)
	assert.True(t, ledgererror.IsInvalidBackup(err))
	assert.False(t, asked, "confirmation is not requested for a corrupt file")
	assert.True(t, logger.HasEntry("ERROR", "Invalid backup file"))
	after, _ := NewManager(b, nil).Export()
	assert.Equal(t, before, after)
}

func TestImportFile_Missing(t *testing.T) {
	b, _ := populated(t)
	err := NewManager(b, nil).ImportFile(filepath.Join(t.TempDir(), "nope.json"), yes)
	assert.ErrorContains(t, err, "backup file not found")
}

func TestImport_ClearsKnownKeysAndSkipsUnknown(t *testing.T) {
	b, _ := populated(t)
	logger := logging.NewMockLogger()

	err := NewManager(b, logger).Import(Document{
		backing.KeyTraders: `{"Solo":{"contact":"1","type":"Customer"}}`,
		backing.KeyUsers:   "",
		"evil_key":         `1`,
	}, nil)
	require.NoError(t, err)

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{backing.KeyTraders}, keys)
	assert.True(t, logger.HasEntry("WARN", "Ignoring unknown key in backup"))
}

func TestExportToFileAndImportFile(t *testing.T) {
	b, _ := populated(t)
	dir := t.TempDir()
	now := time.Date(2024, 11, 5, 18, 0, 0, 0, time.UTC)

	path, err := NewManager(b, nil).ExportToFile(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "UHB_Backup_2024-11-05.json"), path)

	fresh := backing.NewMemory(0)
	require.NoError(t, NewManager(fresh, nil).ImportFile(path, yes))

	s, err := store.Open(fresh)
	require.NoError(t, err)
	assert.Equal(t, "100", s.CalculateStock("Dust", "Default").String())
}

func TestReset(t *testing.T) {
	b, _ := populated(t)
	require.NoError(t, b.Set(backing.KeyLegacyTransactions, []byte(`[]`)))
	require.NoError(t, b.Set("unrelated", []byte(`1`)))

	assert.ErrorIs(t, NewManager(b, nil).Reset(no), ErrCancelled)
	require.NoError(t, NewManager(b, nil).Reset(yes))

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"unrelated"}, keys)

	s, err := store.Open(b)
	require.NoError(t, err)
	assert.Contains(t, s.Catalog(models.Sell), "Block", "factory defaults after reset")
}
