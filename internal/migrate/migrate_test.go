package migrate

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
)

var buyDefault = models.Catalog{
	"Dust":   {{Size: "Default", Price: decimal.Zero}},
	"Jalli":  {{Size: "Default", Price: decimal.Zero}},
	"Cement": {{Size: "Default", Price: decimal.Zero}},
}

func seed(t *testing.T, docs map[string]string) *backing.Memory {
	t.Helper()
	b := backing.NewMemory(0)
	for k, v := range docs {
		require.NoError(t, b.Set(k, []byte(v)))
	}
	return b
}

func snapshot(t *testing.T, b backing.Backend) map[string]string {
	t.Helper()
	keys, err := b.Keys()
	require.NoError(t, err)
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, _, err := b.Get(k)
		require.NoError(t, err)
		out[k] = string(v)
	}
	return out
}

func get(t *testing.T, b backing.Backend, key string) string {
	t.Helper()
	v, ok, err := b.Get(key)
	require.NoError(t, err)
	require.True(t, ok, "key %s should exist", key)
	return string(v)
}

func transactions(t *testing.T, b backing.Backend, key string) []models.Transaction {
	t.Helper()
	var txs []models.Transaction
	require.NoError(t, json.Unmarshal([]byte(get(t, b, key)), &txs))
	return txs
}

func run(t *testing.T, b backing.Backend) (*Report, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	report, err := New(b, logger, WithBuyCatalogDefault(buyDefault)).Run()
	require.NoError(t, err)
	return report, logger
}

func TestRun_LegacyCatalogShape(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyLegacyCatalog: `{"Block":["6 inch","4 inch"]}`,
	})

	report, _ := run(t, b)

	assert.Equal(t, 1, report.CatalogProductsUpgraded)
	assert.True(t, report.CatalogSplit)
	assert.JSONEq(t,
		`{"Block":[{"size":"6 inch","price":0},{"size":"4 inch","price":0}]}`,
		get(t, b, backing.KeyCatalogSell))

	_, ok, _ := b.Get(backing.KeyLegacyCatalog)
	assert.False(t, ok, "legacy catalog key must be cleared")

	var buy models.Catalog
	require.NoError(t, json.Unmarshal([]byte(get(t, b, backing.KeyCatalogBuy)), &buy))
	assert.ElementsMatch(t, []string{"Cement", "Dust", "Jalli"}, buy.Products())
}

func TestRun_MixedCatalogUpgradesOnlyLegacyProducts(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyCatalogSell: `{"Block":["6 inch"],"Ring":[{"size":"3 ft","price":500}],"Cover":[]}`,
	})

	report, _ := run(t, b)

	assert.Equal(t, 1, report.CatalogProductsUpgraded)
	assert.JSONEq(t,
		`{"Block":[{"size":"6 inch","price":0}],"Ring":[{"size":"3 ft","price":500}],"Cover":[]}`,
		get(t, b, backing.KeyCatalogSell))
}

func TestRun_CatalogSplitKeepsExistingBuyCatalog(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyLegacyCatalog: `{"Block":[{"size":"6 inch","price":50}]}`,
		backing.KeyCatalogBuy:    `{"Sand":[{"size":"Truck","price":9000}]}`,
	})

	run(t, b)

	assert.JSONEq(t, `{"Sand":[{"size":"Truck","price":9000}]}`, get(t, b, backing.KeyCatalogBuy))
	assert.JSONEq(t, `{"Block":[{"size":"6 inch","price":50}]}`, get(t, b, backing.KeyCatalogSell))
}

func TestRun_CatalogSplitSkippedWhenSellCatalogWritten(t *testing.T) {
	// An emptied sales catalog is still a migrated one.
	b := seed(t, map[string]string{
		backing.KeyLegacyCatalog: `{"Block":[{"size":"6 inch","price":50}]}`,
		backing.KeyCatalogSell:   `{}`,
	})

	report, _ := run(t, b)

	assert.False(t, report.CatalogSplit)
	assert.Equal(t, `{}`, get(t, b, backing.KeyCatalogSell))
	assert.JSONEq(t, `{"Block":[{"size":"6 inch","price":50}]}`, get(t, b, backing.KeyLegacyCatalog))
}

func TestRun_UnifiedTransactions(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyLegacyTransactions: `[{"id":1,"type":"sell","name":"Alice","product":"Block","size":"6 inch","qty":10,"amount":500}]`,
		backing.KeyPurchases:          `[{"id":9,"direction":"buy","name":"Dealer","product":"Dust","size":"Default","qty":100,"amount":0}]`,
	})

	report, _ := run(t, b)

	assert.Equal(t, 1, report.SalesMerged)
	assert.Equal(t, 0, report.PurchasesMerged)
	assert.True(t, report.LegacyTransactionsMoved)

	sales := transactions(t, b, backing.KeySales)
	require.Len(t, sales, 1)
	assert.Equal(t, models.TxID(1), sales[0].ID)
	assert.Equal(t, models.Sell, sales[0].Direction)
	assert.Equal(t, "Alice", sales[0].Name)
	assert.True(t, sales[0].Qty.Equal(decimal.NewFromInt(10)))

	assert.JSONEq(t,
		`[{"id":9,"direction":"buy","name":"Dealer","product":"Dust","size":"Default","qty":100,"amount":0}]`,
		get(t, b, backing.KeyPurchases), "purchases must be left as they were")

	_, ok, _ := b.Get(backing.KeyLegacyTransactions)
	assert.False(t, ok)
}

func TestRun_SafeMergeSkipsKnownIDs(t *testing.T) {
	// Ids 2 and 4 were already moved, one of them stored as a string.
	b := seed(t, map[string]string{
		backing.KeySales: `[{"id":"2","direction":"sell","qty":1},{"id":4,"direction":"sell","qty":1}]`,
		backing.KeyLegacyTransactions: `[
			{"id":1,"type":"sell","qty":1},
			{"id":2,"type":"sell","qty":1},
			{"id":3,"type":"sell","qty":1},
			{"id":4,"type":"sell","qty":1},
			{"id":5,"type":"buy","qty":1}
		]`,
	})

	report, _ := run(t, b)

	const legacyLen, shared = 5, 2
	assert.Equal(t, legacyLen-shared, report.SalesMerged+report.PurchasesMerged)
	assert.Equal(t, shared, report.DuplicatesSkipped)

	var ids []models.TxID
	for _, tx := range transactions(t, b, backing.KeySales) {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []models.TxID{2, 4, 1, 3}, ids)
	assert.Len(t, transactions(t, b, backing.KeyPurchases), 1)
}

func TestRun_KeepsLegacyTransactionsWithoutDirection(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyLegacyTransactions: `[{"id":1,"qty":1},{"id":2,"type":"buy","qty":1}]`,
	})

	report, logger := run(t, b)

	assert.Equal(t, 1, report.Unrouted)
	assert.Equal(t, 1, report.PurchasesMerged)
	assert.False(t, report.LegacyTransactionsMoved)
	assert.True(t, logger.HasEntry("WARN", "Legacy transactions without a direction were left in the legacy list"))
	assert.JSONEq(t, `[{"id":1,"qty":1}]`, get(t, b, backing.KeyLegacyTransactions))

	again, _ := run(t, b)
	assert.False(t, again.Changed())
	assert.Len(t, transactions(t, b, backing.KeyPurchases), 1)
}

func TestRun_LegacyTransactionsCopiedVerbatim(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyLegacyTransactions: `[
			{"id":1,"type":"sell","name":"Alice","product":"Block","size":"6 inch","qty":"","amount":500},
			{"id":"tx-2","type":"BUY","name":"Dealer","product":"Dust","size":"Default","qty":3,"amount":30}
		]`,
	})

	report, _ := run(t, b)

	assert.Equal(t, 0, report.Unrouted)
	assert.Equal(t, 1, report.SalesMerged)
	assert.Equal(t, 1, report.PurchasesMerged)
	assert.True(t, report.LegacyTransactionsMoved)
	assert.JSONEq(t,
		`[{"id":1,"type":"sell","name":"Alice","product":"Block","size":"6 inch","qty":"","amount":500}]`,
		get(t, b, backing.KeySales))
	assert.JSONEq(t,
		`[{"id":"tx-2","type":"BUY","name":"Dealer","product":"Dust","size":"Default","qty":3,"amount":30}]`,
		get(t, b, backing.KeyPurchases))
	_, ok, _ := b.Get(backing.KeyLegacyTransactions)
	assert.False(t, ok)
}

func TestRun_SafeMergeMatchesNonNumericIDs(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyPurchases:          `[{"id":"tx-2","direction":"buy","qty":3}]`,
		backing.KeyLegacyTransactions: `[{"id":"tx-2","type":"buy","qty":3},{"id":"tx-3","type":"buy","qty":1}]`,
	})

	report, _ := run(t, b)

	assert.Equal(t, 1, report.DuplicatesSkipped)
	assert.Equal(t, 1, report.PurchasesMerged)
}

func TestRun_Roles(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyUsers: `[
			{"user":"root","pass":"x","role":"Master","permissions":{"sales":true}},
			{"user":"ravi","role":"Worker"},
			{"user":"old","role":"Admin"}
		]`,
	})

	report, _ := run(t, b)

	assert.Equal(t, 1, report.RolesRenamed)
	assert.Equal(t, 1, report.UsersRemoved)
	assert.JSONEq(t, `[
		{"user":"root","pass":"x","role":"Technical Team","permissions":{"sales":true}},
		{"user":"ravi","role":"Worker"}
	]`, get(t, b, backing.KeyUsers))
}

func TestRun_TraderShapeUpgrade(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyTraders:   `{"Alice":"98450","Bob":"12345","Walk-in":{"contact":"Unknown","type":"Customer"}}`,
		backing.KeyPurchases: `[{"id":1,"direction":"buy","name":"Bob","qty":5}]`,
	})

	report, _ := run(t, b)

	assert.Equal(t, 2, report.TradersUpgraded)
	var traders models.Traders
	require.NoError(t, json.Unmarshal([]byte(get(t, b, backing.KeyTraders)), &traders))
	assert.Equal(t, models.Traders{
		"Alice":   {Contact: "98450", Type: models.Customer},
		"Bob":     {Contact: "12345", Type: models.Dealer},
		"Walk-in": {Contact: "Unknown", Type: models.Customer},
	}, traders)
}

func TestRun_Idempotent(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyLegacyCatalog:      `{"Block":["6 inch","4 inch"],"Ring":[{"size":"3 ft","price":500}]}`,
		backing.KeyLegacyTransactions: `[{"id":1,"type":"sell","qty":3},{"id":2,"type":"buy","name":"Bob","qty":9}]`,
		backing.KeySales:              `[{"id":7,"direction":"sell","qty":1}]`,
		backing.KeyUsers:              `[{"user":"a","role":"Master"},{"user":"b","role":"Ghost"}]`,
		backing.KeyTraders:            `{"Bob":"555"}`,
	})

	first, _ := run(t, b)
	require.True(t, first.Changed())
	once := snapshot(t, b)

	second, _ := run(t, b)
	assert.False(t, second.Changed())
	if diff := cmp.Diff(once, snapshot(t, b)); diff != "" {
		t.Errorf("second run changed stored data (-once +twice):\n%s", diff)
	}
}

func TestRun_EmptyBackendIsNoop(t *testing.T) {
	b := backing.NewMemory(0)
	report, logger := run(t, b)

	assert.False(t, report.Changed())
	assert.Empty(t, snapshot(t, b))
	assert.Empty(t, logger.GetEntriesByLevel("ERROR"))
}

func TestRun_UnreadableDataIsSkipped(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyUsers:         `[{"user":`,
		backing.KeyLegacyCatalog: `{"Block":["6 inch"]}`,
	})

	report, logger := run(t, b)

	assert.Contains(t, report.Skipped, stepRenameRoles)
	assert.Contains(t, report.Skipped, stepEnforceRoles)
	assert.True(t, logger.HasEntry("ERROR", "Stored data is unreadable, skipping migration step"))
	assert.Equal(t, `[{"user":`, get(t, b, backing.KeyUsers), "unreadable data is left for inspection")
	assert.True(t, report.CatalogSplit, "other steps still run")
}

func TestRun_UnreadableTargetKeepsLegacyTransactions(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeySales:              `not json`,
		backing.KeyLegacyTransactions: `[{"id":1,"type":"sell","qty":3}]`,
	})

	report, _ := run(t, b)

	assert.False(t, report.LegacyTransactionsMoved)
	assert.Contains(t, report.Skipped, stepSplitTx)
	_, ok, _ := b.Get(backing.KeyLegacyTransactions)
	assert.True(t, ok)
}

func TestRun_WriteFailureIsReported(t *testing.T) {
	b := seed(t, map[string]string{
		backing.KeyLegacyTransactions: `[{"id":1,"type":"sell","qty":3,"name":"a long enough name to overflow"}]`,
	})
	b.SetCapacity(60)

	report, err := New(b, logging.NewMockLogger()).Run()

	require.Error(t, err)
	assert.ErrorIs(t, err, backing.ErrQuotaExceeded)
	assert.False(t, report.LegacyTransactionsMoved)
	_, ok, _ := b.Get(backing.KeyLegacyTransactions)
	assert.True(t, ok, "legacy list is kept for a retry")
}
