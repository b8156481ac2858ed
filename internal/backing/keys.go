package backing

// Keys of the current schema. The string values are shared with data written
// by earlier versions of the application and must never change.
const (
	KeySales          = "udt_sales_v3"
	KeyPurchases      = "udt_purchase_v3"
	KeyCatalogSell    = "udt_catalog_sales_v1"
	KeyCatalogBuy     = "udt_catalog_purchase_v1"
	KeyTraders        = "udt_traders_v2"
	KeyUsers          = "udt_users_v2"
	KeyThresholds     = "udt_thresholds_v2"
	KeyPassRequests   = "udt_pass_reqs_v2"
	KeySignupRequests = "udt_signup_reqs_v2"
)

// Legacy keys, read only by the migrator.
const (
	KeyLegacyTransactions = "udt_tx_v2"
	KeyLegacyCatalog      = "udt_catalog_v2"
)

// CurrentKeys lists the keys of the current schema.
var CurrentKeys = []string{
	KeySales,
	KeyPurchases,
	KeyCatalogSell,
	KeyCatalogBuy,
	KeyTraders,
	KeyUsers,
	KeyThresholds,
	KeyPassRequests,
	KeySignupRequests,
}

// LegacyKeys lists the keys retained only for migration.
var LegacyKeys = []string{KeyLegacyTransactions, KeyLegacyCatalog}

// KnownKeys returns current and legacy keys together. Backup, restore and
// reset only ever touch these.
func KnownKeys() []string {
	keys := make([]string, 0, len(CurrentKeys)+len(LegacyKeys))
	keys = append(keys, CurrentKeys...)
	return append(keys, LegacyKeys...)
}

// IsKnownKey reports whether key belongs to the ledger.
func IsKnownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}
