package migrate

import (
	"encoding/json"
	"strings"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
)

const (
	stepCatalogEntries = "catalog-entries"
	stepSplitTx        = "split-transactions"
	stepSplitCatalog   = "split-catalog"
	stepRenameRoles    = "rename-roles"
	stepEnforceRoles   = "enforce-roles"
	stepTraders        = "trader-shape"
)

// upgradeCatalogEntries rewrites size-only product lists (["6 inch", ...])
// into priced entries. The check is per product.
func (m *Migrator) upgradeCatalogEntries(report *Report) {
	for _, key := range []string{backing.KeyLegacyCatalog, backing.KeyCatalogSell, backing.KeyCatalogBuy} {
		var catalog map[string][]json.RawMessage
		if !m.read(key, stepCatalogEntries, &catalog, report) {
			continue
		}

		upgraded := 0
		for product, items := range catalog {
			if len(items) == 0 || !isJSONString(items[0]) {
				continue
			}
			for i, item := range items {
				var size string
				if json.Unmarshal(item, &size) != nil {
					continue
				}
				entry, _ := json.Marshal(models.CatalogEntry{Size: size})
				items[i] = entry
			}
			catalog[product] = items
			upgraded++
		}
		if upgraded == 0 {
			continue
		}
		if m.write(key, catalog) {
			report.CatalogProductsUpgraded += upgraded
			m.logger.WithFields(
				logging.F(logging.FieldKey, key),
				logging.F(logging.FieldCount, upgraded),
			).Info("Upgraded size-only catalog products")
		}
	}
}

// routeKey returns the direction a raw record belongs to, from "direction"
// or the older "type" field.
func routeKey(fields map[string]json.RawMessage) models.Direction {
	for _, name := range []string{"direction", "type"} {
		var v string
		if json.Unmarshal(fields[name], &v) != nil {
			continue
		}
		if d := models.Direction(strings.ToLower(strings.TrimSpace(v))); d.Valid() {
			return d
		}
	}
	return ""
}

// recordID is the id used for duplicate detection: the canonical TxID when
// the stored id is numeric, the raw text otherwise.
func recordID(raw json.RawMessage) string {
	var id models.TxID
	if json.Unmarshal(raw, &id) == nil {
		return id.String()
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(string(raw))
}

// splitTransactions moves the unified transaction list into the sales and
// purchase collections. Records are routed by direction alone and copied
// verbatim. A record whose id is already present in its target collection is
// not copied again. Records without a direction stay in the legacy list.
func (m *Migrator) splitTransactions(report *Report) {
	var legacy []json.RawMessage
	if !m.read(backing.KeyLegacyTransactions, stepSplitTx, &legacy, report) || len(legacy) == 0 {
		return
	}

	targets := map[models.Direction]*splitTarget{
		models.Sell: {key: backing.KeySales},
		models.Buy:  {key: backing.KeyPurchases},
	}
	for _, target := range targets {
		if !target.load(m, report) {
			return
		}
	}

	unrouted := []json.RawMessage{}
	for _, raw := range legacy {
		var fields map[string]json.RawMessage
		if json.Unmarshal(raw, &fields) != nil {
			unrouted = append(unrouted, raw)
			continue
		}
		target, ok := targets[routeKey(fields)]
		if !ok {
			unrouted = append(unrouted, raw)
			continue
		}
		id := recordID(fields["id"])
		if target.ids[id] {
			report.DuplicatesSkipped++
			continue
		}
		target.records = append(target.records, raw)
		target.ids[id] = true
		target.added++
	}

	for dir, target := range targets {
		if target.added == 0 {
			continue
		}
		if !m.write(target.key, target.records) {
			// Keep the legacy list so the next load can retry.
			return
		}
		if dir == models.Sell {
			report.SalesMerged = target.added
		} else {
			report.PurchasesMerged = target.added
		}
	}

	if len(unrouted) > 0 {
		report.Unrouted = len(unrouted)
		m.logger.WithField(logging.FieldCount, len(unrouted)).
			Warn("Legacy transactions without a direction were left in the legacy list")
		if len(unrouted) < len(legacy) {
			m.write(backing.KeyLegacyTransactions, unrouted)
		}
	} else {
		m.remove(backing.KeyLegacyTransactions)
		report.LegacyTransactionsMoved = true
	}
	if report.SalesMerged+report.PurchasesMerged > 0 || report.LegacyTransactionsMoved {
		m.logger.WithFields(
			logging.F("sales", report.SalesMerged),
			logging.F("purchases", report.PurchasesMerged),
			logging.F("duplicates", report.DuplicatesSkipped),
		).Info("Merged legacy transactions into sales and purchases")
	}
}

type splitTarget struct {
	key     string
	records []json.RawMessage
	ids     map[string]bool
	added   int
}

func (t *splitTarget) load(m *Migrator, report *Report) bool {
	t.ids = make(map[string]bool)
	data, ok, err := m.backend.Get(t.key)
	if err != nil {
		m.skip(t.key, stepSplitTx, err, report)
		return false
	}
	if !ok {
		t.records = []json.RawMessage{}
		return true
	}
	if err := json.Unmarshal(data, &t.records); err != nil {
		m.skip(t.key, stepSplitTx, err, report)
		return false
	}
	for _, raw := range t.records {
		var fields map[string]json.RawMessage
		if json.Unmarshal(raw, &fields) == nil {
			t.ids[recordID(fields["id"])] = true
		}
	}
	return true
}

// splitCatalog copies the unified catalog into the sales catalog. It only runs
// while the sales catalog key has never been written, which tells "never
// migrated" apart from "migrated and then emptied".
func (m *Migrator) splitCatalog(report *Report) {
	legacyData, ok, err := m.backend.Get(backing.KeyLegacyCatalog)
	if err != nil {
		m.skip(backing.KeyLegacyCatalog, stepSplitCatalog, err, report)
		return
	}
	if !ok {
		return
	}
	var legacy map[string]json.RawMessage
	if err := json.Unmarshal(legacyData, &legacy); err != nil {
		m.skip(backing.KeyLegacyCatalog, stepSplitCatalog, err, report)
		return
	}
	if len(legacy) == 0 {
		return
	}
	_, sellWritten, err := m.backend.Get(backing.KeyCatalogSell)
	if err != nil {
		m.skip(backing.KeyCatalogSell, stepSplitCatalog, err, report)
		return
	}
	if sellWritten {
		return
	}

	if err := m.backend.Set(backing.KeyCatalogSell, legacyData); err != nil {
		m.logger.WithError(err).WithField(logging.FieldKey, backing.KeyCatalogSell).Error("Failed to write migrated data")
		m.writeErrs = append(m.writeErrs, err)
		return
	}
	_, buyWritten, err := m.backend.Get(backing.KeyCatalogBuy)
	if err == nil && !buyWritten {
		m.write(backing.KeyCatalogBuy, m.buyDefault)
	}
	m.remove(backing.KeyLegacyCatalog)
	report.CatalogSplit = true
	m.logger.WithField(logging.FieldCount, len(legacy)).Info("Split unified catalog into sales and purchase catalogs")
}

type userRecord map[string]json.RawMessage

func (u userRecord) role() models.Role {
	var role string
	_ = json.Unmarshal(u["role"], &role)
	return models.Role(role)
}

// renameRoles replaces the retired Master role with Technical Team.
func (m *Migrator) renameRoles(report *Report) {
	var users []userRecord
	if !m.read(backing.KeyUsers, stepRenameRoles, &users, report) {
		return
	}
	renamed := 0
	for _, u := range users {
		if u.role() == models.RoleMaster {
			u["role"], _ = json.Marshal(models.RoleTechnicalTeam)
			renamed++
		}
	}
	if renamed > 0 && m.write(backing.KeyUsers, users) {
		report.RolesRenamed = renamed
		m.logger.WithField(logging.FieldCount, renamed).Info("Migrated legacy Master users to Technical Team")
	}
}

// enforceRoles drops users whose role is no longer recognised. It is an
// integrity sweep and runs on every load.
func (m *Migrator) enforceRoles(report *Report) {
	var users []userRecord
	if !m.read(backing.KeyUsers, stepEnforceRoles, &users, report) {
		return
	}
	kept := make([]userRecord, 0, len(users))
	for _, u := range users {
		if u.role().Recognized() {
			kept = append(kept, u)
		}
	}
	removed := len(users) - len(kept)
	if removed > 0 && m.write(backing.KeyUsers, kept) {
		report.UsersRemoved = removed
		m.logger.WithField(logging.FieldCount, removed).Warn("Removed users with unrecognised roles")
	}
}

// upgradeTraders folds bare contact strings into structured traders. The type
// is Dealer when the name appears on any purchase, Customer otherwise.
func (m *Migrator) upgradeTraders(report *Report) {
	var traders map[string]json.RawMessage
	if !m.read(backing.KeyTraders, stepTraders, &traders, report) {
		return
	}

	var legacyNames []string
	for name, raw := range traders {
		if isJSONString(raw) {
			legacyNames = append(legacyNames, name)
		}
	}
	if len(legacyNames) == 0 {
		return
	}

	dealers := make(map[string]bool)
	var purchases []struct {
		Name string `json:"name"`
	}
	if m.read(backing.KeyPurchases, stepTraders, &purchases, report) {
		for _, p := range purchases {
			dealers[p.Name] = true
		}
	}

	for _, name := range legacyNames {
		var contact string
		_ = json.Unmarshal(traders[name], &contact)
		t := models.Trader{Contact: contact, Type: models.Customer}
		if dealers[name] {
			t.Type = models.Dealer
		}
		traders[name], _ = json.Marshal(t)
	}
	if m.write(backing.KeyTraders, traders) {
		report.TradersUpgraded = len(legacyNames)
		m.logger.WithField(logging.FieldCount, len(legacyNames)).Info("Upgraded legacy trader contacts")
	}
}

func isJSONString(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return true
		default:
			return false
		}
	}
	return false
}
