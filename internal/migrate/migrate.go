// Package migrate upgrades persisted ledger data from earlier schema versions
// to the current one. It works on the raw documents in a backing.Backend and
// runs before the store loads anything.
//
// Every transform decides from the data itself whether it has work to do, so
// running the migrator again over already-migrated data changes nothing.
package migrate

import (
	"encoding/json"
	"errors"
	"fmt"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/models"
)

// Report counts what a Run changed.
type Report struct {
	CatalogProductsUpgraded int
	SalesMerged             int
	PurchasesMerged         int
	DuplicatesSkipped       int
	// Unrouted counts legacy records left in the legacy list for lack of a direction.
	Unrouted                int
	LegacyTransactionsMoved bool
	CatalogSplit            bool
	RolesRenamed            int
	UsersRemoved            int
	TradersUpgraded         int
	// Skipped names the transforms that could not run because their input was unreadable.
	Skipped []string
}

// Changed reports whether any stored document was rewritten.
func (r *Report) Changed() bool {
	return r.CatalogProductsUpgraded > 0 || r.SalesMerged > 0 || r.PurchasesMerged > 0 ||
		r.LegacyTransactionsMoved || r.CatalogSplit || r.RolesRenamed > 0 ||
		r.UsersRemoved > 0 || r.TradersUpgraded > 0
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithBuyCatalogDefault sets the purchase catalog written when the legacy
// unified catalog is split and no purchase catalog exists yet.
func WithBuyCatalogDefault(c models.Catalog) Option {
	return func(m *Migrator) {
		m.buyDefault = c.Clone()
	}
}

// Migrator applies the schema transforms to a backend.
type Migrator struct {
	backend    backing.Backend
	logger     logging.Logger
	buyDefault models.Catalog
	writeErrs  []error
}

// New returns a Migrator for backend. A nil logger discards output.
func New(backend backing.Backend, logger logging.Logger, opts ...Option) *Migrator {
	if logger == nil {
		logger = logging.Nop()
	}
	m := &Migrator{
		backend:    backend,
		logger:     logger,
		buyDefault: models.Catalog{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run applies every transform in order. Unreadable input makes the affected
// transform log an error and skip itself; it never stops the others.
// The returned error joins any failed writes and is informational.
func (m *Migrator) Run() (*Report, error) {
	m.writeErrs = nil
	report := &Report{}

	m.upgradeCatalogEntries(report)
	m.splitTransactions(report)
	m.splitCatalog(report)
	m.renameRoles(report)
	m.enforceRoles(report)
	m.upgradeTraders(report)

	if report.Changed() {
		m.logger.WithFields(
			logging.F("catalog_products", report.CatalogProductsUpgraded),
			logging.F("sales_merged", report.SalesMerged),
			logging.F("purchases_merged", report.PurchasesMerged),
			logging.F("catalog_split", report.CatalogSplit),
			logging.F("roles_renamed", report.RolesRenamed),
			logging.F("users_removed", report.UsersRemoved),
			logging.F("traders_upgraded", report.TradersUpgraded),
		).Info("Schema migration applied")
	} else {
		m.logger.Debug("Schema is current, nothing to migrate")
	}
	return report, errors.Join(m.writeErrs...)
}

// read decodes key into v. ok is false when the key is absent or unreadable;
// unreadable data is logged and reported as skipped under name.
func (m *Migrator) read(key, name string, v interface{}, report *Report) bool {
	data, ok, err := m.backend.Get(key)
	if err != nil {
		m.skip(key, name, err, report)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		m.skip(key, name, err, report)
		return false
	}
	return true
}

func (m *Migrator) skip(key, name string, err error, report *Report) {
	m.logger.WithError(err).WithFields(
		logging.F(logging.FieldKey, key),
		logging.F(logging.FieldMigration, name),
	).Error("Stored data is unreadable, skipping migration step")
	report.Skipped = append(report.Skipped, name)
}

func (m *Migrator) write(key string, v interface{}) bool {
	data, err := json.Marshal(v)
	if err == nil {
		err = m.backend.Set(key, data)
	}
	if err != nil {
		m.logger.WithError(err).WithField(logging.FieldKey, key).Error("Failed to write migrated data")
		m.writeErrs = append(m.writeErrs, fmt.Errorf("writing %s: %w", key, err))
		return false
	}
	return true
}

func (m *Migrator) remove(key string) {
	if err := m.backend.Delete(key); err != nil {
		m.logger.WithError(err).WithField(logging.FieldKey, key).Error("Failed to remove legacy key")
		m.writeErrs = append(m.writeErrs, fmt.Errorf("deleting %s: %w", key, err))
	}
}
