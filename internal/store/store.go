// Package store holds the authoritative in-memory copy of every ledger
// collection and writes each change straight through to a backing.Backend.
package store

import (
	"encoding/json"
	"errors"
	"time"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/ledger"
	"uhb/trade-ledger/internal/ledgererror"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/migrate"
	"uhb/trade-ledger/internal/models"
)

// Store is the single owner of ledger data for one process.
//
// Mutators update memory and then save the touched collections before they
// return. Accessors return copies, so changing a returned value never reaches
// storage. A Store is not safe for concurrent use, and two processes must never
// share one backend.
type Store struct {
	backend  backing.Backend
	logger   logging.Logger
	defaults *Defaults
	ids      *models.IDGenerator
	lowStock int

	sales          []models.Transaction
	purchases      []models.Transaction
	catalogSell    models.Catalog
	catalogBuy     models.Catalog
	traders        models.Traders
	users          []models.User
	thresholds     models.Thresholds
	passRequests   []models.PassChangeRequest
	signupRequests []models.SignupRequest

	// UI state, never persisted.
	activeDirection models.Direction
	dateFilter      dateutils.Period

	lastReport *migrate.Report

	// unreadable holds keys that failed to load. They hold defaults in memory
	// and are never written back until a mutator changes them.
	unreadable map[string]bool
	// pending holds keys whose last save failed; Close retries them.
	pending map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaults replaces the built-in seed data.
func WithDefaults(d *Defaults) Option {
	return func(s *Store) {
		if d != nil {
			s.defaults = d
		}
	}
}

// WithClock drives transaction ids from now instead of the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.ids = models.NewIDGeneratorWithClock(now)
	}
}

// WithLowStockDefault sets the alert level used for items without a threshold.
func WithLowStockDefault(level int) Option {
	return func(s *Store) {
		if level > 0 {
			s.lowStock = level
		}
	}
}

// Open migrates the backend's data to the current schema and loads it.
// Unreadable collections fall back to their defaults and are logged; Open only
// fails when backend is nil.
func Open(backend backing.Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, errors.New("store: nil backend")
	}
	s := &Store{
		backend:         backend,
		logger:          logging.Nop(),
		ids:             models.NewIDGenerator(),
		lowStock:        ledger.DefaultLowStock,
		activeDirection: models.Sell,
		dateFilter:      dateutils.DefaultPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaults == nil {
		s.defaults = BuiltinDefaults()
	}
	s.load()
	return s, nil
}

// Reload re-runs the migrator and re-reads every collection. It is needed
// after the backend was changed behind the store's back, e.g. by a restore.
// UI state is kept.
func (s *Store) Reload() {
	s.load()
}

// MigrationReport returns what the last load migrated.
func (s *Store) MigrationReport() *migrate.Report {
	return s.lastReport
}

func (s *Store) load() {
	s.unreadable = make(map[string]bool)
	s.pending = make(map[string]bool)

	m := migrate.New(s.backend, s.logger, migrate.WithBuyCatalogDefault(s.defaults.CatalogBuy))
	report, err := m.Run()
	if err != nil {
		s.logger.WithError(err).Error("Schema migration did not complete")
	}
	s.lastReport = report

	s.sales = loadValue(s, backing.KeySales, []models.Transaction{})
	s.purchases = loadValue(s, backing.KeyPurchases, []models.Transaction{})
	s.catalogSell = loadValue(s, backing.KeyCatalogSell, s.defaults.CatalogSell.Clone())
	s.catalogBuy = loadValue(s, backing.KeyCatalogBuy, s.defaults.CatalogBuy.Clone())
	s.traders = loadValue(s, backing.KeyTraders, s.defaults.Traders.Clone())
	s.users = loadValue(s, backing.KeyUsers, []models.User{})
	s.thresholds = loadValue(s, backing.KeyThresholds, models.Thresholds{})
	s.passRequests = loadValue(s, backing.KeyPassRequests, []models.PassChangeRequest{})
	s.signupRequests = loadValue(s, backing.KeySignupRequests, []models.SignupRequest{})

	normalizeDirections(s.sales, models.Sell)
	normalizeDirections(s.purchases, models.Buy)
	for _, t := range s.sales {
		s.ids.Observe(t.ID)
	}
	for _, t := range s.purchases {
		s.ids.Observe(t.ID)
	}

	s.logger.WithFields(
		logging.F("sales", len(s.sales)),
		logging.F("purchases", len(s.purchases)),
		logging.F("traders", len(s.traders)),
		logging.F("users", len(s.users)),
	).Debug("Loaded ledger data")
}

// loadValue decodes key, or returns def when the key is absent or unreadable.
// A JSON null counts as absent.
func loadValue[T any](s *Store, key string, def T) T {
	data, ok, err := s.backend.Get(key)
	if err != nil {
		s.logLoadFailure(key, err)
		return def
	}
	if !ok || string(data) == "null" {
		return def
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.logLoadFailure(key, err)
		return def
	}
	return v
}

func (s *Store) logLoadFailure(key string, err error) {
	s.unreadable[key] = true
	loadErr := &ledgererror.LoadError{Key: key, Err: err}
	s.logger.WithError(loadErr).WithField(logging.FieldKey, key).
		Error("CRITICAL: data load failed, using defaults")
}

// normalizeDirections fills in the direction implied by the collection a
// record was stored in.
func normalizeDirections(txs []models.Transaction, dir models.Direction) {
	for i := range txs {
		if !txs[i].Direction.Valid() {
			txs[i].Direction = dir
		}
	}
}

// Close retries the saves that failed earlier and closes the backend.
// Collections that were only read are not written.
func (s *Store) Close() error {
	var keys []string
	for _, key := range backing.CurrentKeys {
		if s.pending[key] {
			keys = append(keys, key)
		}
	}
	warn := s.save(keys...)
	if err := s.backend.Close(); err != nil {
		return err
	}
	return warn
}

// ActiveDirection is the direction used when a caller passes none.
func (s *Store) ActiveDirection() models.Direction {
	return s.activeDirection
}

// SetActiveDirection switches the dashboard between sales and purchases.
// Invalid values are ignored.
func (s *Store) SetActiveDirection(d models.Direction) {
	if d.Valid() {
		s.activeDirection = d
	}
}

// DateFilter is the dashboard period.
func (s *Store) DateFilter() dateutils.Period {
	return s.dateFilter
}

// SetDateFilter changes the dashboard period.
func (s *Store) SetDateFilter(p dateutils.Period) {
	s.dateFilter = p
}

func (s *Store) direction(d models.Direction) models.Direction {
	return d.Or(s.activeDirection)
}
