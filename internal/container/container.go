// Package container wires the application's dependencies: configuration,
// logger, storage backend, store, backup manager and report writer.
package container

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/backup"
	"uhb/trade-ledger/internal/config"
	"uhb/trade-ledger/internal/logging"
	"uhb/trade-ledger/internal/report"
	"uhb/trade-ledger/internal/store"
)

// Container holds all application dependencies. It is immutable after
// creation; dependencies are reached through getters.
type Container struct {
	logger  logging.Logger
	config  *config.Config
	runID   string
	backend backing.Backend
	store   *store.Store
	backup  *backup.Manager
	report  *report.Writer
}

// Option adjusts how NewContainer builds dependencies.
type Option func(*options)

type options struct {
	logOutput io.Writer
	backend   backing.Backend
}

// WithLogOutput sends log output to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithBackend uses b instead of opening the configured backend. The
// container takes ownership and closes it.
func WithBackend(b backing.Backend) Option {
	return func(o *options) { o.backend = b }
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	runID := uuid.NewString()
	logger := logging.NewLogrusAdapterTo(o.logOutput, cfg.Log.Level, cfg.Log.Format).
		WithField(logging.FieldRunID, runID)

	defaults, err := store.LoadDefaults(cfg.Catalog.DefaultsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog defaults: %w", err)
	}

	backend := o.backend
	if backend == nil {
		backend, err = backing.Open(cfg.Kind(), cfg.StoragePath(), cfg.Storage.CapacityBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Kind(), err)
		}
	}

	st, err := store.Open(backend,
		store.WithLogger(logger),
		store.WithDefaults(defaults),
		store.WithLowStockDefault(cfg.Inventory.LowStockDefault),
	)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	logger.Debug("Container initialized",
		logging.F(logging.FieldBackend, cfg.Storage.Backend),
		logging.F("path", cfg.StoragePath()))

	return &Container{
		logger:  logger,
		config:  cfg,
		runID:   runID,
		backend: backend,
		store:   st,
		backup:  backup.NewManager(backend, logger),
		report:  report.NewWriter(cfg.Delimiter(), logger),
	}, nil
}

// GetLogger returns the container's logger, tagged with the run id.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the configuration the container was built from.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// RunID identifies this invocation in the logs.
func (c *Container) RunID() string {
	return c.runID
}

// GetBackend returns the raw key-value backend.
func (c *Container) GetBackend() backing.Backend {
	return c.backend
}

// GetStore returns the ledger store.
func (c *Container) GetStore() *store.Store {
	return c.store
}

// GetBackup returns the backup manager. After an import or reset the store
// must be reloaded.
func (c *Container) GetBackup() *backup.Manager {
	return c.backup
}

// GetReportWriter returns the CSV writer configured with the CSV delimiter.
func (c *Container) GetReportWriter() *report.Writer {
	return c.report
}

// Close flushes the store and releases the backend.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
