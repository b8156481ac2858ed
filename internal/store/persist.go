package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/ledgererror"
	"uhb/trade-ledger/internal/logging"
)

func (s *Store) value(key string) (interface{}, bool) {
	switch key {
	case backing.KeySales:
		return s.sales, true
	case backing.KeyPurchases:
		return s.purchases, true
	case backing.KeyCatalogSell:
		return s.catalogSell, true
	case backing.KeyCatalogBuy:
		return s.catalogBuy, true
	case backing.KeyTraders:
		return s.traders, true
	case backing.KeyUsers:
		return s.users, true
	case backing.KeyThresholds:
		return s.thresholds, true
	case backing.KeyPassRequests:
		return s.passRequests, true
	case backing.KeySignupRequests:
		return s.signupRequests, true
	default:
		return nil, false
	}
}

// Save writes the current value of one collection, named by its backing key.
// Use it after repairing data outside the mutators.
func (s *Store) Save(key string) error {
	if _, ok := s.value(key); !ok {
		return fmt.Errorf("unknown collection %q", key)
	}
	return s.save(key)
}

// Flush writes every collection except those that could not be read at
// load time, whose stored bytes are left alone.
func (s *Store) Flush() error {
	var keys []string
	for _, key := range backing.CurrentKeys {
		if s.unreadable[key] {
			s.logger.WithField(logging.FieldKey, key).Warn("Not overwriting unreadable collection")
			continue
		}
		keys = append(keys, key)
	}
	return s.save(keys...)
}

// save persists keys in order. A full backend yields a *ledgererror.SaveError
// the caller should show as a warning; memory keeps the new state either way.
// Any other failure is only logged.
func (s *Store) save(keys ...string) error {
	var warning error
	for _, key := range keys {
		v, _ := s.value(key)
		data, err := json.Marshal(v)
		if err == nil {
			err = s.backend.Set(key, data)
		}
		if err == nil {
			delete(s.unreadable, key)
			delete(s.pending, key)
			s.logger.WithFields(
				logging.F(logging.FieldKey, key),
				logging.F(logging.FieldBytes, len(data)),
			).Debug("Saved collection")
			continue
		}

		s.pending[key] = true
		saveErr := &ledgererror.SaveError{Key: key, Err: err}
		if errors.Is(err, backing.ErrQuotaExceeded) {
			s.logger.WithError(err).WithField(logging.FieldKey, key).
				Error("Storage full, cannot save data. Export a backup and clear old data")
			if warning == nil {
				warning = saveErr
			}
			continue
		}
		s.logger.WithError(err).WithField(logging.FieldKey, key).Error("Save failed")
	}
	return warning
}
