// Package backing provides the durable key-value stores the ledger persists
// its collections into. Every value is a JSON document stored under a stable key.
package backing

import (
	"fmt"
	"strings"

	"uhb/trade-ledger/internal/ledgererror"
)

// ErrQuotaExceeded is returned (possibly wrapped) when a backend is full.
var ErrQuotaExceeded = ledgererror.ErrQuotaExceeded

// Backend is a durable string-keyed store. Implementations are used by a
// single process at a time and need not be safe for concurrent use.
type Backend interface {
	// Get returns the stored value. ok is false when the key was never written
	// or has been deleted.
	Get(key string) (value []byte, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys lists every stored key in lexical order.
	Keys() ([]string, error)
	// Close releases the underlying resources.
	Close() error
}

// Kind names a Backend implementation in configuration.
type Kind string

const (
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
	KindMemory Kind = "memory"
)

// ParseKind validates a configured backend name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindFile, KindSQLite, KindMemory:
		return k, nil
	default:
		return "", fmt.Errorf("unknown storage backend: %q (want file, sqlite or memory)", s)
	}
}

// Open builds the backend of the given kind. path is a directory for the file
// backend and a database file for sqlite; it is ignored for memory.
// capacity is a byte limit across all keys, 0 meaning unlimited.
func Open(kind Kind, path string, capacity int64) (Backend, error) {
	switch kind {
	case KindFile:
		return NewFile(path, capacity)
	case KindSQLite:
		return OpenSQLite(path, capacity)
	case KindMemory:
		return NewMemory(capacity), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", kind)
	}
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

func quotaError(key string, used, incoming, capacity int64) error {
	return fmt.Errorf("writing %s (%d bytes, %d of %d in use): %w", key, incoming, used, capacity, ErrQuotaExceeded)
}
