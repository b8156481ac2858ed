// Package backup exports the raw ledger documents to a single JSON file and
// restores them. It talks to the backend directly; after an import or reset
// the store must be reloaded.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"uhb/trade-ledger/internal/backing"
	"uhb/trade-ledger/internal/dateutils"
	"uhb/trade-ledger/internal/fileutils"
	"uhb/trade-ledger/internal/ledgererror"
	"uhb/trade-ledger/internal/logging"
)

// ErrCancelled is returned when the confirmation callback declines.
var ErrCancelled = ledgererror.ErrImportCancelled

// Document maps storage keys to their raw serialized values.
type Document map[string]string

// Keys returns the document's keys in lexical order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode renders the document as indented JSON.
func (d Document) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// FileName is the conventional name of a backup taken on date.
func FileName(date time.Time) string {
	return fmt.Sprintf("UHB_Backup_%s.json", dateutils.ToISODate(date))
}

// Parse decodes and validates a backup. The top level must be an object of
// strings and every non-empty string must itself be JSON.
func Parse(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ledgererror.InvalidBackupError{Reason: "not a JSON object"}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &ledgererror.InvalidBackupError{Reason: "malformed JSON", Err: err}
	}

	doc := make(Document, len(raw))
	for key, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, &ledgererror.InvalidBackupError{Reason: fmt.Sprintf("value of %s is not a string", key), Err: err}
		}
		if s != "" && !json.Valid([]byte(s)) {
			return nil, &ledgererror.InvalidBackupError{Reason: fmt.Sprintf("value of %s is not valid JSON", key)}
		}
		doc[key] = s
	}
	return doc, nil
}

// Manager runs backup operations against one backend.
type Manager struct {
	backend backing.Backend
	logger  logging.Logger
}

// NewManager returns a Manager. A nil logger discards output.
func NewManager(backend backing.Backend, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{backend: backend, logger: logger}
}

// Export collects every populated ledger key, current and legacy.
func (m *Manager) Export() (Document, error) {
	doc := make(Document)
	for _, key := range backing.KnownKeys() {
		v, ok, err := m.backend.Get(key)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", key, err)
		}
		if ok && len(v) > 0 {
			doc[key] = string(v)
		}
	}
	m.logger.WithField(logging.FieldCount, len(doc)).Info("Exported backup")
	return doc, nil
}

// ExportToFile writes Export's document to dir/FileName(now) and returns the path.
func (m *Manager) ExportToFile(dir string, now time.Time) (string, error) {
	doc, err := m.Export()
	if err != nil {
		return "", err
	}
	data, err := doc.Encode()
	if err != nil {
		return "", fmt.Errorf("error encoding backup: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	if err := fileutils.WriteFileAtomic(path, data, 0600); err != nil {
		return "", fmt.Errorf("error writing backup: %w", err)
	}
	m.logger.WithFields(
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldBytes, len(data)),
	).Info("Backup written")
	return path, nil
}

// Import replaces the ledger data with doc once confirm agrees. Every known
// key is cleared first, then the document's non-empty values are written
// verbatim. Keys the ledger does not know are ignored. A nil confirm counts
// as yes.
func (m *Manager) Import(doc Document, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return ErrCancelled
	}
	if err := m.clear(); err != nil {
		return err
	}

	written := 0
	for _, key := range doc.Keys() {
		value := doc[key]
		if value == "" {
			continue
		}
		if !backing.IsKnownKey(key) {
			m.logger.WithField(logging.FieldKey, key).Warn("Ignoring unknown key in backup")
			continue
		}
		if err := m.backend.Set(key, []byte(value)); err != nil {
			return fmt.Errorf("error restoring %s: %w", key, err)
		}
		written++
	}
	m.logger.WithField(logging.FieldCount, written).Info("Backup restored")
	return nil
}

// ImportFile parses path and imports it. A corrupt file is rejected before
// confirm is asked and leaves the backend untouched.
func (m *Manager) ImportFile(path string, confirm func() bool) error {
	if !fileutils.FileExists(path) {
		return fmt.Errorf("backup file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading backup: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		m.logger.WithError(err).WithField(logging.FieldInputFile, path).Error("Invalid backup file")
		return err
	}
	return m.Import(doc, confirm)
}

// Reset deletes every ledger key once confirm agrees.
func (m *Manager) Reset(confirm func() bool) error {
	if confirm != nil && !confirm() {
		return ErrCancelled
	}
	if err := m.clear(); err != nil {
		return err
	}
	m.logger.Warn("Ledger data reset")
	return nil
}

func (m *Manager) clear() error {
	for _, key := range backing.KnownKeys() {
		if err := m.backend.Delete(key); err != nil {
			return fmt.Errorf("error clearing %s: %w", key, err)
		}
	}
	return nil
}
