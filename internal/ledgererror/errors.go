// Package ledgererror defines the typed errors the ledger reports to callers.
package ledgererror

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned by a backend when it has no room left for a write.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// ErrImportCancelled is returned when the user declines to overwrite data with a backup.
var ErrImportCancelled = errors.New("import cancelled")

// SaveError reports that a collection could not be written to durable storage.
// The in-memory state is still correct; only data since the last good save is
// at risk if the process exits.
type SaveError struct {
	Key string
	Err error
}

func (e *SaveError) Error() string {
	if e.IsQuota() {
		return fmt.Sprintf("storage full, cannot save %s: export a backup and clear old data", e.Key)
	}
	return fmt.Sprintf("failed to save %s: %v", e.Key, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// IsQuota reports whether the save failed because storage is full.
func (e *SaveError) IsQuota() bool {
	return errors.Is(e.Err, ErrQuotaExceeded)
}

// LoadError describes a collection that could not be read and was replaced by
// its default value.
type LoadError struct {
	Key string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Key, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// InvalidBackupError means a backup document is structurally unusable. Nothing
// has been written when it is returned.
type InvalidBackupError struct {
	Reason string
	Err    error
}

func (e *InvalidBackupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid backup: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid backup: %s", e.Reason)
}

func (e *InvalidBackupError) Unwrap() error {
	return e.Err
}

// IsInvalidBackup reports whether err is or wraps an InvalidBackupError.
func IsInvalidBackup(err error) bool {
	var target *InvalidBackupError
	return errors.As(err, &target)
}

// IsQuota reports whether err is or wraps ErrQuotaExceeded.
func IsQuota(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
