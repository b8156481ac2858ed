package backing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"uhb/trade-ledger/internal/fileutils"
)

const fileExt = ".json"

// File stores one <key>.json file per key inside a directory.
type File struct {
	dir      string
	capacity int64
}

// NewFile creates dir if needed and returns a File backend rooted there.
func NewFile(dir string, capacity int64) (*File, error) {
	if dir == "" {
		return nil, fmt.Errorf("file backend needs a directory")
	}
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, fmt.Errorf("error preparing data directory: %w", err)
	}
	return &File{dir: dir, capacity: capacity}, nil
}

// Dir returns the data directory.
func (f *File) Dir() string {
	return f.dir
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

// Get implements Backend.
func (f *File) Get(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading %s: %w", key, err)
	}
	return data, true, nil
}

// Set implements Backend.
func (f *File) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if f.capacity > 0 {
		used, err := fileutils.DirectorySize(f.dir, fileExt)
		if err != nil {
			return err
		}
		if info, err := os.Stat(f.path(key)); err == nil {
			used -= info.Size()
		}
		if used+int64(len(value)) > f.capacity {
			return quotaError(key, used, int64(len(value)), f.capacity)
		}
	}
	if err := fileutils.WriteFileAtomic(f.path(key), value, 0600); err != nil {
		if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
			return fmt.Errorf("writing %s: %v: %w", key, err, ErrQuotaExceeded)
		}
		return fmt.Errorf("error writing %s: %w", key, err)
	}
	return nil
}

// Delete implements Backend.
func (f *File) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error deleting %s: %w", key, err)
	}
	return nil
}

// Keys implements Backend.
func (f *File) Keys() ([]string, error) {
	files, err := fileutils.ListFilesWithExtension(f.dir, fileExt)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(files))
	for _, file := range files {
		keys = append(keys, strings.TrimSuffix(filepath.Base(file), fileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (f *File) Close() error {
	return nil
}
