// Package persist provides backends for the session record: a local file, Postgres and Redis.
package persist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// File keeps each record in <dir>/<key>.json
type File struct {
	logger *zap.SugaredLogger
	dir    string
}

// NewFile returns a File backend rooted at dir, creating the directory when missing
func NewFile(logger *zap.SugaredLogger, dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}
	return &File{logger: logger, dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load reads the record stored under key
func (f *File) Load(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	f.logger.Debugf("Loaded record (%s) from %s", key, f.dir)

	return data, true, nil
}

// Save replaces the record stored under key.
// The data is written to a temporary file first so a crash never leaves a truncated record.
func (f *File) Save(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	// removing an already renamed file fails harmlessly
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		return err
	}

	f.logger.Debugf("Saved record (%s) to %s", key, f.dir)

	return nil
}

// Delete removes the record stored under key, a missing record is not an error
func (f *File) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
