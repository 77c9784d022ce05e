package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const workDirPrefix = "musicbridge-"

// WorkDir is a request-scoped directory owning all files of one batch
type WorkDir struct {
	Path string
}

// NewWorkDir creates a uniquely named directory under base.
// An empty base means the system temp directory.
func NewWorkDir(base string) (*WorkDir, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory base: %w", err)
	}

	path := filepath.Join(base, workDirPrefix+uuid.New().String())
	if err := os.Mkdir(path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &WorkDir{Path: abs}, nil
}

// Cleanup removes each file, then the directory tree. It keeps going after
// a failure and returns every failure joined.
func (w *WorkDir) Cleanup(files []string) error {
	var errs []error
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", filepath.Base(file), err))
		}
	}
	if err := os.RemoveAll(w.Path); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove work directory: %w", err))
	}
	return errors.Join(errs...)
}
