package staging

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is a per-run download directory. Release removes it with all contents.
type Dir struct {
	path string
	keep bool
}

// Acquire creates base if needed and a fresh run-* directory beneath it.
// With keep set, Release leaves the files on disk.
func Acquire(base string, keep bool) (*Dir, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create staging base %s: %w", base, err)
	}

	path, err := os.MkdirTemp(base, "run-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Dir{path: abs, keep: keep}, nil
}

// Path returns the absolute directory path.
func (d *Dir) Path() string {
	return d.path
}

// Release deletes the directory. Safe to call more than once.
func (d *Dir) Release() error {
	if d == nil || d.keep || d.path == "" {
		return nil
	}
	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("remove staging dir %s: %w", d.path, err)
	}
	return nil
}
