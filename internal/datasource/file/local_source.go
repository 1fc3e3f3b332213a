// Package file implements a local filesystem-backed data source plus the
// default-input resolution rule used by the command line.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a filesystem data source bound to a single path.
type Local struct{ path string }

// NewLocal returns a Local data source for the provided path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the configured path for reading.
//
// A context that is already canceled or past its deadline short-circuits
// before touching the filesystem. Filesystem errors are wrapped with the path
// for context while keeping errors.Is(err, os.ErrNotExist) usable by callers;
// that check is how the command line distinguishes a missing input file from
// every other failure.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// ResolveDefault picks the input path when the user supplied none: name under
// dir if it exists, otherwise name under dir's parent, otherwise name itself
// (whose absence will then surface as the open error with guidance).
func ResolveDefault(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	parent := filepath.Join(dir, "..", name)
	if _, err := os.Stat(parent); err == nil {
		return parent
	}
	return name
}
