// Package datasource abstracts where input tables are read from. The
// pipeline depends only on Source, so tests can feed in-memory readers and
// future sources (HTTP, object storage) slot in without touching the stages.
package datasource

import (
	"context"
	"io"
)

// Source yields a readable stream of delimited input data.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
