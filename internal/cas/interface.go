package cas

import (
	"context"
	"io"
)

// PutResult describes one persisted original payload.
type PutResult struct {
	CID       string
	SizeBytes int64
	Key       string
}

// Store is the byte-storage abstraction used at ingestion to retain the
// original file content addressed by its CID.
type Store interface {
	Put(ctx context.Context, r io.Reader) (PutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
