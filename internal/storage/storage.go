package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the slot has never been written.
var ErrNotFound = errors.New("slot not found")

// Storage is a durable key-value store of opaque slot payloads. Put replaces
// the whole payload; there is no partial update.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
