// Package kv holds the key/value backends used to persist shiftpay
// documents: a BoltDB file, a Redis server, or process memory.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("key not found")

// Store is a flat namespace of byte values.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}
