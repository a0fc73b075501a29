package storage

import (
	"context"
	"errors"
)

// Store is durable key-value persistence for client-side state.
// Consumers decide the degradation policy, the store reports errors as-is.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")
