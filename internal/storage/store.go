// Package storage defines the interface for the rendered-image cache
// tier. This abstraction keeps the edge independent of a specific backing
// store (in-memory for development and tests, a cloud bucket in
// production).
package storage

import "context"

// Store is a byte store keyed by normalized request URL.
type Store interface {
	// Get returns the stored bytes for a key and whether they were found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores bytes under a key. Implementations must only ever see
	// completed responses; partial writes must not be observable.
	Put(ctx context.Context, key string, data []byte) error
}

// NoOpStore stores nothing and never hits. It is useful for disabling the
// image tier in tests.
type NoOpStore struct{}

// Get always misses.
func (NoOpStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Put discards the data.
func (NoOpStore) Put(context.Context, string, []byte) error {
	return nil
}
