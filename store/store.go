// Package store defines the persistent key-value store backing the client
// session, together with an in-memory implementation for tests and a
// Redis-backed implementation for production. The store is deliberately dumb:
// all namespacing and session semantics live above it in the session package.
package store

import "context"

// EventOp is the kind of mutation a store event describes.
type EventOp string

const (
	OpSet    EventOp = "set"
	OpDelete EventOp = "delete"
)

// Event describes a single store mutation. Watchers in other tabs use these to
// re-resolve session state instead of requiring a manual reload.
type Event struct {
	ID    string  `json:"id"`
	Op    EventOp `json:"op"`
	Key   string  `json:"key"`
	Value string  `json:"value,omitempty"`
}

// Store is the shared persistent key-value store. Implementations must treat
// keys as opaque strings and never interpret values.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns all stored keys that begin with prefix. An empty prefix
	// returns every key.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Watch delivers mutation events until ctx is canceled. Delivery is
	// best-effort: a slow consumer may miss events but never blocks writers.
	Watch(ctx context.Context) (<-chan Event, error)
	// Close releases any resources held by the store.
	Close() error
}
