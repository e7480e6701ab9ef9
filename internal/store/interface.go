package store

import "context"

// Store is a durable key/value store. Values are opaque strings and
// survive process restarts.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// has never been set or was removed.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Close() error
}
