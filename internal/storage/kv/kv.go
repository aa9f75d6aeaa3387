// Package kv is the namespaced local key-value store the client persists into.
package kv

import "context"

// Namespace prefixes every key the client writes.
const Namespace = "fittrack"

// Key returns the namespaced key for name.
func Key(name string) string {
	return Namespace + "/" + name
}

// Store is a string key-value store. Get reports ok=false for absent keys.
// Failures are returned as *model.StorageError.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}
