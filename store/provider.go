// Package store keeps the resources served by cmd/serve-buffer.
package store

import (
	"time"
)

// Provider stores resources under string keys.
// Keys are namespaced by prefix (see pkg/resource-key), so that several
// servers can share a store.
//
// Implementations must be thread-safe!
type Provider interface {
	// Keys calls the given callback for each key with the given prefix.
	// It calls the callback in order to enable very large lists of keys to be
	// processable (provider implementation might use paging, for instance).
	Keys(prefix string, cb func(string)) error
	// All returns all entries that have the specific key prefix.
	All(prefix string) ([]Entry, error)
	// Get returns the entry for the given key, if it exists.
	// It also returns a boolean indicating whether the entry was found.
	Get(key string) (Entry, bool, error)
	// Put stores the entry under its key, replacing any previous one.
	Put(entry Entry) error
	// Purge removes the entry for the given key.
	// Purging a missing key is not an error.
	Purge(key string) error
	// Has checks if the specified key exists in the store.
	Has(key string) bool
}

// Entry is a stored resource along with what it is served with.
type Entry struct {
	Key         string
	ContentType string
	ModifiedAt  time.Time
	ETag        string
	MaxAge      time.Duration
	Immutable   bool
	Bytes       []byte
}
