// Package kv defines the key-value persistence contract and its
// file-backed implementation. Values are JSON blobs addressed by
// logical keys; there are no transactional semantics across keys.
package kv

import "context"

// Well-known logical keys.
const (
	LedgerKey      = "ledger"
	PreferencesKey = "preferences"
)

// Store provides read/write/delete access to JSON blobs by key.
type Store interface {
	// ReadJSON unmarshals the value at key into into.
	// Returns ErrNotFound when the key has never been written.
	ReadJSON(ctx context.Context, key string, into any) error

	// WriteJSON marshals v and stores it at key, replacing any
	// previous value.
	WriteJSON(ctx context.Context, key string, v any) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
