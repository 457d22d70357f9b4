// Package tokenstore provides expiry-aware key/value persistence for
// authentication credentials. Entries are namespaced by a configurable
// prefix so a store can share an underlying medium with unrelated data.
//
// Expiry is lazy: an expired entry is deleted as a side effect of the
// read that discovers it. There is no background sweep.
package tokenstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no live entry exists for a key,
// either because it was never set or because it expired.
var ErrNotFound = errors.New("tokenstore: not found")

// DefaultPrefix namespaces entries written by a store unless overridden.
const DefaultPrefix = "janua."

// Store is the narrow persistence interface the token manager works
// against. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key. If the entry carries an expiry that
	// has passed, the entry is removed and ErrNotFound is returned.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting unconditionally. A zero
	// expiresAt means the entry never expires.
	Set(ctx context.Context, key, value string, expiresAt time.Time) error

	// Remove deletes the entry for key. Removing an absent key is not an
	// error.
	Remove(ctx context.Context, key string) error

	// Clear removes every entry in this store's namespace. Data outside
	// the namespace is untouched.
	Clear(ctx context.Context) error
}
