// Package cache stores rendered flame graphs so repeated renders of the same
// trace with the same deterministic options skip layout and serialization.
//
// Two backends are provided: [FileCache] for the CLI, keeping entries as
// JSON files under the user cache directory, and [NullCache] for
// --no-cache runs and tests. Keys come from a [Keyer] and are derived from
// the SHA-256 of the trace bytes plus every option that changes the output.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a rendered artifact stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was found. An expired or
	// corrupt entry is reported as a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
