// Package cache provides the short-code lookup cache.
package cache

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// Cache Interface
// =============================================================================

// ErrUnavailable is returned when the cache backend cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// DefaultTTL is how long a resolved code stays cached.
const DefaultTTL = 60 * time.Second

// Cache stores code to original URL mappings. Lookups are best-effort: a
// miss or backend failure falls back to the store. Entries expire after the
// configured TTL, which bounds staleness if an invalidation is lost.
type Cache interface {
	// GetOriginal returns the cached original URL for a code.
	// found is false on a miss.
	GetOriginal(ctx context.Context, code string) (original string, found bool, err error)

	// SetOriginal caches the original URL for a code with the configured TTL.
	SetOriginal(ctx context.Context, code, original string) error

	// Invalidate drops the cached entry for a code.
	Invalidate(ctx context.Context, code string) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
