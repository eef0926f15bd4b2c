package store

import (
	"context"
	"time"

	"github.com/igorobed/hw3-api/internal/core/shorturl"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for short links.
type Store interface {
	// CreateLink inserts a new link. Returns ErrDuplicateCode when the short
	// code is already taken.
	CreateLink(ctx context.Context, link *shorturl.Link) error

	// GetLink returns the link for a short code.
	GetLink(ctx context.Context, code string) (*shorturl.Link, error)

	// FindByOriginal returns all links registered for an original URL,
	// oldest first.
	FindByOriginal(ctx context.Context, original string) ([]shorturl.Link, error)

	// UpdateOriginal replaces the original URL of a link and returns the
	// updated record.
	UpdateOriginal(ctx context.Context, code, original string) (*shorturl.Link, error)

	// DeleteLink removes a link. Returns ErrNotFound when no row matched.
	DeleteLink(ctx context.Context, code string) error

	// RecordHit increments the lookup counter, stamps the access time, and
	// returns the updated record.
	RecordHit(ctx context.Context, code string, at time.Time) (*shorturl.Link, error)

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
