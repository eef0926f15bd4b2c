package shorturl

import "errors"

// =============================================================================
// Error Types
// =============================================================================

var (
	ErrInvalidURL   = errors.New("invalid original url")
	ErrInvalidAlias = errors.New("invalid alias")
	ErrEmptyCode    = errors.New("empty short code")
)
