package api

import "time"

// =============================================================================
// Request Types
// =============================================================================

// ShortenRequest is the request body for creating a short link.
// AliasURL, when set, is used as the short code instead of a generated one.
type ShortenRequest struct {
	OrigURL  string  `json:"orig_url"`
	AliasURL *string `json:"alias_url,omitempty"`
}

// UpdateRequest is the request body for replacing a link's original URL.
type UpdateRequest struct {
	OrigURL string `json:"orig_url"`
}

// =============================================================================
// Response Types
// =============================================================================

// LinkResponse is the response for link mutations and search results.
type LinkResponse struct {
	OrigURL      string    `json:"orig_url"`
	ShortURL     string    `json:"short_url"`
	RegisteredAt time.Time `json:"registered_at"`
}

// StatsResponse extends LinkResponse with lookup statistics.
type StatsResponse struct {
	OrigURL      string     `json:"orig_url"`
	ShortURL     string     `json:"short_url"`
	RegisteredAt time.Time  `json:"registered_at"`
	Hits         int64      `json:"get_num"`
	LastAccessAt *time.Time `json:"last_time"`
}

// RedirectResponse carries the resolved original URL for a short code.
type RedirectResponse struct {
	RedirectURL string `json:"redirect_url"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the readiness check response.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
