// Package shorturl provides the pure domain logic for the URL shortener:
// link records, code generation, and input validation. No I/O lives here.
package shorturl

import (
	"net/url"
	"regexp"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// =============================================================================
// Link
// =============================================================================

// Link is a stored short link. Hits counts lookups through the short code;
// LastAccessAt is nil until the first lookup.
type Link struct {
	Code         string     `db:"short" json:"short_url"`
	Original     string     `db:"original" json:"orig_url"`
	RegisteredAt time.Time  `db:"registered_at" json:"registered_at"`
	Hits         int64      `db:"get_num" json:"get_num"`
	LastAccessAt *time.Time `db:"last_time" json:"last_time"`
}

// NewLink builds a link record for a fresh code.
func NewLink(code, original string, now time.Time) Link {
	return Link{
		Code:         code,
		Original:     original,
		RegisteredAt: now,
	}
}

// =============================================================================
// Code Generation and Validation
// =============================================================================

// aliasRegex limits custom aliases to URL-safe characters.
var aliasRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// GenerateCode returns a new random short code.
func GenerateCode() string {
	return shortuuid.New()
}

// ValidateOriginal checks that the original URL is absolute http(s).
func ValidateOriginal(original string) error {
	if original == "" {
		return ErrInvalidURL
	}
	u, err := url.Parse(original)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// ValidateAlias checks a user-supplied short code: 1-64 characters from
// [A-Za-z0-9_-].
func ValidateAlias(alias string) error {
	if !aliasRegex.MatchString(alias) {
		return ErrInvalidAlias
	}
	return nil
}

// ValidateCode checks a short code from a request path. Generated codes and
// accepted aliases both satisfy the alias charset.
func ValidateCode(code string) error {
	if code == "" {
		return ErrEmptyCode
	}
	return ValidateAlias(code)
}
