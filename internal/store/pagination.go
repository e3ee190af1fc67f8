package store

import (
	"encoding/base64"

	"github.com/ramekin/ramekin-web/internal/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// PageParams selects one page of a newest-first listing.
type PageParams struct {
	Limit  int    // Items per page (defaults to 20, at most 200)
	Cursor string // Opaque cursor from the previous page; empty for the first
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"` // Empty on the last page
	HasMore    bool   `json:"has_more"`
}

// Normalize clamps Limit into range.
func (p *PageParams) Normalize() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
}

// EncodeCursor makes an opaque cursor from the last key of a page.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", errors.Validation("invalid cursor").WithCause(err)
	}
	return string(decoded), nil
}
