package store

import (
	"github.com/ramekin/ramekin-web/internal/errors"
)

// Sentinel errors. They carry the shared error codes so API handlers can map
// them without knowing about the store.
var (
	ErrNotFound      = errors.NotFound("resource not found")
	ErrAlreadyExists = errors.Conflict("resource already exists")
)
