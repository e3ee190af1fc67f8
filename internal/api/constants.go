package api

// Cache-Control header values.
const (
	// Capture pages carry a session bootstrap.
	CacheNoStore = "no-store"
	// Scripts embed the public origin.
	CacheRevalidate = "no-cache"
)

// Content types served outside huma.
const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJS   = "text/javascript; charset=utf-8"
)
