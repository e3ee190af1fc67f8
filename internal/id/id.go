// Package id generates prefixed identifiers for locally owned objects such as
// capture relay sessions.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes in use.
const (
	CaptureSession = "cap"
	Request        = "req"
	SSEClient      = "sse"
)

const nanoidLen = 21

// Generate creates a prefixed unique ID using NanoID, e.g.
// "cap-V1StGXR8_Z5jdHi6B-myT". Relay session ids double as bearer
// capabilities for the session, so they use the full 21 characters.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New(nanoidLen)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s looks like an ID produced by Generate(prefix).
func Valid(prefix, s string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"-")
	if !ok || len(rest) != nanoidLen {
		return false
	}
	for _, c := range rest {
		if !isURLSafe(c) {
			return false
		}
	}
	return true
}

func isURLSafe(c rune) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}
