package store

import (
	"fmt"
	"strings"
	"time"
)

// Timestamps in index keys are fixed width so keys sort chronologically:
// 2006-01-02T15:04:05.NNNNNNNNNZ.
const timestampLen = 30

// formatTimestampIndexKey builds {prefix}{timestamp}:{id}.
func formatTimestampIndexKey(prefix string, timestamp time.Time, id string) []byte {
	ts := timestamp.UTC().Format("2006-01-02T15:04:05") + fmt.Sprintf(".%09d", timestamp.Nanosecond()) + "Z"
	return fmt.Appendf(nil, "%s%s:%s", prefix, ts, id)
}

// parseTimestampIndexKey returns the id of a key built by formatTimestampIndexKey.
func parseTimestampIndexKey(key []byte, prefix string) (string, error) {
	rest, ok := strings.CutPrefix(string(key), prefix)
	if !ok {
		return "", fmt.Errorf("invalid timestamp key: missing prefix %s", prefix)
	}
	if len(rest) < timestampLen+2 || rest[timestampLen] != ':' {
		return "", fmt.Errorf("invalid timestamp key format: %s", key)
	}
	return rest[timestampLen+1:], nil
}
