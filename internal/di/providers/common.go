// Package providers contains dependency injection providers for the Ramekin
// web companion.
package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second
)

// Args are the command-line flags the config is loaded from.
type Args []string
