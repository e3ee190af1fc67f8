package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ramekin/ramekin-web/internal/http/response"
	"github.com/ramekin/ramekin-web/internal/ratelimit"
)

const tooManyRequests = "Too many requests. Please try again later."

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// rate: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	// For example: 600 per minute = 10 rps
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// RateLimitMiddleware creates a middleware that rate limits requests by IP.
// Returns 429 Too Many Requests when limit is exceeded.
func RateLimitMiddleware(limiter *RateLimiter, logger interface{ Warn(msg string, args ...any) }) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r.Header.Get, r.RemoteAddr)

			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, tooManyRequests, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit is RateLimitMiddleware for a single huma operation.
func (s *Server) rateLimit(limiter *RateLimiter) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.Header, ctx.RemoteAddr())
		if !limiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", ctx.URL().Path,
			)
			ctx.SetHeader("Retry-After", "1")
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, tooManyRequests)
			return
		}
		next(ctx)
	}
}

// clientIP extracts the client IP from request headers.
// Checks X-Forwarded-For and X-Real-IP before falling back to the remote address.
func clientIP(header func(string) string, remoteAddr string) string {
	// X-Forwarded-For may contain multiple IPs, the first is the client.
	if xff := header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := header("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
