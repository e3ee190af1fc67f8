// Package api provides the capture relay: the HTTP server behind the capture
// page, the bookmarklet scripts and the relay session API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramekin/ramekin-web/internal/capture"
	"github.com/ramekin/ramekin-web/internal/config"
	"github.com/ramekin/ramekin-web/internal/sse"
	"github.com/ramekin/ramekin-web/internal/store"
)

// JobsFactory returns a JobAPI that authenticates with token.
type JobsFactory func(token string) capture.JobAPI

// Deps are the server's collaborators.
type Deps struct {
	Config *config.Config
	Store  *store.Store
	Jobs   JobsFactory
	Events *sse.Manager
	Logger *slog.Logger
	// Clock drives job polling. Nil uses the real clock.
	Clock capture.Clock
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg        *config.Config
	store      *store.Store
	jobs       JobsFactory
	sseManager *sse.Manager
	sseHandler *sse.Handler
	sessions   *sessionRegistry
	clock      capture.Clock
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger

	messageRateLimiter *RateLimiter
	streamRateLimiter  *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(deps Deps) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("Ramekin Capture Relay", "1.0.0")
	humaConfig.Info.Description = "Relays the capture handshake between a recipe page and the Ramekin backend."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}

	s := &Server{
		cfg:                deps.Config,
		store:              deps.Store,
		jobs:               deps.Jobs,
		sseManager:         deps.Events,
		sseHandler:         sse.NewHandler(deps.Events, deps.Logger),
		sessions:           newSessionRegistry(deps.Config.Capture.SessionTTL),
		clock:              deps.Clock,
		router:             router,
		logger:             deps.Logger,
		messageRateLimiter: NewRateLimiter(600, time.Minute, 60),
		streamRateLimiter:  NewRateLimiter(60, time.Minute, 10),
	}
	if s.clock == nil {
		s.clock = capture.RealClock()
	}

	s.setupMiddleware()

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerPageRoutes()
	s.registerCaptureRoutes()
	s.registerHistoryRoutes()
}

// Run sweeps idle relay sessions until ctx is done, then closes the rest.
func (s *Server) Run(ctx context.Context) {
	interval := s.sessions.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			for _, sess := range s.sessions.drain() {
				s.closeSession(sess)
			}
			s.messageRateLimiter.Stop()
			s.streamRateLimiter.Stop()
			return
		case now := <-ticker.C:
			s.expireSessions(now)
		}
	}
}

func (s *Server) expireSessions(now time.Time) int {
	expired := s.sessions.expire(now)
	for _, sess := range expired {
		s.logger.Info("capture session expired", "session_id", sess.id, "idle", now.Sub(sess.seen()))
		s.closeSession(sess)
	}
	return len(expired)
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
