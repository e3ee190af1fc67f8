package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/ramekin/ramekin-web/internal/api"
	"github.com/ramekin/ramekin-web/internal/capture"
	"github.com/ramekin/ramekin-web/internal/config"
	"github.com/ramekin/ramekin-web/internal/logger"
	"github.com/ramekin/ramekin-web/internal/session"
)

// APIServerHandle wraps the relay handler and its session janitor.
type APIServerHandle struct {
	*api.Server
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable. Open capture sessions are closed.
func (h *APIServerHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideAPIServer provides the capture relay handler.
func ProvideAPIServer(i do.Injector) (*APIServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	clientHandle := do.MustInvoke[*ClientHandle](i)

	// Each capture page authenticates with its own token.
	jobs := func(token string) capture.JobAPI {
		return clientHandle.WithTokens(session.Static(token))
	}

	server := api.NewServer(api.Deps{
		Config: cfg,
		Store:  storeHandle.Store,
		Jobs:   jobs,
		Events: sseHandle.Manager,
		Logger: log.Logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		server.Run(ctx)
	}()

	return &APIServerHandle{Server: server, cancel: cancel, done: done}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handler := do.MustInvoke[*APIServerHandle](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr, "public_url", cfg.Server.PublicURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
