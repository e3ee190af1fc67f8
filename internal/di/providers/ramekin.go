package providers

import (
	"github.com/samber/do/v2"

	"github.com/ramekin/ramekin-web/internal/config"
	"github.com/ramekin/ramekin-web/internal/logger"
	"github.com/ramekin/ramekin-web/internal/ramekin"
	"github.com/ramekin/ramekin-web/internal/session"
)

// ClientHandle wraps the backend client with Shutdownable.
type ClientHandle struct {
	*ramekin.Client
}

// Shutdown implements do.Shutdownable.
func (h *ClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRamekinClient provides the backend client, authenticated by the
// stored session.
func ProvideRamekinClient(i do.Injector) (*ClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sess := do.MustInvoke[*session.Session](i)

	client, err := ramekin.New(cfg.Ramekin.APIURL, sess, log.Logger, ramekin.Options{
		Timeout: cfg.Ramekin.Timeout,
		RPS:     cfg.Ramekin.RPS,
		Burst:   cfg.Ramekin.Burst,
	})
	if err != nil {
		return nil, err
	}

	return &ClientHandle{Client: client}, nil
}
