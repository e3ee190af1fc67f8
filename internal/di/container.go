// Package di provides dependency injection configuration for the Ramekin web
// companion.
package di

import (
	"github.com/samber/do/v2"

	"github.com/ramekin/ramekin-web/internal/config"
	"github.com/ramekin/ramekin-web/internal/di/providers"
	"github.com/ramekin/ramekin-web/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line flags handed to the config loader.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, providers.Args(args))

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Local state
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSession)

	// Backend
	do.Provide(injector, providers.ProvideRamekinClient)

	// Relay
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes the relay server and everything it depends on.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.ClientHandle](injector)
	_ = do.MustInvoke[*providers.APIServerHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	return nil
}
