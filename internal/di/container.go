// Package di provides dependency injection configuration for the Marginalia server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/marginalia-app/marginalia-server/internal/config"
	"github.com/marginalia-app/marginalia-server/internal/di/providers"
	"github.com/marginalia-app/marginalia-server/internal/logger"
	"github.com/marginalia-app/marginalia-server/internal/service"
	"github.com/marginalia-app/marginalia-server/internal/store"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStorageAdapter)

	// Stores
	do.Provide(injector, providers.ProvideBookStore)
	do.Provide(injector, providers.ProvideInsightStore)

	// Coordinator
	do.Provide(injector, providers.ProvideLibrary)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once they are running.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.AdapterHandle](injector)
	_ = do.MustInvoke[*store.BookStore](injector)
	_ = do.MustInvoke[*store.InsightStore](injector)
	_ = do.MustInvoke[*service.Library](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
