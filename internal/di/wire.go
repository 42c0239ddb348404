//go:build wireinject
// +build wireinject

package di

import (
	"TrendBoard/pkg/config"
	"TrendBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Exchange and persistence
		ProvideGateway,
		ProvideSinks,

		// Use cases
		ProvideSnapshotFetcher,
		ProvideAggregator,
		ProvideScreener,

		// HTTP
		ProvideLimiter,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
