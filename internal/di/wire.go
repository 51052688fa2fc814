//go:build wireinject
// +build wireinject

package di

import (
	"VolPulse/pkg/config"
	"VolPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideAlertPublisher,
		ProvideAlertArchive,
		ProvideCoinInfo,
		ProvideFeedStream,

		// Use cases
		ProvideAlertProcessor,
		ProvideEngine,
		ProvideCollector,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
