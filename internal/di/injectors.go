//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"pvd/internal"
	"pvd/internal/archive"
	"pvd/internal/controllers"
	"pvd/internal/monitor"
	"pvd/internal/providers"
	"pvd/internal/scheduler"
	"pvd/internal/services"
	"pvd/internal/store"
	"pvd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		store.NewVisitorStore,
		monitor.NewHTTPSource,
		monitor.NewDispatcher,
		monitor.NewDifferencer,
		monitor.NewLoop,
		services.NewAnalyticsService,
		services.NewMonitorService,
		archive.NewZstdCompressor,
		archive.NewArchiver,
		scheduler.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
