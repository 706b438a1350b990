// Package bootstrap wires the dependency graph with go.uber.org/dig:
// configuration, the engine core, the repository adapter, the
// application services, and the admin HTTP server.
package bootstrap

import (
	"go.uber.org/dig"

	"atlaskv/internal/application/service"
	"atlaskv/internal/platform/config"
	"atlaskv/internal/platform/repository"
	"atlaskv/internal/platform/repository/lsm_tree"
	"atlaskv/internal/platform/server"
	"atlaskv/internal/platform/server/handler/admin"
	"atlaskv/internal/platform/server/handler/dbentry"
)

// Run assembles the container and starts the admin HTTP server. It
// blocks for the lifetime of the process.
func Run() error {
	container := dig.New()

	constructors := []interface{}{
		config.LoadConfig,
		engineConfig,
		adminPort,
		lsm_tree.Open,
		repository.NewEngineRepository,
		service.NewSaveEntryService,
		service.NewGetEntryService,
		service.NewDeleteEntryService,
		admin.NewHandler,
		dbentry.NewHandler,
		server.NewServer,
	}
	for _, ctor := range constructors {
		if err := container.Provide(ctor); err != nil {
			return err
		}
	}

	return container.Invoke(func(s server.Server) error {
		return s.Run()
	})
}

func engineConfig(cfg config.Config) lsm_tree.EngineConfig {
	return cfg.EngineConfig()
}

func adminPort(cfg config.Config) int {
	return cfg.AdminPort
}
