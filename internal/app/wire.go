//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/trebuchet-org/kyc-deploy/internal/adapters"
	"github.com/trebuchet-org/kyc-deploy/internal/cli/render"
	"github.com/trebuchet-org/kyc-deploy/internal/config"
	"github.com/trebuchet-org/kyc-deploy/internal/logging"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration and logging
		config.ConfigSet,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewDeployContract,

		// Renderers
		render.NewDeployRenderer,

		// App
		NewApp,
	)
	return nil, nil
}
