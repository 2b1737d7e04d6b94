package app

import (
	"github.com/trebuchet-org/kyc-deploy/internal/adapters/blockchain"
	"github.com/trebuchet-org/kyc-deploy/internal/cli/render"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Use cases
	DeployContract *usecase.DeployContract

	// Adapters that own resources
	Chain *blockchain.Client

	// Renderers
	DeployRenderer render.Renderer[*usecase.DeployResult]
}

// NewApp creates a new application instance
func NewApp(
	cfg *config.RuntimeConfig,
	deployContract *usecase.DeployContract,
	chain *blockchain.Client,
	deployRenderer render.Renderer[*usecase.DeployResult],
) *App {
	return &App{
		Config:         cfg,
		DeployContract: deployContract,
		Chain:          chain,
		DeployRenderer: deployRenderer,
	}
}

// Close releases network connections
func (a *App) Close() {
	if a.Chain != nil {
		a.Chain.Close()
	}
}
