package adapters

import (
	"github.com/google/wire"

	"github.com/trebuchet-org/kyc-deploy/internal/adapters/blockchain"
	"github.com/trebuchet-org/kyc-deploy/internal/adapters/forge"
	"github.com/trebuchet-org/kyc-deploy/internal/adapters/interactive"
	"github.com/trebuchet-org/kyc-deploy/internal/adapters/repository/contracts"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// ForgeSet provides forge-based implementations
var ForgeSet = wire.NewSet(
	forge.NewBuilder,
	wire.Bind(new(usecase.ContractBuilder), new(*forge.Builder)),
)

// RepositorySet provides artifact storage
var RepositorySet = wire.NewSet(
	contracts.NewRepository,
	wire.Bind(new(usecase.ArtifactStore), new(*contracts.Repository)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelector,
	wire.Bind(new(usecase.ContractSelector), new(*interactive.Selector)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ForgeSet,
	RepositorySet,
	InteractiveSet,
	BlockchainSet,
)
