package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/models"
)

// ArtifactStore provides access to compiled contract blueprints
type ArtifactStore interface {
	// FindContracts returns every artifact matching a "Name" or "path:Name" reference
	FindContracts(ctx context.Context, ref string) ([]*models.Contract, error)
	// ContractNames lists the names of all deployable artifacts
	ContractNames(ctx context.Context) ([]string, error)
}

// ContractBuilder compiles the project so that artifacts are current
type ContractBuilder interface {
	Build(ctx context.Context) error
}

// ContractSelector picks one contract when a reference is ambiguous
type ContractSelector interface {
	SelectContract(ctx context.Context, contracts []*models.Contract, prompt string) (*models.Contract, error)
}

// PendingTx is a signed creation transaction that has been sent
type PendingTx struct {
	models.Submission
	Tx *types.Transaction
}

// ChainClient submits a contract creation and waits for it to be mined.
// Implementations must not touch the network before Submit is called.
type ChainClient interface {
	Submit(ctx context.Context, creationCode []byte) (*PendingTx, error)
	WaitConfirmed(ctx context.Context, pending *PendingTx) (*models.Confirmation, error)
}

// Progress tracking interfaces

// ExecutionStage represents a stage in the deployment process
type ExecutionStage string

const (
	StageResolving  ExecutionStage = "Resolving"
	StageSubmitting ExecutionStage = "Submitting"
	StageConfirming ExecutionStage = "Confirming"
	StageCompleted  ExecutionStage = "Completed"
	StageFailed     ExecutionStage = "Failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   ExecutionStage
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}

// DeployResult is what a successful deployment reports
type DeployResult struct {
	Contract   *models.Contract
	Deployment *models.Deployment
}
