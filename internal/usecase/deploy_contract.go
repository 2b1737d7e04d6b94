package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/trebuchet-org/kyc-deploy/internal/domain"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/models"
)

// maxSuggestions bounds the "did you mean" list for unknown blueprints
const maxSuggestions = 3

const devKeyNotice = "No deployer key configured, using the anvil dev key"

// DeployContract resolves a blueprint, submits its creation transaction and
// waits for confirmation. It makes a single attempt and never retries.
type DeployContract struct {
	config    *config.RuntimeConfig
	artifacts ArtifactStore
	selector  ContractSelector
	chain     ChainClient
	sink      ProgressSink
	log       *slog.Logger
}

// NewDeployContract creates a new DeployContract use case
func NewDeployContract(
	cfg *config.RuntimeConfig,
	artifacts ArtifactStore,
	selector ContractSelector,
	chain ChainClient,
	sink ProgressSink,
	log *slog.Logger,
) *DeployContract {
	return &DeployContract{
		config:    cfg,
		artifacts: artifacts,
		selector:  selector,
		chain:     chain,
		sink:      sink,
		log:       log.With("component", "DeployContract"),
	}
}

// Deploy deploys the named blueprint. Every failure is returned as a *domain.DeployError.
func (uc *DeployContract) Deploy(ctx context.Context, blueprintName string) (*DeployResult, error) {
	blueprintName = strings.TrimSpace(blueprintName)
	deployment := models.NewDeployment(blueprintName)

	fail := func(stage domain.DeployStage, err error) (*DeployResult, error) {
		uc.markFailed(deployment, err)
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: StageFailed, Message: err.Error()})
		uc.log.Debug("deployment failed", "contract", blueprintName, "stage", stage, "error", err)
		return nil, domain.NewDeployError(stage, blueprintName, err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageResolving,
		Message: "Starting deployment process...",
	})

	contract, err := uc.resolve(ctx, blueprintName)
	if err != nil {
		return fail(domain.StageResolve, err)
	}
	creationCode, err := uc.creationCode(contract)
	if err != nil {
		return fail(domain.StageResolve, err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageResolving,
		Message: fmt.Sprintf("Contract factory created (%s)", contract.Key()),
	})
	if uc.config.Deployer != nil && uc.config.Deployer.DevKey {
		uc.sink.Info(devKeyNotice)
	}
	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageSubmitting,
		Message: fmt.Sprintf("Submitting %s deployment", contract.Name),
		Spinner: true,
	})

	pending, err := uc.chain.Submit(ctx, creationCode)
	if err != nil {
		return fail(domain.StageSubmit, err)
	}
	if err := deployment.MarkSubmitted(pending.Submission); err != nil {
		return fail(domain.StageSubmit, err)
	}
	uc.log.Debug("deployment submitted",
		"contract", contract.Name,
		"tx", pending.TxHash.Hex(),
		"nonce", pending.Nonce,
		"predicted", pending.PredictedAddress.Hex(),
	)

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageConfirming,
		Message: fmt.Sprintf("Waiting for confirmation of %s", pending.TxHash.Hex()),
		Spinner: true,
	})

	confirmation, err := uc.chain.WaitConfirmed(ctx, pending)
	if err != nil {
		return fail(domain.StageConfirm, err)
	}
	if err := deployment.MarkConfirmed(*confirmation); err != nil {
		return fail(domain.StageConfirm, err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   StageCompleted,
		Message: fmt.Sprintf("Confirmed in block %d", deployment.BlockNumber),
	})

	return &DeployResult{Contract: contract, Deployment: deployment}, nil
}

// markFailed records err on the deployment; a rejected transition is only logged
func (uc *DeployContract) markFailed(deployment *models.Deployment, err error) {
	if terr := deployment.MarkFailed(err); terr != nil {
		uc.log.Debug("could not mark deployment failed", "contract", deployment.ContractName, "error", terr)
	}
}

// resolve finds exactly one artifact for the reference
func (uc *DeployContract) resolve(ctx context.Context, ref string) (*models.Contract, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: blueprint name is empty", domain.ErrInvalidBlueprint)
	}

	matches, err := uc.artifacts.FindContracts(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, domain.NoContractsMatchErr{Name: ref, Suggestions: uc.suggest(ctx, ref)}
	case 1:
		return matches[0], nil
	}

	if uc.selector != nil && !uc.config.NonInteractive {
		selected, err := uc.selector.SelectContract(ctx, matches,
			fmt.Sprintf("Multiple contracts found for '%s'. Select one:", ref))
		if err != nil {
			return nil, fmt.Errorf("contract selection failed: %w", err)
		}
		return selected, nil
	}

	refs := make([]*domain.ContractRef, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, &domain.ContractRef{Name: m.Name, Path: m.Path})
	}
	return nil, domain.AmbiguousContractErr{Name: ref, Matches: refs}
}

// creationCode checks the blueprint can be deployed without arguments
func (uc *DeployContract) creationCode(contract *models.Contract) ([]byte, error) {
	code, err := contract.CreationCode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotDeployable, err)
	}

	parsed, err := contract.ParsedABI()
	if err != nil {
		return nil, err
	}
	if n := len(parsed.Constructor.Inputs); n > 0 {
		return nil, fmt.Errorf("%w: constructor of %s expects %d argument(s), none are supported",
			domain.ErrNotDeployable, contract.Name, n)
	}

	return code, nil
}

// suggest returns the closest known contract names for a failed lookup
func (uc *DeployContract) suggest(ctx context.Context, ref string) []string {
	names, err := uc.artifacts.ContractNames(ctx)
	if err != nil || len(names) == 0 {
		return nil
	}

	// Only the contract part of a path:Name reference is meaningful here
	if idx := strings.LastIndex(ref, ":"); idx != -1 {
		ref = ref[idx+1:]
	}

	var suggestions []string
	for _, match := range fuzzy.Find(ref, names) {
		suggestions = append(suggestions, match.Str)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
