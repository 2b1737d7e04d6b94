package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrInvalidBlueprint is returned when a blueprint name is empty or malformed
	ErrInvalidBlueprint = errors.New("invalid blueprint")

	// ErrContractNotFound is returned when a contract can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrNotDeployable is returned when an artifact has no usable creation code
	ErrNotDeployable = errors.New("contract not deployable")

	// ErrNetworkMismatch is returned when the RPC reports a different chain than configured
	ErrNetworkMismatch = errors.New("network mismatch")

	// ErrTransactionReverted is returned when the deployment receipt has a failed status
	ErrTransactionReverted = errors.New("transaction reverted")
)

// DeployStage identifies where a deployment failed
type DeployStage string

const (
	StageResolve DeployStage = "resolve"
	StageSubmit  DeployStage = "submit"
	StageConfirm DeployStage = "confirm"
)

// DeployError is the single error type surfaced by a deployment attempt.
// The stage is kept for logging only; callers treat every stage alike.
type DeployError struct {
	Stage     DeployStage
	Blueprint string
	Err       error
}

func (e *DeployError) Error() string {
	if e.Blueprint == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Blueprint, e.Err)
}

func (e *DeployError) Unwrap() error {
	return e.Err
}

// NewDeployError wraps err for the given stage
func NewDeployError(stage DeployStage, blueprint string, err error) *DeployError {
	return &DeployError{Stage: stage, Blueprint: blueprint, Err: err}
}

type NoContractsMatchErr struct {
	Name        string
	Suggestions []string
}

func (e NoContractsMatchErr) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no artifact found for contract '%s' (did you run forge build?)", e.Name)
	}
	return fmt.Sprintf("no artifact found for contract '%s', did you mean: %s?",
		e.Name, strings.Join(e.Suggestions, ", "))
}

func (e NoContractsMatchErr) Unwrap() error {
	return ErrContractNotFound
}

type AmbiguousContractErr struct {
	Name    string
	Matches []*ContractRef
}

func (e AmbiguousContractErr) Error() string {
	refs := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		refs = append(refs, fmt.Sprintf("  - %s (%s)", m.Name, m.Path))
	}
	sort.Strings(refs)

	return fmt.Sprintf("multiple contracts found matching '%s' - use full path:contract format to disambiguate:\n%s",
		e.Name, strings.Join(refs, "\n"))
}

// ContractRef is the minimal identity of an indexed artifact
type ContractRef struct {
	Name string
	Path string
}
