package models

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// DeploymentState represents where a deployment is in its lifecycle
type DeploymentState string

const (
	DeploymentIdle      DeploymentState = "IDLE"
	DeploymentSubmitted DeploymentState = "SUBMITTED"
	DeploymentConfirmed DeploymentState = "CONFIRMED"
	DeploymentFailed    DeploymentState = "FAILED"
)

// IsTerminal reports whether no further transitions are allowed
func (s DeploymentState) IsTerminal() bool {
	return s == DeploymentConfirmed || s == DeploymentFailed
}

// Deployment is the in-memory handle of a single contract creation.
// It is never persisted.
type Deployment struct {
	ContractName string          `json:"contractName"`
	State        DeploymentState `json:"state"`
	ChainID      uint64          `json:"chainId"`
	Deployer     common.Address  `json:"deployer"`

	// Set on submission
	TxHash           common.Hash    `json:"txHash"`
	Nonce            uint64         `json:"nonce"`
	PredictedAddress common.Address `json:"predictedAddress"`
	SubmittedAt      time.Time      `json:"submittedAt"`

	// Set on confirmation
	Address     common.Address `json:"address"`
	BlockNumber uint64         `json:"blockNumber"`
	GasUsed     uint64         `json:"gasUsed"`
	ConfirmedAt time.Time      `json:"confirmedAt"`

	// Set on failure
	Err error `json:"-"`
}

// NewDeployment creates an idle handle for the named contract
func NewDeployment(contractName string) *Deployment {
	return &Deployment{
		ContractName: contractName,
		State:        DeploymentIdle,
	}
}

// Submission holds what the network client knows once a creation tx is sent
type Submission struct {
	TxHash           common.Hash
	Nonce            uint64
	ChainID          uint64
	Deployer         common.Address
	PredictedAddress common.Address
}

// Confirmation holds what the network client knows once the tx is included
type Confirmation struct {
	Address     common.Address
	BlockNumber uint64
	GasUsed     uint64
}

// MarkSubmitted moves Idle -> Submitted
func (d *Deployment) MarkSubmitted(sub Submission) error {
	if d.State != DeploymentIdle {
		return d.transitionErr(DeploymentSubmitted)
	}
	d.State = DeploymentSubmitted
	d.TxHash = sub.TxHash
	d.Nonce = sub.Nonce
	d.ChainID = sub.ChainID
	d.Deployer = sub.Deployer
	d.PredictedAddress = sub.PredictedAddress
	d.SubmittedAt = time.Now()
	return nil
}

// MarkConfirmed moves Submitted -> Confirmed
func (d *Deployment) MarkConfirmed(conf Confirmation) error {
	if d.State != DeploymentSubmitted {
		return d.transitionErr(DeploymentConfirmed)
	}
	d.State = DeploymentConfirmed
	d.Address = conf.Address
	d.BlockNumber = conf.BlockNumber
	d.GasUsed = conf.GasUsed
	d.ConfirmedAt = time.Now()
	return nil
}

// MarkFailed moves any non-terminal state to Failed
func (d *Deployment) MarkFailed(err error) error {
	if d.State.IsTerminal() {
		return d.transitionErr(DeploymentFailed)
	}
	d.State = DeploymentFailed
	d.Err = err
	return nil
}

func (d *Deployment) transitionErr(to DeploymentState) error {
	return &TransitionError{From: d.State, To: to}
}

// TransitionError reports a rejected state change
type TransitionError struct {
	From DeploymentState
	To   DeploymentState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid deployment state transition %s -> %s", e.From, e.To)
}
