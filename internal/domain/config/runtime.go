package config

import (
	"crypto/ecdsa"
	"math/big"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string

	// Context settings
	Namespace string   // Maps to foundry profile
	Network   *Network // resolved deployment target

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration
	SkipBuild      bool

	// Blueprint to deploy when none is given on the command line
	Contract string

	// Signer and fee settings
	Deployer *DeployerConfig

	// Resolved configurations
	FoundryConfig *FoundryConfig
}

// Network represents network configuration
type Network struct {
	ChainID uint64 `json:"chainId"` // 0 means "accept whatever the RPC reports"
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
}

// DeployerConfig holds the signing key and optional fee overrides
type DeployerConfig struct {
	PrivateKey *ecdsa.PrivateKey `json:"-"`
	GasLimit   uint64            `json:"gasLimit,omitempty"`
	GasFeeCap  *big.Int          `json:"gasFeeCap,omitempty"`
	GasTipCap  *big.Int          `json:"gasTipCap,omitempty"`

	// DevKey is set when no key was configured and the anvil dev key is used
	DevKey bool `json:"devKey,omitempty"`
}

// OutDir returns the artifact directory for the active profile
func (c *RuntimeConfig) OutDir() string {
	if c.FoundryConfig != nil {
		if profile, ok := c.FoundryConfig.Profile[c.Namespace]; ok && profile.OutPath != "" {
			return profile.OutPath
		}
		if profile, ok := c.FoundryConfig.Profile["default"]; ok && profile.OutPath != "" {
			return profile.OutPath
		}
	}
	return "out"
}
