package config

// FoundryConfig represents the parts of foundry.toml the deployer reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig `toml:"profile"`
	RpcEndpoints map[string]string        `toml:"rpc_endpoints"`

	// RawRpcEndpoints keeps the values before ${VAR} expansion
	RawRpcEndpoints map[string]string `toml:"-"`
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath  string           `toml:"src,omitempty"`
	OutPath  string           `toml:"out,omitempty"`
	Deployer *DeployerSection `toml:"deployer,omitempty"`
}

// DeployerSection is the [profile.<name>.deployer] table
type DeployerSection struct {
	PrivateKey string `toml:"private_key,omitempty"` //nolint:gosec // usually an ${ENV_VAR} reference
	ChainID    uint64 `toml:"chain_id,omitempty"`
	GasLimit   uint64 `toml:"gas_limit,omitempty"`
}
