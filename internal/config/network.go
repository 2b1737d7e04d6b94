package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
)

// LocalNetwork is the network used when none is configured
const LocalNetwork = "localhost"

// DefaultLocalRPC is where a local anvil/hardhat node listens by default
const DefaultLocalRPC = "http://127.0.0.1:8545"

// NetworkResolver resolves network names to RPC endpoints from foundry.toml
type NetworkResolver struct {
	foundryConfig *config.FoundryConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundryConfig *config.FoundryConfig) *NetworkResolver {
	return &NetworkResolver{foundryConfig: foundryConfig}
}

// Resolve resolves a network name to its configuration.
// A raw http(s)/ws(s) URL is accepted as its own endpoint.
func (r *NetworkResolver) Resolve(networkName string, chainID uint64) (*config.Network, error) {
	if networkName == "" {
		networkName = LocalNetwork
	}

	if isURL(networkName) {
		return &config.Network{Name: networkName, RPCURL: networkName, ChainID: chainID}, nil
	}

	var endpoints map[string]string
	if r.foundryConfig != nil {
		endpoints = r.foundryConfig.RpcEndpoints
	}

	rpcURL, ok := endpoints[networkName]
	if !ok {
		if networkName == LocalNetwork {
			rpcURL = DefaultLocalRPC
		} else {
			available := lo.Keys(endpoints)
			sort.Strings(available)
			return nil, fmt.Errorf("network '%s' not found in foundry.toml [rpc_endpoints] (available: %s)",
				networkName, strings.Join(available, ", "))
		}
	}

	if rpcURL == "" {
		if envVar, ok := DetectEnvVar(r.foundryConfig.RawRpcEndpoints[networkName]); ok {
			return nil, fmt.Errorf("rpc endpoint for network '%s' is empty: %s is not set (conventionally %s)",
				networkName, envVar, GenerateEnvVarName(networkName))
		}
		return nil, fmt.Errorf("rpc endpoint for network '%s' is empty", networkName)
	}

	return &config.Network{Name: networkName, RPCURL: rpcURL, ChainID: chainID}, nil
}

func isURL(s string) bool {
	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
