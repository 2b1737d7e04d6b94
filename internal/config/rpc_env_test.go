package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
)

func TestDetectEnvVar(t *testing.T) {
	tests := map[string]struct {
		raw    string
		envVar string
		isVar  bool
	}{
		"simple reference":      {raw: "${SEPOLIA_RPC_URL}", envVar: "SEPOLIA_RPC_URL", isVar: true},
		"leading underscore":    {raw: "${_MY_VAR}", envVar: "_MY_VAR", isVar: true},
		"hardcoded url":         {raw: "http://localhost:8545"},
		"reference with suffix": {raw: "${MY_VAR}/path"},
		"missing closing brace": {raw: "${UNCLOSED"},
		"dollar without braces": {raw: "$MY_VAR"},
		"empty":                 {raw: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			envVar, isVar := DetectEnvVar(tt.raw)
			assert.Equal(t, tt.envVar, envVar)
			assert.Equal(t, tt.isVar, isVar)
		})
	}
}

func TestGenerateEnvVarName(t *testing.T) {
	assert.Equal(t, "SEPOLIA_RPC_URL", GenerateEnvVarName("sepolia"))
	assert.Equal(t, "CELO_SEPOLIA_RPC_URL", GenerateEnvVarName("celo-sepolia"))
	assert.Equal(t, "POLYGON_ZKEVM_RPC_URL", GenerateEnvVarName("polygon.zkevm"))
}

func TestResolveUnsetEndpointVariable(t *testing.T) {
	resolver := NewNetworkResolver(&config.FoundryConfig{
		RpcEndpoints:    map[string]string{"sepolia": ""},
		RawRpcEndpoints: map[string]string{"sepolia": "${KYC_TEST_NEVER_SET}"},
	})

	_, err := resolver.Resolve("sepolia", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KYC_TEST_NEVER_SET is not set")
}
