package config

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
)

// AnvilDevKey is the first pre-funded account of anvil and hardhat dev nodes
const AnvilDevKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// ParsePrivateKey parses a hex private key with or without 0x prefix
func ParsePrivateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// resolveDeployer builds the signer and fee settings.
// Key lookup order: private_key setting, [profile.<ns>.deployer] private_key,
// then the anvil dev key when deploying to the local network.
func resolveDeployer(v *viper.Viper, profile config.ProfileConfig, network *config.Network) (*config.DeployerConfig, error) {
	keyHex := v.GetString("private_key")
	if keyHex == "" && profile.Deployer != nil {
		keyHex = profile.Deployer.PrivateKey
	}
	devKey := false
	if keyHex == "" {
		if network == nil || network.Name != LocalNetwork {
			return nil, fmt.Errorf("no deployer key configured: set KYC_DEPLOY_PRIVATE_KEY or PRIVATE_KEY")
		}
		keyHex = AnvilDevKey
		devKey = true
	}

	key, err := ParsePrivateKey(keyHex)
	if err != nil {
		return nil, err
	}

	deployer := &config.DeployerConfig{
		PrivateKey: key,
		GasLimit:   v.GetUint64("gas_limit"),
		DevKey:     devKey,
	}
	if deployer.GasLimit == 0 && profile.Deployer != nil {
		deployer.GasLimit = profile.Deployer.GasLimit
	}

	if deployer.GasFeeCap, err = parseWei(v.GetString("gas_fee_cap")); err != nil {
		return nil, fmt.Errorf("invalid gas_fee_cap: %w", err)
	}
	if deployer.GasTipCap, err = parseWei(v.GetString("gas_tip_cap")); err != nil {
		return nil, fmt.Errorf("invalid gas_tip_cap: %w", err)
	}

	return deployer, nil
}

// parseWei parses a decimal or 0x-prefixed wei amount; empty means unset
func parseWei(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil, nil
	}
	n, ok := new(big.Int).SetString(s, 0)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%q is not a non-negative integer", s)
	}
	return n, nil
}
