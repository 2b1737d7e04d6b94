package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
)

// envFiles are loaded in order; variables already set in the environment win
var envFiles = []string{".env", ".env.local"}

// LoadEnvFiles loads .env files from the project root into the process environment
func LoadEnvFiles(projectRoot string) {
	for _, name := range envFiles {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			slog.Warn("failed to load env file", "file", envFile, "error", err)
		}
	}
}

// LoadFoundryConfig parses foundry.toml and expands ${VAR} references
func LoadFoundryConfig(projectRoot string) (*config.FoundryConfig, error) {
	foundryPath := filepath.Join(projectRoot, "foundry.toml")

	var cfg config.FoundryConfig
	if _, err := toml.DecodeFile(foundryPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foundry.toml: %w", err)
	}

	cfg.RawRpcEndpoints = cfg.RpcEndpoints
	cfg.RpcEndpoints = lo.MapValues(cfg.RpcEndpoints, func(url string, _ string) string {
		return os.ExpandEnv(url)
	})
	if cfg.Profile == nil {
		cfg.Profile = make(map[string]config.ProfileConfig)
	}
	for name, profile := range cfg.Profile {
		if profile.Deployer != nil {
			profile.Deployer.PrivateKey = os.ExpandEnv(profile.Deployer.PrivateKey)
		}
		cfg.Profile[name] = profile
	}

	return &cfg, nil
}
