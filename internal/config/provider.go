package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "KYC_DEPLOY"

// DefaultContract is the blueprint deployed when none is given
const DefaultContract = "KYCVerification"

// ConfigSet provides the runtime configuration for Wire
var ConfigSet = wire.NewSet(
	Provider,
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	// .env must be loaded before any env-backed key is read
	LoadEnvFiles(projectRoot)

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		Namespace:      v.GetString("namespace"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		SkipBuild:      v.GetBool("skip_build"),
		Contract:       v.GetString("contract"),
	}

	foundryConfig, err := LoadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}
	cfg.FoundryConfig = foundryConfig

	profile := foundryConfig.Profile[cfg.Namespace]

	chainID := v.GetUint64("chain_id")
	if chainID == 0 && profile.Deployer != nil {
		chainID = profile.Deployer.ChainID
	}

	network, err := NewNetworkResolver(foundryConfig).Resolve(v.GetString("network"), chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve network: %w", err)
	}
	cfg.Network = network

	if cfg.Deployer, err = resolveDeployer(v, profile, network); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find foundry.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "foundry.toml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a Foundry project (foundry.toml not found)")
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance.
// Precedence: flags, KYC_DEPLOY_* env, .kyc-deploy/config.local.json, defaults.
func SetupViper(projectRoot string, cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName("config.local")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".kyc-deploy"))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// PRIVATE_KEY is the name most deploy tooling already exports
	if err := v.BindEnv("private_key", EnvPrefix+"_PRIVATE_KEY", "PRIVATE_KEY"); err != nil {
		return nil, err
	}

	v.SetDefault("namespace", "default")
	v.SetDefault("network", LocalNetwork)
	v.SetDefault("contract", DefaultContract)
	v.SetDefault("timeout", "0s")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if cmd != nil {
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
		if bindErr != nil {
			return nil, bindErr
		}
	}

	return v, nil
}
