package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trebuchet-org/kyc-deploy/internal/adapters/progress"
	"github.com/trebuchet-org/kyc-deploy/internal/app"
	"github.com/trebuchet-org/kyc-deploy/internal/config"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// NewRootCmd creates the root command. Running it deploys a contract.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kyc-deploy [contract]",
		Short: "Deploy a compiled contract to an EVM network",
		Long: `kyc-deploy deploys a single compiled Foundry contract and prints its
address once the creation transaction is confirmed.

The contract defaults to KYCVerification. It can be given as a name or as
"path/to/File.sol:Name" when several sources define the same name.

The network is an entry of [rpc_endpoints] in foundry.toml or a raw RPC URL.
The deployer key is read from KYC_DEPLOY_PRIVATE_KEY or PRIVATE_KEY; on
localhost the first anvil account is used when neither is set.

Examples:
  kyc-deploy
  kyc-deploy --network sepolia
  kyc-deploy src/kyc/KYCVerification.sol:KYCVerification --json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDeploy,
	}

	flags := rootCmd.Flags()
	flags.StringP("network", "n", "", "Network name from foundry.toml or an RPC URL (default \"localhost\")")
	flags.StringP("namespace", "s", "", "Foundry profile to read settings from (default \"default\")")
	flags.Bool("debug", false, "Enable debug output")
	flags.Bool("non-interactive", false, "Disable interactive prompts")
	flags.Bool("json", false, "Output the deployment as JSON")
	flags.Bool("skip-build", false, "Use existing artifacts instead of running forge build")
	flags.Duration("timeout", 0, "Abort if the deployment is not confirmed in time (0 waits forever)")

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func runDeploy(cmd *cobra.Command, args []string) error {
	projectRoot, err := config.FindProjectRoot()
	if err != nil {
		return err
	}

	v, err := config.SetupViper(projectRoot, cmd)
	if err != nil {
		return err
	}

	appInstance, err := app.InitApp(v, newProgressSink(v))
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer appInstance.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if appInstance.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
		defer cancel()
	}

	contract := appInstance.Config.Contract
	if len(args) == 1 {
		contract = args[0]
	}

	result, err := appInstance.DeployContract.Deploy(ctx, contract)
	if err != nil {
		return err
	}

	return appInstance.DeployRenderer.Render(result)
}

// newProgressSink keeps stderr quiet when the output is meant for machines
func newProgressSink(v *viper.Viper) usecase.ProgressSink {
	if v.GetBool("json") {
		return usecase.NopProgress{}
	}
	return progress.NewSpinnerSink()
}
