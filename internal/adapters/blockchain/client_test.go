package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebuchet-org/kyc-deploy/internal/domain"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
)

const (
	simulatedChainID = 1337

	// Returns a single STOP byte as runtime code
	stopContract = "0x6001600c60003960016000f300"
	// Reverts in the constructor
	revertContract = "0x60006000fd"
)

type testChain struct {
	backend *simulated.Backend
	key     *ecdsa.PrivateKey
	from    common.Address
}

func newTestChain(t *testing.T) *testChain {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)

	backend := simulated.NewBackend(types.GenesisAlloc{
		from: {Balance: new(big.Int).Mul(big.NewInt(10), big.NewInt(params.Ether))},
	})
	t.Cleanup(func() { _ = backend.Close() })

	return &testChain{backend: backend, key: key, from: from}
}

func (tc *testChain) client(chainID uint64, deployer *config.DeployerConfig) *Client {
	network := &config.Network{Name: "simulated", ChainID: chainID}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newClient(network, deployer, tc.backend.Client(), log)
}

func TestClientDeploy(t *testing.T) {
	ctx := context.Background()
	tc := newTestChain(t)
	client := tc.client(simulatedChainID, &config.DeployerConfig{PrivateKey: tc.key})

	pending, err := client.Submit(ctx, hexutil.MustDecode(stopContract))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), pending.Nonce)
	assert.Equal(t, uint64(simulatedChainID), pending.ChainID)
	assert.Equal(t, tc.from, pending.Deployer)
	assert.Equal(t, crypto.CreateAddress(tc.from, 0), pending.PredictedAddress)
	assert.Equal(t, pending.Tx.Hash(), pending.TxHash)
	assert.Equal(t, uint8(types.DynamicFeeTxType), pending.Tx.Type())
	assert.Nil(t, pending.Tx.To())

	tc.backend.Commit()

	confirmation, err := client.WaitConfirmed(ctx, pending)
	require.NoError(t, err)
	assert.Equal(t, pending.PredictedAddress, confirmation.Address)
	assert.Equal(t, uint64(1), confirmation.BlockNumber)
	assert.NotZero(t, confirmation.GasUsed)

	code, err := tc.backend.Client().CodeAt(ctx, confirmation.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, code)

	t.Run("nonce advances", func(t *testing.T) {
		next, err := client.Submit(ctx, hexutil.MustDecode(stopContract))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), next.Nonce)
		assert.Equal(t, crypto.CreateAddress(tc.from, 1), next.PredictedAddress)
	})
}

func TestClientAcceptsAnyChainWhenUnset(t *testing.T) {
	tc := newTestChain(t)
	client := tc.client(0, &config.DeployerConfig{PrivateKey: tc.key})

	pending, err := client.Submit(context.Background(), hexutil.MustDecode(stopContract))
	require.NoError(t, err)
	assert.Equal(t, uint64(simulatedChainID), pending.ChainID)
}

func TestClientConfiguredFees(t *testing.T) {
	tc := newTestChain(t)
	deployer := &config.DeployerConfig{
		PrivateKey: tc.key,
		GasLimit:   100_000,
		GasFeeCap:  big.NewInt(5 * params.GWei),
		GasTipCap:  big.NewInt(2 * params.GWei),
	}
	client := tc.client(simulatedChainID, deployer)

	pending, err := client.Submit(context.Background(), hexutil.MustDecode(stopContract))
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000), pending.Tx.Gas())
	assert.Equal(t, big.NewInt(5*params.GWei), pending.Tx.GasFeeCap())
	assert.Equal(t, big.NewInt(2*params.GWei), pending.Tx.GasTipCap())
}

func TestClientFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("chain id mismatch", func(t *testing.T) {
		tc := newTestChain(t)
		client := tc.client(1, &config.DeployerConfig{PrivateKey: tc.key})

		_, err := client.Submit(ctx, hexutil.MustDecode(stopContract))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNetworkMismatch)
		assert.Contains(t, err.Error(), "expected chain ID 1, got 1337")
	})

	t.Run("unfunded deployer is rejected", func(t *testing.T) {
		tc := newTestChain(t)
		poor, err := crypto.GenerateKey()
		require.NoError(t, err)
		client := tc.client(simulatedChainID, &config.DeployerConfig{PrivateKey: poor})

		_, err = client.Submit(ctx, hexutil.MustDecode(stopContract))
		require.Error(t, err)
	})

	t.Run("missing key", func(t *testing.T) {
		tc := newTestChain(t)
		client := tc.client(simulatedChainID, &config.DeployerConfig{})

		_, err := client.Submit(ctx, hexutil.MustDecode(stopContract))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no deployer key")
	})

	t.Run("fee cap below tip", func(t *testing.T) {
		tc := newTestChain(t)
		client := tc.client(simulatedChainID, &config.DeployerConfig{
			PrivateKey: tc.key,
			GasFeeCap:  big.NewInt(1),
			GasTipCap:  big.NewInt(2),
		})

		_, err := client.Submit(ctx, hexutil.MustDecode(stopContract))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "below tip cap")
	})

	t.Run("constructor revert", func(t *testing.T) {
		tc := newTestChain(t)
		client := tc.client(simulatedChainID, &config.DeployerConfig{PrivateKey: tc.key, GasLimit: 100_000})

		pending, err := client.Submit(ctx, hexutil.MustDecode(revertContract))
		require.NoError(t, err)
		tc.backend.Commit()

		_, err = client.WaitConfirmed(ctx, pending)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrTransactionReverted)
	})

	t.Run("wait honours cancellation", func(t *testing.T) {
		tc := newTestChain(t)
		client := tc.client(simulatedChainID, &config.DeployerConfig{PrivateKey: tc.key})

		pending, err := client.Submit(ctx, hexutil.MustDecode(stopContract))
		require.NoError(t, err)

		// Never committed, so the receipt never appears
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = client.WaitConfirmed(cancelled, pending)
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// preLondonBackend serves headers without a base fee and records what is sent
type preLondonBackend struct {
	chainID  *big.Int
	gasPrice *big.Int
	sent     []*types.Transaction
}

func (b *preLondonBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}

func (b *preLondonBackend) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	return nil, nil
}

func (b *preLondonBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return b.chainID, nil
}

func (b *preLondonBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 7, nil
}

func (b *preLondonBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return nil, errors.New("eth_maxPriorityFeePerGas not supported")
}

func (b *preLondonBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return b.gasPrice, nil
}

func (b *preLondonBackend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(5)}, nil
}

func (b *preLondonBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 50_000, nil
}

func (b *preLondonBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	b.sent = append(b.sent, tx)
	return nil
}

func TestClientLegacyTransactionWithoutBaseFee(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	network := &config.Network{Name: "legacy", ChainID: 56}

	t.Run("suggested gas price", func(t *testing.T) {
		backend := &preLondonBackend{chainID: big.NewInt(56), gasPrice: big.NewInt(3 * params.GWei)}
		client := newClient(network, &config.DeployerConfig{PrivateKey: key}, backend, log)

		pending, err := client.Submit(context.Background(), hexutil.MustDecode(stopContract))
		require.NoError(t, err)
		require.Len(t, backend.sent, 1)

		tx := backend.sent[0]
		assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
		assert.Equal(t, big.NewInt(3*params.GWei), tx.GasPrice())
		assert.Equal(t, uint64(60_000), tx.Gas())
		assert.Equal(t, uint64(7), tx.Nonce())
		assert.Nil(t, tx.To())
		assert.Equal(t, big.NewInt(56), tx.ChainId())

		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(56)), tx)
		require.NoError(t, err)
		assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), sender)
		assert.Equal(t, crypto.CreateAddress(sender, 7), pending.PredictedAddress)
	})

	t.Run("configured fee cap is the gas price", func(t *testing.T) {
		backend := &preLondonBackend{chainID: big.NewInt(56), gasPrice: big.NewInt(3 * params.GWei)}
		client := newClient(network, &config.DeployerConfig{
			PrivateKey: key,
			GasFeeCap:  big.NewInt(10 * params.GWei),
		}, backend, log)

		_, err := client.Submit(context.Background(), hexutil.MustDecode(stopContract))
		require.NoError(t, err)
		require.Len(t, backend.sent, 1)
		assert.Equal(t, uint8(types.LegacyTxType), backend.sent[0].Type())
		assert.Equal(t, big.NewInt(10*params.GWei), backend.sent[0].GasPrice())
	})
}
