package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/trebuchet-org/kyc-deploy/internal/domain"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/config"
	"github.com/trebuchet-org/kyc-deploy/internal/domain/models"
	"github.com/trebuchet-org/kyc-deploy/internal/usecase"
)

// Backend is the subset of the JSON-RPC surface needed to deploy a contract.
// Both *ethclient.Client and the simulated backend satisfy it.
type Backend interface {
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Client implements usecase.ChainClient on top of an Ethereum RPC endpoint.
// The connection is opened on the first Submit.
type Client struct {
	network  *config.Network
	deployer *config.DeployerConfig
	log      *slog.Logger

	dial    func(ctx context.Context) (Backend, error)
	mu      sync.Mutex
	backend Backend
	chainID *big.Int
	closer  func()
}

// NewClient creates a chain client for the resolved network and deployer
func NewClient(cfg *config.RuntimeConfig, log *slog.Logger) *Client {
	c := newClient(cfg.Network, cfg.Deployer, nil, log)
	c.dial = func(ctx context.Context) (Backend, error) {
		client, err := ethclient.DialContext(ctx, cfg.Network.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RPC %s: %w", cfg.Network.RPCURL, err)
		}
		c.closer = client.Close
		return client, nil
	}
	return c
}

func newClient(network *config.Network, deployer *config.DeployerConfig, backend Backend, log *slog.Logger) *Client {
	c := &Client{
		network:  network,
		deployer: deployer,
		log:      log.With("component", "ChainClient", "network", network.Name),
	}
	if backend != nil {
		c.dial = func(context.Context) (Backend, error) { return backend, nil }
	}
	return c
}

// connect dials once and verifies the chain id
func (c *Client) connect(ctx context.Context) (Backend, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		return c.backend, c.chainID, nil
	}

	backend, err := c.dial(ctx)
	if err != nil {
		return nil, nil, err
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if c.network.ChainID != 0 && chainID.Uint64() != c.network.ChainID {
		return nil, nil, fmt.Errorf("%w: expected chain ID %d, got %d",
			domain.ErrNetworkMismatch, c.network.ChainID, chainID.Uint64())
	}

	c.log.Debug("connected", "rpc", c.network.RPCURL, "chainId", chainID)
	c.backend = backend
	c.chainID = chainID
	return backend, chainID, nil
}

// Submit signs and sends a contract creation transaction
func (c *Client) Submit(ctx context.Context, creationCode []byte) (*usecase.PendingTx, error) {
	if c.deployer == nil || c.deployer.PrivateKey == nil {
		return nil, fmt.Errorf("no deployer key configured")
	}

	backend, chainID, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	from := crypto.PubkeyToAddress(c.deployer.PrivateKey.PublicKey)
	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce for %s: %w", from.Hex(), err)
	}

	fees, err := c.fees(ctx, backend)
	if err != nil {
		return nil, err
	}

	gasLimit := c.deployer.GasLimit
	if gasLimit == 0 {
		estimated, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: from, Data: creationCode})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		// 20% headroom over the estimate
		gasLimit = estimated * 12 / 10
	}

	var tx *types.Transaction
	if fees.legacy {
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: fees.gasPrice,
			Gas:      gasLimit,
			Value:    big.NewInt(0),
			Data:     creationCode,
		})
	} else {
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: fees.tipCap,
			GasFeeCap: fees.feeCap,
			Gas:       gasLimit,
			Value:     big.NewInt(0),
			Data:      creationCode,
		})
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), c.deployer.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	predicted := crypto.CreateAddress(from, nonce)
	c.log.Debug("creation transaction sent",
		"tx", signed.Hash().Hex(),
		"from", from.Hex(),
		"nonce", nonce,
		"gas", gasLimit,
		"type", signed.Type(),
		"gasPrice", fees.gasPrice,
		"feeCap", fees.feeCap,
		"tipCap", fees.tipCap,
	)

	return &usecase.PendingTx{
		Submission: models.Submission{
			TxHash:           signed.Hash(),
			Nonce:            nonce,
			ChainID:          chainID.Uint64(),
			Deployer:         from,
			PredictedAddress: predicted,
		},
		Tx: signed,
	}, nil
}

// txFees is either a legacy gas price or an EIP-1559 tip/fee cap pair
type txFees struct {
	legacy   bool
	gasPrice *big.Int
	tipCap   *big.Int
	feeCap   *big.Int
}

// fees prices the transaction, preferring configured values. Chains whose
// latest header has no base fee get a legacy transaction.
func (c *Client) fees(ctx context.Context, backend Backend) (*txFees, error) {
	head, err := backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	if head.BaseFee == nil {
		gasPrice := c.deployer.GasFeeCap
		if gasPrice == nil {
			suggested, err := backend.SuggestGasPrice(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to suggest gas price: %w", err)
			}
			gasPrice = suggested
		}
		return &txFees{legacy: true, gasPrice: gasPrice}, nil
	}

	tipCap := c.deployer.GasTipCap
	if tipCap == nil {
		suggested, err := backend.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas tip cap: %w", err)
		}
		tipCap = suggested
	}

	feeCap := c.deployer.GasFeeCap
	if feeCap == nil {
		feeCap = new(big.Int).Add(tipCap, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	if feeCap.Cmp(tipCap) < 0 {
		return nil, fmt.Errorf("gas fee cap %s is below tip cap %s", feeCap, tipCap)
	}
	return &txFees{tipCap: tipCap, feeCap: feeCap}, nil
}

// WaitConfirmed blocks until the creation transaction is mined or ctx is done
func (c *Client) WaitConfirmed(ctx context.Context, pending *usecase.PendingTx) (*models.Confirmation, error) {
	backend, _, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	receipt, err := bind.WaitMined(ctx, backend, pending.Tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s: %w", pending.TxHash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: %s in block %d", domain.ErrTransactionReverted, pending.TxHash.Hex(), receipt.BlockNumber)
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, fmt.Errorf("receipt for %s has no contract address", pending.TxHash.Hex())
	}

	code, err := backend.CodeAt(ctx, receipt.ContractAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read code at %s: %w", receipt.ContractAddress.Hex(), err)
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("no code at %s after deployment", receipt.ContractAddress.Hex())
	}

	c.log.Debug("creation transaction mined",
		"tx", pending.TxHash.Hex(),
		"address", receipt.ContractAddress.Hex(),
		"block", receipt.BlockNumber,
		"gasUsed", receipt.GasUsed,
	)

	return &models.Confirmation{
		Address:     receipt.ContractAddress,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// Close releases the RPC connection if one was opened
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closer != nil {
		c.closer()
		c.closer = nil
	}
}

// Ensure the client implements the port
var _ usecase.ChainClient = (*Client)(nil)
