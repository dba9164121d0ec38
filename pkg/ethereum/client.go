// Package ethereum settles gateway instructions on an EVM chain: native value
// transfers from the gateway wallet and ERC-20 transferFrom calls under
// allowances granted to it. It also verifies funding transactions as evidence
// of attached funds.
package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/chainsafe/custody-gateway/pkg/config"
	"github.com/chainsafe/custody-gateway/pkg/custody"
)

// nativeTransferGas is the intrinsic gas of a plain value transfer.
const nativeTransferGas = 21000

// ErrFundsEvidence is returned when a funding transaction does not prove the claimed attached funds.
var ErrFundsEvidence = errors.New("invalid funds evidence")

const erc20ABI = `[
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

// ChainClient is the subset of ethclient.Client the gateway uses.
type ChainClient interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// Client represents the gateway wallet on an Ethereum chain
type Client struct {
	config     *config.EthereumConfig
	chain      ChainClient
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	erc20      abi.ABI
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// Dial connects to cfg.RPCURL and returns a Client for the configured wallet.
func Dial(cfg *config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	chain, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}
	c, err := NewClient(cfg, chain, logger)
	if err != nil {
		chain.Close()
		return nil, err
	}
	return c, nil
}

// NewClient creates a Client on an existing chain connection.
func NewClient(cfg *config.EthereumConfig, chain ChainClient, logger *zap.Logger) (*Client, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.RelayerPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ethereum-rpc",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	c := &Client{
		config:     cfg,
		chain:      chain,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    big.NewInt(cfg.ChainID),
		erc20:      parsed,
		breaker:    breaker,
		logger:     logger,
	}

	logger.Info("Ethereum backend ready",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("gateway_address", c.address.Hex()))

	return c, nil
}

// Address is the gateway wallet. Funding transactions must be sent to it and
// ERC-20 allowances must be granted to it.
func (c *Client) Address() common.Address {
	return c.address
}

// Close closes the RPC connection
func (c *Client) Close() {
	c.chain.Close()
}

// call runs an RPC through the circuit breaker.
func call[T any](c *Client, fn func() (T, error)) (T, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}

type txLookup struct {
	tx      *types.Transaction
	pending bool
}

// VerifyFunding checks that fundsTx is a confirmed, successful value transfer
// from sender to the gateway wallet and returns it as attached funds.
func (c *Client) VerifyFunding(ctx context.Context, sender, fundsTx string) (custody.Coins, error) {
	if !strings.HasPrefix(fundsTx, "0x") || len(fundsTx) != 2+2*common.HashLength {
		return nil, fmt.Errorf("%w: malformed transaction hash %q", ErrFundsEvidence, fundsTx)
	}
	hash := common.HexToHash(fundsTx)

	found, err := call(c, func() (txLookup, error) {
		tx, pending, err := c.chain.TransactionByHash(ctx, hash)
		if errors.Is(err, geth.NotFound) {
			return txLookup{}, nil
		}
		return txLookup{tx: tx, pending: pending}, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", hash.Hex(), err)
	}
	if found.tx == nil {
		return nil, fmt.Errorf("%w: transaction %s not found", ErrFundsEvidence, hash.Hex())
	}
	if found.pending {
		return nil, fmt.Errorf("%w: transaction %s is pending", ErrFundsEvidence, hash.Hex())
	}
	tx := found.tx

	if tx.To() == nil || *tx.To() != c.address {
		return nil, fmt.Errorf("%w: transaction %s was not sent to the gateway", ErrFundsEvidence, hash.Hex())
	}
	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot recover sender: %v", ErrFundsEvidence, err)
	}
	if from != common.HexToAddress(sender) {
		return nil, fmt.Errorf("%w: transaction %s was sent by %s", ErrFundsEvidence, hash.Hex(), from.Hex())
	}

	receipt, err := call(c, func() (*types.Receipt, error) {
		return c.chain.TransactionReceipt(ctx, hash)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt %s: %w", hash.Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: transaction %s failed", ErrFundsEvidence, hash.Hex())
	}

	head, err := call(c, func() (uint64, error) {
		return c.chain.BlockNumber(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}
	mined := receipt.BlockNumber.Uint64()
	if head < mined || head-mined+1 < c.config.MinConfirmations {
		return nil, fmt.Errorf("%w: transaction %s is not confirmed", ErrFundsEvidence, hash.Hex())
	}

	return custody.Coins{{
		Denom:  c.config.NativeDenom,
		Amount: decimal.NewFromBigInt(tx.Value(), 0),
	}}, nil
}

// Execute submits the transaction carrying out ins and returns its hash.
func (c *Client) Execute(ctx context.Context, ins custody.Instruction) (common.Hash, error) {
	amount := ins.Amount.BigInt()

	switch ins.Type {
	case custody.InstructionNativeTransfer:
		if ins.Token != c.config.NativeDenom {
			return common.Hash{}, fmt.Errorf("unsupported native denomination %q", ins.Token)
		}
		return c.send(ctx, common.HexToAddress(ins.To), amount, nativeTransferGas, nil)

	case custody.InstructionDelegatedTransfer:
		data, err := c.erc20.Pack("transferFrom",
			common.HexToAddress(ins.From),
			common.HexToAddress(ins.To),
			amount)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to pack transferFrom: %w", err)
		}
		return c.send(ctx, common.HexToAddress(ins.Token), big.NewInt(0), c.config.GasLimit, data)

	default:
		return common.Hash{}, fmt.Errorf("unsupported instruction %q", ins.Type)
	}
}

func (c *Client) send(ctx context.Context, to common.Address, value *big.Int, gas uint64, data []byte) (common.Hash, error) {
	nonce, err := call(c, func() (uint64, error) {
		return c.chain.PendingNonceAt(ctx, c.address)
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := c.gasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if _, err := call(c, func() (struct{}, error) {
		return struct{}{}, c.chain.SendTransaction(ctx, signed)
	}); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	c.logger.Info("Submitted transaction",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce))
	return signed.Hash(), nil
}

// gasPrice returns the suggested gas price clamped to MaxGasPrice when configured.
func (c *Client) gasPrice(ctx context.Context) (*big.Int, error) {
	suggested, err := call(c, func() (*big.Int, error) {
		return c.chain.SuggestGasPrice(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	if c.config.MaxGasPrice == "" {
		return suggested, nil
	}

	maxGasPrice, ok := new(big.Int).SetString(c.config.MaxGasPrice, 10)
	if !ok {
		return nil, fmt.Errorf("invalid max_gas_price %q", c.config.MaxGasPrice)
	}
	if suggested.Cmp(maxGasPrice) > 0 {
		c.logger.Warn("Suggested gas price exceeds maximum",
			zap.String("suggested", suggested.String()),
			zap.String("max", maxGasPrice.String()))
		return maxGasPrice, nil
	}
	return suggested, nil
}
