package escrow

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/config"
)

// backend is the subset of the ethclient surface the escrow client uses,
// kept as an interface so tests can stand in for a node.
type backend interface {
	bind.DeployBackend
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	BlockNumber(ctx context.Context) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Client issues the four escrow transitions against the DuelEscrow contract
// and decodes the typed events its receipts carry. Every mutating call waits
// for the transaction to be mined and then buried under the configured
// confirmation depth before it is reported as confirmed.
type Client struct {
	eth            backend
	abi            abi.ABI
	contract       common.Address
	key            *ecdsa.PrivateKey
	from           common.Address
	chainID        *big.Int
	confirmations  uint64
	confirmTimeout time.Duration
	gasLimit       uint64

	// nonceMu serializes the nonce-to-send window; the operator key is the
	// only signer, so concurrent transactions must not draw the same nonce.
	nonceMu sync.Mutex
}

func New(cfg config.ChainConfig) (*Client, error) {
	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial chain rpc: %w", err)
	}
	if !common.IsHexAddress(cfg.EscrowAddress) {
		return nil, fmt.Errorf("malformed escrow contract address %q", cfg.EscrowAddress)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse chain private key: %w", err)
	}
	timeout := time.Duration(cfg.ConfirmTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		eth:            eth,
		abi:            mustParseABI(),
		contract:       common.HexToAddress(cfg.EscrowAddress),
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		chainID:        big.NewInt(cfg.ChainID),
		confirmations:  cfg.Confirmations,
		confirmTimeout: timeout,
		gasLimit:       cfg.GasLimit,
	}, nil
}

// Create locks the creator's stake and returns the on-chain id assigned by
// the contract. An id of zero is never valid; a receipt without the creation
// event is rejected for manual reconciliation.
func (c *Client) Create(ctx context.Context, p CreateParams) (Confirmation, uint64, error) {
	receipt, conf, err := c.transact(ctx, "createDuel",
		p.Creator, p.Asset, p.DuelType, p.Direction, p.DurationSec, p.StakeWei)
	if err != nil {
		return Confirmation{}, 0, err
	}
	ev, err := c.decodeCreated(receipt)
	if err != nil {
		return Confirmation{}, 0, err
	}
	return conf, ev.DuelID.Uint64(), nil
}

// Join locks the joiner's stake against an open duel, committing the start
// price submitted here as the contract's ground truth.
func (c *Client) Join(ctx context.Context, onChainID uint64, joiner common.Address, direction uint8, startPrice int64) (Confirmation, error) {
	receipt, conf, err := c.transact(ctx, "joinDuel",
		new(big.Int).SetUint64(onChainID), joiner, direction, big.NewInt(startPrice))
	if err != nil {
		return Confirmation{}, err
	}
	if _, err := c.decodeJoined(receipt); err != nil {
		return Confirmation{}, err
	}
	return conf, nil
}

// Settle performs the on-chain payout and returns the contract's resolved
// outcome. For random duels the contract ignores endPrice and resolves with
// its own randomness; the outcome is mirrored, never recomputed off-chain.
func (c *Client) Settle(ctx context.Context, onChainID uint64, endPrice int64) (SettleOutcome, Confirmation, error) {
	receipt, conf, err := c.transact(ctx, "settleDuel",
		new(big.Int).SetUint64(onChainID), big.NewInt(endPrice))
	if err != nil {
		return SettleOutcome{}, Confirmation{}, err
	}
	out, err := c.decodeSettled(receipt)
	if err != nil {
		return SettleOutcome{}, Confirmation{}, err
	}
	return *out, conf, nil
}

// Cancel refunds the creator's stake of an open duel. The same operation
// serves reclaim when the original cancellation did not carry the refund.
func (c *Client) Cancel(ctx context.Context, onChainID uint64) (Confirmation, error) {
	receipt, conf, err := c.transact(ctx, "cancelDuel", new(big.Int).SetUint64(onChainID))
	if err != nil {
		return Confirmation{}, err
	}
	if err := c.decodeCancelled(receipt); err != nil {
		return Confirmation{}, err
	}
	return conf, nil
}

// DuelState reads the contract's current view of a duel for reconciliation.
func (c *Client) DuelState(ctx context.Context, onChainID uint64) (ChainDuel, error) {
	callData, err := c.abi.Pack("getDuel", new(big.Int).SetUint64(onChainID))
	if err != nil {
		return ChainDuel{}, err
	}
	output, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: callData}, nil)
	if err != nil {
		return ChainDuel{}, fmt.Errorf("%w: getDuel: %v", ErrUnconfirmed, err)
	}
	vals, err := c.abi.Unpack("getDuel", output)
	if err != nil || len(vals) != 11 {
		return ChainDuel{}, fmt.Errorf("decode getDuel output: %v", err)
	}
	return ChainDuel{
		Status:     ChainStatus(vals[0].(uint8)),
		Creator:    vals[1].(common.Address),
		Joiner:     vals[2].(common.Address),
		StakeWei:   vals[3].(*big.Int),
		StartPrice: vals[4].(*big.Int),
		EndPrice:   vals[5].(*big.Int),
		Winner:     vals[6].(common.Address),
		PayoutWei:  vals[7].(*big.Int),
		FeeWei:     vals[8].(*big.Int),
		Draw:       vals[9].(bool),
		EndsAt:     vals[10].(uint64),
	}, nil
}

// Operator is the address the client signs with.
func (c *Client) Operator() common.Address {
	return c.from
}

func (c *Client) transact(ctx context.Context, method string, args ...any) (*types.Receipt, Confirmation, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, Confirmation{}, err
	}
	signed, err := c.signAndSend(ctx, method, data)
	if err != nil {
		return nil, Confirmation{}, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, c.eth, signed)
	if err != nil {
		return nil, Confirmation{}, fmt.Errorf("%w: wait %s: %v", ErrUnconfirmed, method, err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		reason := c.revertReason(ctx, signed, receipt.BlockNumber)
		return nil, Confirmation{}, fmt.Errorf("%w: %s: %s", ErrRejected, method, reason)
	}
	if err := c.waitConfirmations(waitCtx, receipt.BlockNumber); err != nil {
		return nil, Confirmation{}, err
	}
	log.Debug().Str("method", method).Str("tx", signed.Hash().Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).Msg("escrow transaction confirmed")
	return receipt, Confirmation{TxHash: signed.Hash().Hex(), BlockNumber: receipt.BlockNumber.Uint64()}, nil
}

func (c *Client) signAndSend(ctx context.Context, method string, data []byte) (*types.Transaction, error) {
	c.nonceMu.Lock()
	defer c.nonceMu.Unlock()
	nonce, err := c.eth.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrUnconfirmed, err)
	}
	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: gas price: %v", ErrUnconfirmed, err)
	}
	tx := types.NewTransaction(nonce, c.contract, big.NewInt(0), c.gasLimit, gasPrice, data)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, err
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("%w: send %s: %v", ErrUnconfirmed, method, err)
	}
	return signed, nil
}

// waitConfirmations blocks until the mined block is buried deep enough that
// a reorg replacing it is no longer a practical concern.
func (c *Client) waitConfirmations(ctx context.Context, mined *big.Int) error {
	if c.confirmations == 0 {
		return nil
	}
	target := new(big.Int).Add(mined, new(big.Int).SetUint64(c.confirmations))
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		head, err := c.eth.BlockNumber(ctx)
		if err == nil && new(big.Int).SetUint64(head).Cmp(target) >= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: confirmation depth not reached: %v", ErrUnconfirmed, ctx.Err())
		case <-ticker.C:
		}
	}
}

// revertReason replays the transaction as a call at the failing block and
// extracts the node's error string, best effort.
func (c *Client) revertReason(ctx context.Context, tx *types.Transaction, block *big.Int) string {
	msg := ethereum.CallMsg{
		From:     c.from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}
	_, err := c.eth.CallContract(ctx, msg, block)
	if err == nil {
		return "transaction reverted"
	}
	return strings.TrimPrefix(err.Error(), "execution reverted: ")
}
