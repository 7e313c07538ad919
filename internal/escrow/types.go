package escrow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Direction codes as stored by the contract.
const (
	DirectionUp   uint8 = 0
	DirectionDown uint8 = 1
)

// Duel type codes as stored by the contract.
const (
	TypePriceDirection uint8 = 0
	TypeRandom         uint8 = 1
)

// ChainStatus is the contract-side duel state.
type ChainStatus uint8

const (
	ChainStatusNone ChainStatus = iota
	ChainStatusOpen
	ChainStatusLive
	ChainStatusSettled
	ChainStatusCancelled
)

// Confirmation identifies a mined, confirmation-deep transaction.
type Confirmation struct {
	TxHash      string
	BlockNumber uint64
}

type CreateParams struct {
	Creator     common.Address
	Asset       string
	DuelType    uint8
	Direction   uint8
	DurationSec uint64
	StakeWei    *big.Int
}

// SettleOutcome mirrors the contract's DuelSettled event: the authoritative
// winner, payout, and fee.
type SettleOutcome struct {
	Winner    common.Address
	PayoutWei *big.Int
	FeeWei    *big.Int
	Draw      bool
}

// ChainDuel is the contract's current view of a duel, used for
// reconciliation.
type ChainDuel struct {
	Status     ChainStatus
	Creator    common.Address
	Joiner     common.Address
	StakeWei   *big.Int
	StartPrice *big.Int
	EndPrice   *big.Int
	Winner     common.Address
	PayoutWei  *big.Int
	FeeWei     *big.Int
	Draw       bool
	EndsAt     uint64
}
