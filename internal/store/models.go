package store

import (
	"math/big"
	"time"
)

type DuelStatus string

const (
	DuelStatusOpen      DuelStatus = "open"
	DuelStatusLive      DuelStatus = "live"
	DuelStatusSettled   DuelStatus = "settled"
	DuelStatusCancelled DuelStatus = "cancelled"
)

type DuelType string

const (
	DuelTypePriceDirection DuelType = "price-direction"
	DuelTypeRandom         DuelType = "random"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Opposite returns the other side of a binary wager.
func (d Direction) Opposite() Direction {
	if d == DirectionUp {
		return DirectionDown
	}
	return DirectionUp
}

// Duel mirrors one escrowed wager. The row is only ever written after the
// corresponding chain transaction confirmed; tx hash columns record which
// confirmation produced each transition.
type Duel struct {
	ID               string
	OnChainID        *int64
	Asset            string
	DuelType         DuelType
	StakeWei         *big.Int
	DurationSec      int64
	CreatorAddress   string
	CreatorDirection Direction
	JoinerAddress    *string
	JoinerDirection  *Direction
	StartPrice       *int64
	EndPrice         *int64
	StartedAt        *time.Time
	EndsAt           *time.Time
	Status           DuelStatus
	WinnerAddress    *string
	Draw             bool
	PayoutWei        *big.Int
	FeeWei           *big.Int
	CreateTxHash     string
	JoinTxHash       *string
	SettleTxHash     *string
	CancelTxHash     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsParticipant reports whether the wallet is on either side of the duel.
func (d *Duel) IsParticipant(wallet string) bool {
	if d.CreatorAddress == wallet {
		return true
	}
	return d.JoinerAddress != nil && *d.JoinerAddress == wallet
}

const (
	MatchStatusWaiting = "waiting"
	MatchStatusMatched = "matched"
	MatchStatusExpired = "expired"
)

type MatchQueueEntry struct {
	ID            string
	DuelID        string
	WalletAddress string
	Asset         string
	DuelType      DuelType
	DurationSec   int64
	StakeWei      *big.Int
	Status        string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

type HouseBotConfig struct {
	Enabled           bool
	WalletAddress     string
	MaxStakeWei       *big.Int
	DailyLossCapWei   *big.Int
	DailyLossWei      *big.Int
	LossWindowStarted time.Time
	MaxConcurrent     int
	AllowedAssets     []string
	AllowedTypes      []string
	UpdatedAt         time.Time
}

type LeaderboardRow struct {
	WalletAddress string
	Wins          int64
	Losses        int64
	Draws         int64
	NetWei        *big.Int
}
