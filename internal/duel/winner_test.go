package duel

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bentodar-netizen/honeycomb-duels/internal/escrow"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

func TestPriceOutcome(t *testing.T) {
	cases := []struct {
		name       string
		start, end int64
		winning    store.Direction
		draw       bool
	}{
		{"up wins", 61_000_00000000, 61_500_00000000, store.DirectionUp, false},
		{"down wins", 61_000_00000000, 60_999_99999999, store.DirectionDown, false},
		{"flat is a draw", 61_000_00000000, 61_000_00000000, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			winning, draw := PriceOutcome(tc.start, tc.end)
			if winning != tc.winning || draw != tc.draw {
				t.Fatalf("PriceOutcome(%d, %d) = (%q, %v), want (%q, %v)",
					tc.start, tc.end, winning, draw, tc.winning, tc.draw)
			}
		})
	}
}

func TestSplitPot(t *testing.T) {
	stake, _ := new(big.Int).SetString("10000000000000000", 10) // 0.01 BNB
	payout, fee := SplitPot(stake)
	if payout.String() != "18000000000000000" {
		t.Fatalf("payout = %s, want 18000000000000000", payout)
	}
	if fee.String() != "2000000000000000" {
		t.Fatalf("fee = %s, want 2000000000000000", fee)
	}
	pot := new(big.Int).Add(payout, fee)
	if pot.Cmp(new(big.Int).Mul(stake, big.NewInt(2))) != 0 {
		t.Fatalf("payout + fee = %s, want the whole pot", pot)
	}
}

func TestOutcomeDivergence(t *testing.T) {
	start := int64(61_000_00000000)
	joiner := joinerAddr
	joinerDir := store.DirectionDown
	d := &store.Duel{
		DuelType:         store.DuelTypePriceDirection,
		StakeWei:         big.NewInt(50_000),
		CreatorAddress:   creatorAddr,
		CreatorDirection: store.DirectionUp,
		JoinerAddress:    &joiner,
		JoinerDirection:  &joinerDir,
		StartPrice:       &start,
	}
	consistent := escrow.SettleOutcome{
		Winner:    common.HexToAddress(creatorAddr),
		PayoutWei: big.NewInt(90_000),
		FeeWei:    big.NewInt(10_000),
	}

	if note := outcomeDivergence(d, 62_000_00000000, consistent); note != "" {
		t.Fatalf("consistent settlement flagged: %s", note)
	}
	// Price moved down, so the contract should have paid the joiner.
	if note := outcomeDivergence(d, 60_000_00000000, consistent); note == "" {
		t.Fatal("wrong winner not flagged")
	}
	badSplit := consistent
	badSplit.PayoutWei = big.NewInt(95_000)
	badSplit.FeeWei = big.NewInt(5_000)
	if note := outcomeDivergence(d, 62_000_00000000, badSplit); note == "" {
		t.Fatal("wrong pot split not flagged")
	}
	if note := outcomeDivergence(d, start, consistent); note == "" {
		t.Fatal("missed draw not flagged")
	}

	random := *d
	random.DuelType = store.DuelTypeRandom
	if note := outcomeDivergence(&random, 0, consistent); note != "" {
		t.Fatalf("random duel checked against prices: %s", note)
	}
}

func TestSplitPotOddWei(t *testing.T) {
	payout, fee := SplitPot(big.NewInt(33))
	// Integer division rounds the fee down; the remainder goes to the winner.
	if fee.Int64() != 6 || payout.Int64() != 60 {
		t.Fatalf("SplitPot(33) = (%d, %d), want (60, 6)", payout.Int64(), fee.Int64())
	}
}
