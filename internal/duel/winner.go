package duel

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/bentodar-netizen/honeycomb-duels/internal/escrow"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

// FeePercent is the house cut taken from the pot of a decided duel.
// Draws refund both stakes and take no fee.
const FeePercent = 10

// PriceOutcome decides a price-direction duel from its recorded prices.
// The returned direction is the winning side; draw is set when the price
// closed exactly where it started.
func PriceOutcome(startPrice, endPrice int64) (winning store.Direction, draw bool) {
	switch {
	case endPrice > startPrice:
		return store.DirectionUp, false
	case endPrice < startPrice:
		return store.DirectionDown, false
	default:
		return "", true
	}
}

// SplitPot computes the winner payout and house fee for a decided duel.
// The pot is both stakes combined.
func SplitPot(stakeWei *big.Int) (payout, fee *big.Int) {
	pot := new(big.Int).Mul(stakeWei, big.NewInt(2))
	fee = new(big.Int).Mul(pot, big.NewInt(FeePercent))
	fee.Div(fee, big.NewInt(100))
	payout = new(big.Int).Sub(pot, fee)
	return payout, fee
}

// outcomeDivergence compares the contract's settlement with the outcome the
// recorded prices imply. The contract's word stands regardless; a non-empty
// result flags an oracle or contract fault for operator attention.
func outcomeDivergence(d *store.Duel, endPrice int64, out escrow.SettleOutcome) string {
	if d.DuelType != store.DuelTypePriceDirection || d.StartPrice == nil {
		return ""
	}
	winning, draw := PriceOutcome(*d.StartPrice, endPrice)
	if draw != out.Draw {
		return fmt.Sprintf("prices imply draw=%t, contract settled draw=%t", draw, out.Draw)
	}
	if draw {
		return ""
	}
	expected := d.CreatorAddress
	if d.JoinerAddress != nil && winning != d.CreatorDirection {
		expected = *d.JoinerAddress
	}
	if got := strings.ToLower(out.Winner.Hex()); got != expected {
		return fmt.Sprintf("prices imply winner %s, contract paid %s", expected, got)
	}
	payout, fee := SplitPot(d.StakeWei)
	if out.PayoutWei == nil || out.FeeWei == nil ||
		payout.Cmp(out.PayoutWei) != 0 || fee.Cmp(out.FeeWei) != 0 {
		return fmt.Sprintf("pot split should be payout=%s fee=%s, contract paid payout=%s fee=%s",
			payout, fee, out.PayoutWei, out.FeeWei)
	}
	return ""
}
