package housebot

import (
	"fmt"
	"math/big"
	"slices"
	"time"

	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

// lossWindow is the rolling period the daily loss cap applies to.
const lossWindow = 24 * time.Hour

// windowLoss returns the loss accumulated inside the current window. A
// lapsed window counts as zero even before the stored counter is reset.
func windowLoss(cfg *store.HouseBotConfig, now time.Time) *big.Int {
	if now.Sub(cfg.LossWindowStarted) >= lossWindow {
		return big.NewInt(0)
	}
	if cfg.DailyLossWei == nil {
		return big.NewInt(0)
	}
	return cfg.DailyLossWei
}

// Evaluate decides whether the bot may take the open side of a duel. The
// returned reason is empty when the duel is acceptable and otherwise explains
// the first limit that blocked it.
func Evaluate(cfg *store.HouseBotConfig, d *store.Duel, liveCount int, now time.Time) (bool, string) {
	if !cfg.Enabled {
		return false, "bot is disabled"
	}
	if d.CreatorAddress == cfg.WalletAddress {
		return false, "cannot join own duel"
	}
	if d.Status != store.DuelStatusOpen {
		return false, "duel is not open"
	}
	if len(cfg.AllowedAssets) > 0 && !slices.Contains(cfg.AllowedAssets, d.Asset) {
		return false, fmt.Sprintf("asset %s is not allowed", d.Asset)
	}
	if len(cfg.AllowedTypes) > 0 && !slices.Contains(cfg.AllowedTypes, string(d.DuelType)) {
		return false, fmt.Sprintf("duel type %s is not allowed", d.DuelType)
	}
	if cfg.MaxStakeWei != nil && d.StakeWei.Cmp(cfg.MaxStakeWei) > 0 {
		return false, "stake exceeds per-duel ceiling"
	}
	if cfg.MaxConcurrent > 0 && liveCount >= cfg.MaxConcurrent {
		return false, "concurrent duel ceiling reached"
	}
	if cfg.DailyLossCapWei != nil && cfg.DailyLossCapWei.Sign() > 0 {
		// A further loss of this duel's stake must still fit under the cap.
		projected := new(big.Int).Add(windowLoss(cfg, now), d.StakeWei)
		if projected.Cmp(cfg.DailyLossCapWei) > 0 {
			return false, "daily loss ceiling reached"
		}
	}
	return true, ""
}
