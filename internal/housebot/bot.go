// Package housebot runs the liquidity bot. It periodically scans open duels
// and joins the ones that fit inside its configured risk limits, and it
// tracks realized losses against a rolling daily cap.
package housebot

import (
	"context"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

type Joiner interface {
	Join(ctx context.Context, duelID, joiner string) (*store.Duel, error)
}

type Repository interface {
	GetHouseBotConfig(ctx context.Context) (*store.HouseBotConfig, error)
	AddBotLoss(ctx context.Context, loss *big.Int, now time.Time) (*big.Int, error)
	ListDuelsByStatus(ctx context.Context, status store.DuelStatus, limit, offset int) ([]store.Duel, error)
	CountLiveByWallet(ctx context.Context, wallet string) (int, error)
}

type Bot struct {
	repo   Repository
	joiner Joiner
	now    func() time.Time
}

func New(repo Repository, joiner Joiner) *Bot {
	return &Bot{repo: repo, joiner: joiner, now: time.Now}
}

// scanLimit bounds how many open duels one pass considers.
const scanLimit = 50

// RunOnce scans open duels and joins every one the limits allow. Per-duel
// failures are logged and do not stop the pass; the number of joins is
// returned.
func (b *Bot) RunOnce(ctx context.Context) (int, error) {
	cfg, err := b.repo.GetHouseBotConfig(ctx)
	if err != nil {
		return 0, err
	}
	if !cfg.Enabled {
		return 0, nil
	}

	open, err := b.repo.ListDuelsByStatus(ctx, store.DuelStatusOpen, scanLimit, 0)
	if err != nil {
		return 0, err
	}
	joined := 0
	for i := range open {
		d := &open[i]
		liveCount, err := b.repo.CountLiveByWallet(ctx, cfg.WalletAddress)
		if err != nil {
			return joined, err
		}
		ok, reason := Evaluate(cfg, d, liveCount+joined, b.now())
		if !ok {
			log.Debug().Str("duel_id", d.ID).Str("reason", reason).Msg("bot skipped duel")
			continue
		}
		if _, err := b.joiner.Join(ctx, d.ID, cfg.WalletAddress); err != nil {
			log.Warn().Err(err).Str("duel_id", d.ID).Msg("bot join failed")
			continue
		}
		joined++
		log.Info().Str("duel_id", d.ID).Str("stake_wei", d.StakeWei.String()).Msg("bot joined duel")
	}
	return joined, nil
}

// HandleSettlement is a settlement hook. When the bot was on the losing side
// its stake is charged against the rolling daily loss counter.
func (b *Bot) HandleSettlement(ctx context.Context, d *store.Duel) {
	cfg, err := b.repo.GetHouseBotConfig(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bot settlement hook: load config")
		return
	}
	if cfg.WalletAddress == "" || !d.IsParticipant(cfg.WalletAddress) {
		return
	}
	if d.Draw || (d.WinnerAddress != nil && *d.WinnerAddress == cfg.WalletAddress) {
		return
	}
	total, err := b.repo.AddBotLoss(ctx, d.StakeWei, b.now())
	if err != nil {
		log.Error().Err(err).Str("duel_id", d.ID).Msg("bot settlement hook: record loss")
		return
	}
	log.Info().Str("duel_id", d.ID).Str("loss_wei", d.StakeWei.String()).
		Str("window_total_wei", total.String()).Msg("bot loss recorded")
}
