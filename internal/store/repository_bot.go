package store

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"time"
)

const lossWindow = 24 * time.Hour

func weiOrZero(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func (s *Store) GetHouseBotConfig(ctx context.Context) (*HouseBotConfig, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT enabled, wallet_address, max_stake_wei::text, daily_loss_cap_wei::text,
			daily_loss_wei::text, loss_window_started_at, max_concurrent,
			allowed_assets, allowed_types, updated_at
		FROM house_bot_config WHERE id = 1
	`)
	var (
		cfg               HouseBotConfig
		maxStake, capWei  string
		lossWei           string
		assets, duelTypes string
	)
	err := row.Scan(&cfg.Enabled, &cfg.WalletAddress, &maxStake, &capWei,
		&lossWei, &cfg.LossWindowStarted, &cfg.MaxConcurrent,
		&assets, &duelTypes, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if cfg.MaxStakeWei, err = parseWei(maxStake); err != nil {
		return nil, err
	}
	if cfg.DailyLossCapWei, err = parseWei(capWei); err != nil {
		return nil, err
	}
	if cfg.DailyLossWei, err = parseWei(lossWei); err != nil {
		return nil, err
	}
	cfg.AllowedAssets = splitCSV(assets)
	cfg.AllowedTypes = splitCSV(duelTypes)
	return &cfg, nil
}

func (s *Store) UpsertHouseBotConfig(ctx context.Context, cfg *HouseBotConfig) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO house_bot_config (id, enabled, wallet_address, max_stake_wei,
			daily_loss_cap_wei, max_concurrent, allowed_assets, allowed_types)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    wallet_address = EXCLUDED.wallet_address,
		    max_stake_wei = EXCLUDED.max_stake_wei,
		    daily_loss_cap_wei = EXCLUDED.daily_loss_cap_wei,
		    max_concurrent = EXCLUDED.max_concurrent,
		    allowed_assets = EXCLUDED.allowed_assets,
		    allowed_types = EXCLUDED.allowed_types,
		    updated_at = now()
	`, cfg.Enabled, cfg.WalletAddress, weiOrZero(cfg.MaxStakeWei), weiOrZero(cfg.DailyLossCapWei),
		cfg.MaxConcurrent, joinCSV(cfg.AllowedAssets), joinCSV(cfg.AllowedTypes))
	return err
}

// EnsureHouseBotConfig seeds the singleton row on a fresh database and is a
// no-op when a row already exists, so admin edits survive restarts.
func (s *Store) EnsureHouseBotConfig(ctx context.Context, cfg *HouseBotConfig) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO house_bot_config (id, enabled, wallet_address, max_stake_wei,
			daily_loss_cap_wei, max_concurrent, allowed_assets, allowed_types)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING
	`, cfg.Enabled, cfg.WalletAddress, weiOrZero(cfg.MaxStakeWei), weiOrZero(cfg.DailyLossCapWei),
		cfg.MaxConcurrent, joinCSV(cfg.AllowedAssets), joinCSV(cfg.AllowedTypes))
	return err
}

// AddBotLoss accumulates a settlement loss into the rolling 24h window under
// a row lock, resetting the window first when it has lapsed. Concurrent
// engine instances all see a consistent running exposure.
func (s *Store) AddBotLoss(ctx context.Context, loss *big.Int, now time.Time) (*big.Int, error) {
	if loss == nil || loss.Sign() < 0 {
		return nil, errors.New("loss must be non-negative")
	}
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT daily_loss_wei::text, loss_window_started_at
		FROM house_bot_config WHERE id = 1 FOR UPDATE
	`)
	var (
		current     string
		windowStart time.Time
	)
	if err := row.Scan(&current, &windowStart); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	total, err := parseWei(current)
	if err != nil {
		return nil, err
	}
	if now.Sub(windowStart) >= lossWindow {
		total = new(big.Int).Set(loss)
		windowStart = now
	} else {
		total = new(big.Int).Add(total, loss)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE house_bot_config
		SET daily_loss_wei = $1, loss_window_started_at = $2, updated_at = now()
		WHERE id = 1
	`, total.String(), windowStart); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return total, nil
}
