package store

import (
	"context"
	"database/sql"
	"errors"
	"math/big"
	"time"
)

const duelColumns = `id, on_chain_id, asset, duel_type, stake_wei::text, duration_sec,
	creator_address, creator_direction, joiner_address, joiner_direction,
	start_price, end_price, started_at, ends_at, status, winner_address, draw,
	payout_wei::text, fee_wei::text, create_tx_hash, join_tx_hash, settle_tx_hash,
	cancel_tx_hash, created_at, updated_at`

type duelScanner interface {
	Scan(dest ...any) error
}

func scanDuel(row duelScanner) (*Duel, error) {
	var (
		d          Duel
		onChainID  sql.NullInt64
		stake      string
		joiner     sql.NullString
		joinerDir  sql.NullString
		startPrice sql.NullInt64
		endPrice   sql.NullInt64
		startedAt  sql.NullTime
		endsAt     sql.NullTime
		winner     sql.NullString
		payout     sql.NullString
		fee        sql.NullString
		joinTx     sql.NullString
		settleTx   sql.NullString
		cancelTx   sql.NullString
	)
	err := row.Scan(&d.ID, &onChainID, &d.Asset, &d.DuelType, &stake, &d.DurationSec,
		&d.CreatorAddress, &d.CreatorDirection, &joiner, &joinerDir,
		&startPrice, &endPrice, &startedAt, &endsAt, &d.Status, &winner, &d.Draw,
		&payout, &fee, &d.CreateTxHash, &joinTx, &settleTx,
		&cancelTx, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.StakeWei, err = parseWei(stake); err != nil {
		return nil, err
	}
	if d.PayoutWei, err = weiFromNull(payout); err != nil {
		return nil, err
	}
	if d.FeeWei, err = weiFromNull(fee); err != nil {
		return nil, err
	}
	if onChainID.Valid {
		d.OnChainID = &onChainID.Int64
	}
	if joiner.Valid {
		d.JoinerAddress = &joiner.String
	}
	if joinerDir.Valid {
		dir := Direction(joinerDir.String)
		d.JoinerDirection = &dir
	}
	if startPrice.Valid {
		d.StartPrice = &startPrice.Int64
	}
	if endPrice.Valid {
		d.EndPrice = &endPrice.Int64
	}
	if startedAt.Valid {
		d.StartedAt = &startedAt.Time
	}
	if endsAt.Valid {
		d.EndsAt = &endsAt.Time
	}
	if winner.Valid {
		d.WinnerAddress = &winner.String
	}
	if joinTx.Valid {
		d.JoinTxHash = &joinTx.String
	}
	if settleTx.Valid {
		d.SettleTxHash = &settleTx.String
	}
	if cancelTx.Valid {
		d.CancelTxHash = &cancelTx.String
	}
	return &d, nil
}

// CreateDuel records a duel that has already confirmed on-chain as open.
func (s *Store) CreateDuel(ctx context.Context, d *Duel) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO duels (id, on_chain_id, asset, duel_type, stake_wei, duration_sec,
			creator_address, creator_direction, status, create_tx_hash)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'open',$9)
	`, d.ID, d.OnChainID, d.Asset, d.DuelType, weiString(d.StakeWei), d.DurationSec,
		d.CreatorAddress, d.CreatorDirection, d.CreateTxHash)
	return err
}

func (s *Store) GetDuel(ctx context.Context, id string) (*Duel, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+duelColumns+` FROM duels WHERE id = $1`, id)
	return scanDuel(row)
}

func (s *Store) GetDuelByChainID(ctx context.Context, onChainID int64) (*Duel, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+duelColumns+` FROM duels WHERE on_chain_id = $1`, onChainID)
	return scanDuel(row)
}

func (s *Store) ListDuelsByStatus(ctx context.Context, status DuelStatus, limit, offset int) ([]Duel, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.DB.QueryContext(ctx, `SELECT `+duelColumns+` FROM duels ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		rows, err = s.DB.QueryContext(ctx, `SELECT `+duelColumns+` FROM duels WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, status, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Duel{}
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ListExpiredLive returns live duels whose duration has elapsed, oldest
// expiry first, for the settlement sweep.
func (s *Store) ListExpiredLive(ctx context.Context, now time.Time, limit int) ([]Duel, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+duelColumns+` FROM duels
		WHERE status = 'live' AND ends_at <= $1
		ORDER BY ends_at ASC LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Duel{}
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *Store) CountLiveByWallet(ctx context.Context, wallet string) (int, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM duels
		WHERE status = 'live' AND (creator_address = $1 OR joiner_address = $1)
	`, wallet)
	var c int
	if err := row.Scan(&c); err != nil {
		return 0, err
	}
	return c, nil
}

// SyncJoined moves an open duel to live. Redelivery of the same confirming
// hash is a no-op; any other mismatch reports ErrStaleStatus.
func (s *Store) SyncJoined(ctx context.Context, id, joiner string, dir Direction, startPrice int64, startedAt, endsAt time.Time, txHash string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE duels SET joiner_address = $2, joiner_direction = $3, start_price = $4,
			started_at = $5, ends_at = $6, status = 'live', join_tx_hash = $7, updated_at = now()
		WHERE id = $1 AND status = 'open' AND join_tx_hash IS NULL
	`, id, joiner, dir, startPrice, startedAt, endsAt, txHash)
	if err != nil {
		return err
	}
	return s.checkSynced(ctx, res, id, "join_tx_hash", txHash)
}

// SyncSettled finalizes a live duel. winner is nil for a draw.
func (s *Store) SyncSettled(ctx context.Context, id string, endPrice int64, winner *string, draw bool, payoutWei, feeWei *big.Int, txHash string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE duels SET end_price = $2, winner_address = $3, draw = $4, payout_wei = $5,
			fee_wei = $6, status = 'settled', settle_tx_hash = $7, updated_at = now()
		WHERE id = $1 AND status = 'live' AND settle_tx_hash IS NULL
	`, id, endPrice, winner, draw, weiString(payoutWei), weiString(feeWei), txHash)
	if err != nil {
		return err
	}
	return s.checkSynced(ctx, res, id, "settle_tx_hash", txHash)
}

func (s *Store) SyncCancelled(ctx context.Context, id, txHash string) error {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE duels SET status = 'cancelled', cancel_tx_hash = $2, updated_at = now()
		WHERE id = $1 AND (status = 'open' OR (status = 'cancelled' AND cancel_tx_hash IS NULL))
	`, id, txHash)
	if err != nil {
		return err
	}
	return s.checkSynced(ctx, res, id, "cancel_tx_hash", txHash)
}

func (s *Store) checkSynced(ctx context.Context, res sql.Result, id, hashColumn, txHash string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+hashColumn+` FROM duels WHERE id = $1`, id)
	var recorded sql.NullString
	if err := row.Scan(&recorded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if recorded.Valid && recorded.String == txHash {
		return nil
	}
	return ErrStaleStatus
}

// ChainView carries the authoritative chain-derived fields used by
// reconciliation. Tx hash columns are left untouched: a transition applied
// by reconciliation has no locally known confirming transaction.
type ChainView struct {
	Status          DuelStatus
	JoinerAddress   *string
	JoinerDirection *Direction
	StartPrice      *int64
	StartedAt       *time.Time
	EndsAt          *time.Time
	EndPrice        *int64
	WinnerAddress   *string
	Draw            bool
	PayoutWei       *big.Int
	FeeWei          *big.Int
}

// ApplyChainState forces the local record forward to match the chain.
// Terminal rows and rows already at the target status are left alone; the
// returned flag reports whether anything changed.
func (s *Store) ApplyChainState(ctx context.Context, id string, v ChainView) (bool, error) {
	var res sql.Result
	var err error
	switch v.Status {
	case DuelStatusLive:
		res, err = s.DB.ExecContext(ctx, `
			UPDATE duels SET joiner_address = $2, joiner_direction = $3, start_price = $4,
				started_at = $5, ends_at = $6, status = 'live', updated_at = now()
			WHERE id = $1 AND status = 'open'
		`, id, v.JoinerAddress, v.JoinerDirection, v.StartPrice, v.StartedAt, v.EndsAt)
	case DuelStatusSettled:
		res, err = s.DB.ExecContext(ctx, `
			UPDATE duels SET joiner_address = COALESCE($2, joiner_address),
				joiner_direction = COALESCE($3, joiner_direction),
				end_price = COALESCE($4, end_price), winner_address = $5, draw = $6,
				payout_wei = $7, fee_wei = $8, status = 'settled', updated_at = now()
			WHERE id = $1 AND status IN ('open', 'live')
		`, id, v.JoinerAddress, v.JoinerDirection, v.EndPrice, v.WinnerAddress, v.Draw,
			weiString(v.PayoutWei), weiString(v.FeeWei))
	case DuelStatusCancelled:
		res, err = s.DB.ExecContext(ctx, `
			UPDATE duels SET status = 'cancelled', updated_at = now()
			WHERE id = $1 AND status = 'open'
		`, id)
	default:
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
