package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const matchColumns = `id, duel_id, wallet_address, asset, duel_type, duration_sec,
	stake_wei::text, status, expires_at, created_at`

func scanMatchEntry(row duelScanner) (*MatchQueueEntry, error) {
	var (
		e     MatchQueueEntry
		stake string
	)
	err := row.Scan(&e.ID, &e.DuelID, &e.WalletAddress, &e.Asset, &e.DuelType,
		&e.DurationSec, &stake, &e.Status, &e.ExpiresAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.StakeWei, err = parseWei(stake); err != nil {
		return nil, err
	}
	return &e, nil
}

// MatchOrEnqueue looks for a compatible waiting entry from a different
// wallet. When one exists, both entries are recorded as matched in the same
// transaction and the counterpart is returned; otherwise the new entry is
// queued as waiting and nil is returned. SKIP LOCKED keeps two concurrent
// posts from grabbing the same counterpart.
func (s *Store) MatchOrEnqueue(ctx context.Context, e *MatchQueueEntry) (*MatchQueueEntry, error) {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM match_queue
		WHERE status = 'waiting' AND asset = $1 AND duel_type = $2
			AND duration_sec = $3 AND stake_wei = $4::numeric
			AND wallet_address <> $5 AND expires_at > now()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, e.Asset, e.DuelType, e.DurationSec, e.StakeWei.String(), e.WalletAddress)
	counterpart, err := scanMatchEntry(row)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	status := MatchStatusWaiting
	if counterpart != nil {
		status = MatchStatusMatched
		if _, err := tx.ExecContext(ctx, `UPDATE match_queue SET status = 'matched' WHERE id = $1`, counterpart.ID); err != nil {
			return nil, err
		}
		counterpart.Status = MatchStatusMatched
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO match_queue (id, duel_id, wallet_address, asset, duel_type, duration_sec, stake_wei, status, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, e.ID, e.DuelID, e.WalletAddress, e.Asset, e.DuelType, e.DurationSec, e.StakeWei.String(), status, e.ExpiresAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	e.Status = status
	return counterpart, nil
}

// RollbackMatch undoes a match whose join never landed on chain: the
// counterpart entry returns to waiting so its duel re-enters the pool, and
// the failed caller's entry is removed.
func (s *Store) RollbackMatch(ctx context.Context, counterpartID, entryID string) error {
	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE match_queue SET status = 'waiting' WHERE id = $1 AND status = 'matched'
	`, counterpartID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM match_queue WHERE id = $1`, entryID); err != nil {
		return err
	}
	return tx.Commit()
}

// ExpireMatchEntries sweeps waiting entries past their window.
func (s *Store) ExpireMatchEntries(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		UPDATE match_queue SET status = 'expired'
		WHERE status = 'waiting' AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) GetMatchEntryByDuel(ctx context.Context, duelID string) (*MatchQueueEntry, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT `+matchColumns+` FROM match_queue WHERE duel_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, duelID)
	return scanMatchEntry(row)
}
