package store

import (
	"context"
	"time"
)

// ListLeaderboard aggregates per-wallet results over settled duels. A win
// nets payout minus the wallet's own stake, a loss nets minus the stake, a
// draw nets zero. windowStart of nil means all-time.
func (s *Store) ListLeaderboard(ctx context.Context, windowStart *time.Time, limit, offset int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		WITH sides AS (
			SELECT creator_address AS wallet, draw,
				winner_address IS NOT NULL AND winner_address = creator_address AS won,
				stake_wei, payout_wei, updated_at
			FROM duels WHERE status = 'settled'
			UNION ALL
			SELECT joiner_address AS wallet, draw,
				winner_address IS NOT NULL AND winner_address = joiner_address AS won,
				stake_wei, payout_wei, updated_at
			FROM duels WHERE status = 'settled' AND joiner_address IS NOT NULL
		)
		SELECT wallet,
			COUNT(1) FILTER (WHERE won) AS wins,
			COUNT(1) FILTER (WHERE NOT won AND NOT draw) AS losses,
			COUNT(1) FILTER (WHERE draw) AS draws,
			COALESCE(SUM(CASE
				WHEN won THEN COALESCE(payout_wei, 0) - stake_wei
				WHEN draw THEN 0
				ELSE -stake_wei
			END), 0)::text AS net_wei
		FROM sides
		WHERE ($1::timestamptz IS NULL OR updated_at >= $1)
		GROUP BY wallet
		ORDER BY SUM(CASE
			WHEN won THEN COALESCE(payout_wei, 0) - stake_wei
			WHEN draw THEN 0
			ELSE -stake_wei
		END) DESC
		LIMIT $2 OFFSET $3
	`, windowStart, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardRow{}
	for rows.Next() {
		var (
			r   LeaderboardRow
			net string
		)
		if err := rows.Scan(&r.WalletAddress, &r.Wins, &r.Losses, &r.Draws, &net); err != nil {
			return nil, err
		}
		if r.NetWei, err = parseWei(net); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
