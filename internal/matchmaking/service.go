// Package matchmaking pairs open duels with identical terms. A creator posts
// their duel to the queue; when a compatible counterpart is already waiting,
// the two parties join each other's duels so both go live.
package matchmaking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/duel"
	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

// Joiner executes the join leg of a match. Satisfied by the duel engine.
type Joiner interface {
	Join(ctx context.Context, duelID, joiner string) (*store.Duel, error)
}

type Repository interface {
	GetDuel(ctx context.Context, id string) (*store.Duel, error)
	MatchOrEnqueue(ctx context.Context, e *store.MatchQueueEntry) (*store.MatchQueueEntry, error)
	RollbackMatch(ctx context.Context, counterpartID, entryID string) error
	ExpireMatchEntries(ctx context.Context, now time.Time) (int64, error)
	GetMatchEntryByDuel(ctx context.Context, duelID string) (*store.MatchQueueEntry, error)
}

// Result reports the outcome of a queue post. When Matched is false the
// entry waits in the queue until a counterpart arrives or the window lapses.
type Result struct {
	Matched           bool
	Entry             *store.MatchQueueEntry
	CounterpartDuelID string
	Duel              *store.Duel
}

type Service struct {
	repo   Repository
	joiner Joiner
	window time.Duration
	now    func() time.Time
}

func NewService(repo Repository, joiner Joiner, window time.Duration) *Service {
	return &Service{repo: repo, joiner: joiner, window: window, now: time.Now}
}

// Post enters an open duel into the matching queue. Matching is exact on
// asset, type, duration, and stake. On a match both sides are joined: the
// counterpart joins the caller's duel and the caller joins the counterpart's.
// If the second join fails the first one stands; the chain already holds it.
func (s *Service) Post(ctx context.Context, duelID, caller string) (*Result, error) {
	d, err := s.repo.GetDuel(ctx, duelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, duel.ErrNotFound
		}
		return nil, err
	}
	if d.CreatorAddress != caller {
		return nil, duel.ErrNotCreator
	}
	if d.Status != store.DuelStatusOpen {
		return nil, duel.ErrWrongStatus
	}
	if d.OnChainID == nil {
		return nil, duel.ErrNotOnChain
	}

	entry := &store.MatchQueueEntry{
		ID:            store.NewID(),
		DuelID:        d.ID,
		WalletAddress: d.CreatorAddress,
		Asset:         d.Asset,
		DuelType:      d.DuelType,
		DurationSec:   d.DurationSec,
		StakeWei:      d.StakeWei,
		ExpiresAt:     s.now().UTC().Add(s.window),
	}
	counterpart, err := s.repo.MatchOrEnqueue(ctx, entry)
	if err != nil {
		return nil, err
	}
	if counterpart == nil {
		log.Info().Str("duel_id", d.ID).Time("expires_at", entry.ExpiresAt).Msg("queued for matching")
		return &Result{Entry: entry}, nil
	}

	joined, err := s.joiner.Join(ctx, d.ID, counterpart.WalletAddress)
	if err != nil {
		log.Error().Err(err).Str("duel_id", d.ID).
			Str("counterpart", counterpart.WalletAddress).Msg("match join failed")
		// Neither duel went live; put the counterpart back in the pool and
		// drop the failed caller's entry.
		if rbErr := s.repo.RollbackMatch(ctx, counterpart.ID, entry.ID); rbErr != nil {
			log.Error().Err(rbErr).Str("counterpart_entry", counterpart.ID).Msg("match rollback failed")
		}
		return nil, err
	}
	if _, err := s.joiner.Join(ctx, counterpart.DuelID, caller); err != nil {
		log.Warn().Err(err).Str("duel_id", counterpart.DuelID).
			Str("joiner", caller).Msg("reverse match join failed")
	}
	log.Info().Str("duel_id", d.ID).Str("counterpart_duel_id", counterpart.DuelID).Msg("duels matched")
	return &Result{
		Matched:           true,
		Entry:             entry,
		CounterpartDuelID: counterpart.DuelID,
		Duel:              joined,
	}, nil
}

// Status returns the queue entry for a duel, if one exists.
func (s *Service) Status(ctx context.Context, duelID string) (*store.MatchQueueEntry, error) {
	e, err := s.repo.GetMatchEntryByDuel(ctx, duelID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, duel.ErrNotFound
	}
	return e, err
}

// SweepExpired marks waiting entries past their window as expired.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireMatchEntries(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("expired", n).Msg("expired stale match queue entries")
	}
	return n, nil
}
