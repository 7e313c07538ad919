// Package public serves the unauthenticated read side: duel listings,
// single-duel lookups, and the leaderboard.
package public

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

var (
	ErrBadStatus = errors.New("unknown duel status filter")
	ErrBadWindow = errors.New("unknown leaderboard window")
	ErrNotFound  = errors.New("duel not found")
)

type Repository interface {
	GetDuel(ctx context.Context, id string) (*store.Duel, error)
	ListDuelsByStatus(ctx context.Context, status store.DuelStatus, limit, offset int) ([]store.Duel, error)
	ListLeaderboard(ctx context.Context, windowStart *time.Time, limit, offset int) ([]store.LeaderboardRow, error)
}

// Reconciler refreshes a duel from the chain. Satisfied by the duel engine.
type Reconciler interface {
	Reconcile(ctx context.Context, id string) (*store.Duel, error)
}

type Service struct {
	repo Repository
	rec  Reconciler
	now  func() time.Time
}

func NewService(repo Repository, rec Reconciler) *Service {
	return &Service{repo: repo, rec: rec, now: time.Now}
}

// Duels lists duels newest first, optionally filtered by status.
func (s *Service) Duels(ctx context.Context, status string, limit, offset int) ([]DuelView, error) {
	switch store.DuelStatus(status) {
	case "", store.DuelStatusOpen, store.DuelStatusLive, store.DuelStatusSettled, store.DuelStatusCancelled:
	default:
		return nil, ErrBadStatus
	}
	duels, err := s.repo.ListDuelsByStatus(ctx, store.DuelStatus(status), limit, offset)
	if err != nil {
		return nil, err
	}
	views := make([]DuelView, 0, len(duels))
	for i := range duels {
		views = append(views, duelView(&duels[i]))
	}
	return views, nil
}

// Duel returns a single duel. Non-terminal duels are refreshed from the
// chain first so a reader never sees a state the contract has moved past;
// if the chain is unreachable the stored row is served as-is.
func (s *Service) Duel(ctx context.Context, id string) (*DuelView, error) {
	d, err := s.repo.GetDuel(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if d.Status == store.DuelStatusOpen || d.Status == store.DuelStatusLive {
		if fresh, err := s.rec.Reconcile(ctx, d.ID); err == nil {
			d = fresh
		} else {
			log.Debug().Err(err).Str("duel_id", d.ID).Msg("serving stored duel, chain refresh failed")
		}
	}
	v := duelView(d)
	return &v, nil
}

// Leaderboard aggregates settled duels per wallet. window is "24h", "7d",
// or empty for all time.
func (s *Service) Leaderboard(ctx context.Context, window string, limit, offset int) ([]LeaderboardEntry, error) {
	var windowStart *time.Time
	switch window {
	case "":
	case "24h":
		t := s.now().UTC().Add(-24 * time.Hour)
		windowStart = &t
	case "7d":
		t := s.now().UTC().Add(-7 * 24 * time.Hour)
		windowStart = &t
	default:
		return nil, ErrBadWindow
	}
	rows, err := s.repo.ListLeaderboard(ctx, windowStart, limit, offset)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, leaderboardEntry(r))
	}
	return entries, nil
}
