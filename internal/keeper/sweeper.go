// Package keeper runs the background jobs that keep duels moving without
// user action: settling expired live duels, expiring stale match queue
// entries, and giving the house bot its scanning heartbeat.
package keeper

import (
	"context"
	"expvar"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/bentodar-netizen/honeycomb-duels/internal/store"
)

var (
	sweepRuns    = expvar.NewInt("keeper_sweep_runs_total")
	sweepSettled = expvar.NewInt("keeper_sweep_settled_total")
	sweepErrors  = expvar.NewInt("keeper_sweep_errors_total")
)

// sweepBatch bounds how many expired duels one sweep settles.
const sweepBatch = 100

type Settler interface {
	Settle(ctx context.Context, id string) (*store.Duel, error)
}

type Repository interface {
	ListExpiredLive(ctx context.Context, now time.Time, limit int) ([]store.Duel, error)
}

type Sweeper struct {
	repo    Repository
	settler Settler
	now     func() time.Time
}

func NewSweeper(repo Repository, settler Settler) *Sweeper {
	return &Sweeper{repo: repo, settler: settler, now: time.Now}
}

// SweepOnce settles every live duel past its end time. A duel that fails to
// settle, for instance because the oracle has no price right now, is left
// for the next pass.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	sweepRuns.Add(1)
	expired, err := s.repo.ListExpiredLive(ctx, s.now().UTC(), sweepBatch)
	if err != nil {
		sweepErrors.Add(1)
		return 0, err
	}
	settled := 0
	for i := range expired {
		d := &expired[i]
		if _, err := s.settler.Settle(ctx, d.ID); err != nil {
			sweepErrors.Add(1)
			log.Warn().Err(err).Str("duel_id", d.ID).Msg("sweep settle failed, will retry")
			continue
		}
		settled++
		sweepSettled.Add(1)
	}
	if settled > 0 {
		log.Info().Int("settled", settled).Int("expired", len(expired)).Msg("sweep finished")
	}
	return settled, nil
}

// Jobs are the other periodic tasks the scheduler drives alongside the
// settle sweep.
type Jobs struct {
	ExpireMatches func(ctx context.Context) (int64, error)
	BotScan       func(ctx context.Context) (int, error)
}

// Start schedules the settle sweep at the given interval plus the auxiliary
// jobs once a minute. A bad interval spec is reported before anything runs.
// The returned cron is already running; stop it to shut down.
func (s *Sweeper) Start(interval time.Duration, jobs Jobs) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	spec := "@every " + interval.String()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := s.SweepOnce(ctx); err != nil {
			log.Error().Err(err).Msg("settle sweep failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule settle sweep %q: %w", spec, err)
	}
	if _, err := c.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if jobs.ExpireMatches != nil {
			if _, err := jobs.ExpireMatches(ctx); err != nil {
				log.Error().Err(err).Msg("match queue sweep failed")
			}
		}
		if jobs.BotScan != nil {
			if _, err := jobs.BotScan(ctx); err != nil {
				log.Error().Err(err).Msg("bot scan failed")
			}
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule auxiliary jobs: %w", err)
	}
	c.Start()
	return c, nil
}
