package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/lshigami/prepbank/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

// StaleAttemptCloser is the part of the attempt service the sweeper drives.
type StaleAttemptCloser interface {
	AbandonStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// AttemptSweeper periodically abandons in-progress attempts that were started
// too long ago.
type AttemptSweeper struct {
	cron         *cron.Cron
	closer       StaleAttemptCloser
	abandonAfter time.Duration
	timeout      time.Duration
}

func NewAttemptSweeper(cfg *config.Config, closer StaleAttemptCloser) (*AttemptSweeper, error) {
	if cfg.Attempts.AbandonAfter <= 0 {
		return nil, fmt.Errorf("ATTEMPT_ABANDON_AFTER must be positive, got %s", cfg.Attempts.AbandonAfter)
	}
	s := &AttemptSweeper{
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		closer:       closer,
		abandonAfter: cfg.Attempts.AbandonAfter,
		timeout:      time.Minute,
	}
	if _, err := s.cron.AddFunc(cfg.Attempts.SweepSchedule, s.Sweep); err != nil {
		return nil, fmt.Errorf("invalid ATTEMPT_SWEEP_SCHEDULE %q: %w", cfg.Attempts.SweepSchedule, err)
	}
	return s, nil
}

// Sweep runs one pass.
func (s *AttemptSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	n, err := s.closer.AbandonStale(ctx, s.abandonAfter)
	if err != nil {
		log.Error().Err(err).Msg("Attempt sweep failed")
		return
	}
	log.Debug().Int64("abandoned", n).Msg("Attempt sweep finished")
}

// Register ties the cron scheduler to the application lifecycle.
func Register(lc fx.Lifecycle, s *AttemptSweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.cron.Start()
			log.Info().Dur("abandonAfter", s.abandonAfter).Msg("Attempt sweeper started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-s.cron.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
}
