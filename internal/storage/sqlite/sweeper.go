package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

const defaultSweepInterval = 10 * time.Minute

// Purger removes expired rows.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically purges expired sessions and their cached content.
type Sweeper struct {
	store    Purger
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper returns a Sweeper. A non-positive interval falls back to ten minutes.
func NewSweeper(store Purger, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.store.PurgeExpired(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Msg("sweeper: purge failed")
		}
		return
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Msg("sweeper: purged expired sessions")
	}
}
