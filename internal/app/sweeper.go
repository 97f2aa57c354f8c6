package app

import (
	"context"
	"log"
	"time"

	"github.com/cimillas/reservation-engine/internal/clock"
)

// Sweeper periodically finalizes reservations whose holds lapsed without a
// confirm or cancel. Lazy expiry already hides lapsed holds from every read
// and acquire path; the sweeper exists so owners' reservations reach their
// terminal state (and the archive) without waiting to be queried.
type Sweeper struct {
	svc      *ReservationService
	clock    clock.Clock
	interval time.Duration
	logger   *log.Logger
}

const defaultSweepInterval = 30 * time.Second

func NewSweeper(svc *ReservationService, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		svc:      svc,
		clock:    svc.clock,
		interval: defaultSweepInterval,
		logger:   svc.logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SweeperOption func(*Sweeper)

// WithSweepInterval overrides how often the sweep runs.
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.svc.ExpireDue(ctx, s.clock.Now()); n > 0 {
				s.logger.Printf("sweep expired %d reservation(s)", n)
			}
		}
	}
}
