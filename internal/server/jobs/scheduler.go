// Package jobs runs periodic maintenance for the server. Today that is the
// revocation ledger purge.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/robfig/cron/v3"
)

// PurgeAge is how long a revoked token stays in the ledger. It equals the
// token lifetime, so anything older has expired anyway.
const PurgeAge = 24 * time.Hour

// Ledger is the part of the revocation ledger the purge job needs.
type Ledger interface {
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	ledger   Ledger
	logger   logging.Logger
	schedule string

	mu      sync.Mutex
	started bool
}

// NewScheduler prepares a scheduler that purges ledger on schedule, which is
// any robfig/cron spec such as "@daily" or "0 3 * * *".
func NewScheduler(ledger Ledger, schedule string, logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ledger:   ledger,
		logger:   logger.With("job", "purge_blacklist"),
		schedule: schedule,
	}
}

// Start registers the purge job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, func() {
		_, _ = s.RunPurge(context.Background())
	}); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.started = true
	s.logger.Info(context.Background(), "purge job scheduled", "schedule", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
}

// RunPurge purges entries older than PurgeAge once and returns how many were removed.
func (s *Scheduler) RunPurge(ctx context.Context) (int64, error) {
	removed, err := s.ledger.PurgeOlderThan(ctx, PurgeAge)
	if err != nil {
		s.logger.Error(ctx, "blacklist purge failed", "error", err)
		return 0, err
	}

	remaining, err := s.ledger.Count(ctx)
	if err != nil {
		s.logger.Warn(ctx, "blacklist count failed", "error", err)
		return removed, nil
	}

	s.logger.Info(ctx, "blacklist purged", "removed", removed, "remaining", remaining)
	return removed, nil
}
