package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionPruner removes expired login sessions.
type SessionPruner interface {
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron     *cron.Cron
	sessions SessionPruner
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a maintenance scheduler that prunes sessions every
// intervalMin minutes.
func NewScheduler(sessions SessionPruner, intervalMin int, logger *zap.Logger) *Scheduler {
	if intervalMin <= 0 {
		intervalMin = 15
	}

	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		interval: time.Duration(intervalMin) * time.Minute,
		logger:   logger,
		now:      time.Now,
	}
}

// Start prunes once and then schedules the recurring job.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("starting maintenance scheduler", zap.Duration("session_prune_interval", s.interval))

	s.PruneSessions(ctx)

	if _, err := s.cron.AddFunc(everySpec(s.interval), func() {
		s.PruneSessions(context.Background())
	}); err != nil {
		return fmt.Errorf("scheduling session pruning: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping maintenance scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance scheduler stopped")
}

// PruneSessions removes expired sessions and reports how many were removed.
func (s *Scheduler) PruneSessions(ctx context.Context) int64 {
	n, err := s.sessions.Prune(ctx, s.now())
	if err != nil {
		s.logger.Error("pruning sessions", zap.Error(err))
		return 0
	}
	if n > 0 {
		s.logger.Info("pruned expired sessions", zap.Int64("count", n))
	}
	return n
}

// NextRun returns when the prune job runs next, or nil when not scheduled.
func (s *Scheduler) NextRun() *time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return nil
	}
	next := entries[0].Next
	return &next
}

// everySpec converts an interval to a cron spec.
func everySpec(d time.Duration) string {
	return "@every " + d.String()
}
