package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pollscope/internal/infrastructure"
	"pollscope/pkg/contracts/domain"
)

// Refresher is the part of PollService the scheduler drives
type Refresher interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
}

// Scheduler refreshes poll data periodically
type Scheduler struct {
	refresher    Refresher
	interval     time.Duration
	fetchOnStart bool
	logger       *slog.Logger
}

// NewScheduler creates a scheduler. An interval of zero disables periodic
// refreshes; fetchOnStart still triggers the first one.
func NewScheduler(r Refresher, interval time.Duration, fetchOnStart bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		refresher:    r,
		interval:     interval,
		fetchOnStart: fetchOnStart,
		logger:       infrastructure.WithComponent(logger, "scheduler"),
	}
}

// Run blocks until ctx is done. Refresh failures are logged and the loop
// continues with the previous snapshot.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.fetchOnStart {
		s.tick(ctx)
	}

	if s.interval <= 0 {
		s.logger.Info("Periodic refresh disabled")
		<-ctx.Done()
		return nil
	}

	s.logger.Info("Periodic refresh started", slog.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.logger.Info("Periodic refresh stopped")
			return nil
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.refresher.Refresh(ctx); err != nil {
		if errors.Is(err, ErrSuperseded) || ctx.Err() != nil {
			return
		}
		s.logger.Warn("Scheduled refresh failed", slog.String("error", err.Error()))
	}
}
