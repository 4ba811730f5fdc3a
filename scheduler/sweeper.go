package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_lending/models"
)

// Scanner runs one overdue check-in pass; *lending.Engine satisfies it.
type Scanner interface {
	FindOverdueCheckins(ctx context.Context) []models.Reservation
}

// Sweeper runs the overdue scan at start and then on every tick until its
// context is cancelled.
type Sweeper struct {
	scanner  Scanner
	lock     Locker
	interval time.Duration
	lockTTL  time.Duration
	log      *slog.Logger
}

// DefaultInterval is used when NewSweeper is given a non-positive interval.
const DefaultInterval = 4 * time.Hour

func NewSweeper(scanner Scanner, lock Locker, interval, lockTTL time.Duration, log *slog.Logger) *Sweeper {
	if lock == nil {
		lock = LocalLock{}
	}
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if lockTTL <= 0 {
		lockTTL = interval
	}
	return &Sweeper{scanner: scanner, lock: lock, interval: interval, lockTTL: lockTTL, log: log}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.log.Info("overdue sweeper started", "interval", s.interval.String())
	s.Sweep(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("overdue sweeper stopped")
			return
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs a single pass if the lock can be taken. It reports whether the
// pass ran and how many overdue reservations it saw.
func (s *Sweeper) Sweep(ctx context.Context) (ran bool, n int) {
	release, ok, err := s.lock.Acquire(ctx, s.lockTTL)
	if err != nil {
		s.log.Error("sweep lock unavailable", "err", err)
		return false, 0
	}
	if !ok {
		s.log.Info("sweep skipped, another instance holds the lock")
		return false, 0
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("overdue sweep panicked", "panic", fmt.Sprint(r))
			ran, n = true, 0
		}
	}()

	start := time.Now()
	overdue := s.scanner.FindOverdueCheckins(ctx)
	s.log.Info("overdue sweep done", "overdue", len(overdue), "took", time.Since(start).String())
	return true, len(overdue)
}
