// Package sweeper periodically removes orders that were never paid.
package sweeper

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"checkout-service/internal/metrics"
)

const (
	DefaultInterval = time.Hour
	DefaultMaxAge   = 24 * time.Hour
)

type ExpiredRemover interface {
	RemoveExpired(ctx context.Context, deadline time.Time) (int, error)
}

type Sweeper struct {
	remover  ExpiredRemover
	interval time.Duration
	maxAge   time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(r ExpiredRemover, interval, maxAge time.Duration, logger *zap.Logger, m *metrics.Metrics) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Sweeper{
		remover:  r,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// RunOnce performs a single cycle. Errors are logged and counted, not returned.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	deadline := s.now().Add(-s.maxAge)

	removed, err := s.remover.RemoveExpired(ctx, deadline)
	if err != nil {
		s.metrics.SweepRuns.WithLabelValues("error").Inc()
		s.logger.Error("failed to remove expired unpaid orders", zap.Error(err))
		return 0
	}

	s.metrics.SweepRuns.WithLabelValues("ok").Inc()
	s.logger.Info("expired unpaid orders removed",
		zap.Int("removed", removed),
		zap.Duration("max_age", s.maxAge),
		zap.Time("deadline", deadline))
	return removed
}

// Start runs a cycle immediately and then every interval until Stop or until
// ctx is cancelled. Calling Start twice is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx, s.done)
}

func (s *Sweeper) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.runSafely(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSafely(ctx)
		}
	}
}

func (s *Sweeper) runSafely(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.SweepRuns.WithLabelValues("error").Inc()
			s.logger.Error("expiration sweep panicked", zap.Any("panic", r))
		}
	}()
	s.RunOnce(ctx)
}

// Stop cancels the loop and waits for the running cycle to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
