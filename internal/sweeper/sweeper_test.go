package sweeper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"checkout-service/internal/metrics"
)

type mockRemover struct {
	mock.Mock
}

func (m *mockRemover) RemoveExpired(ctx context.Context, deadline time.Time) (int, error) {
	args := m.Called(ctx, deadline)
	return args.Int(0), args.Error(1)
}

type countingRemover struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingRemover) RemoveExpired(ctx context.Context, deadline time.Time) (int, error) {
	n := c.calls.Add(1)
	if c.fail && n == 1 {
		return 0, errors.New("deadlock found when trying to get lock")
	}
	return 1, nil
}

func TestSweeper_RunOnceUsesDeadline(t *testing.T) {
	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	remover := new(mockRemover)
	remover.On("RemoveExpired", mock.Anything, now.Add(-24*time.Hour)).Return(3, nil)

	m := metrics.New(prometheus.NewRegistry())
	s := New(remover, time.Hour, 24*time.Hour, zap.NewNop(), m)
	s.SetClock(func() time.Time { return now })

	assert.Equal(t, 3, s.RunOnce(context.Background()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweepRuns.WithLabelValues("ok")))
	remover.AssertExpectations(t)
}

func TestSweeper_RunOnceSwallowsErrors(t *testing.T) {
	remover := new(mockRemover)
	remover.On("RemoveExpired", mock.Anything, mock.Anything).Return(0, errors.New("connection refused"))

	m := metrics.New(prometheus.NewRegistry())
	s := New(remover, time.Hour, 24*time.Hour, zap.NewNop(), m)

	assert.Equal(t, 0, s.RunOnce(context.Background()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweepRuns.WithLabelValues("error")))
}

func TestSweeper_StartRunsImmediatelyAndKeepsGoingAfterFailure(t *testing.T) {
	remover := &countingRemover{fail: true}
	m := metrics.New(prometheus.NewRegistry())
	s := New(remover, 10*time.Millisecond, time.Hour, zap.NewNop(), m)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return remover.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	calls := remover.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, remover.calls.Load(), "no cycles after Stop")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweepRuns.WithLabelValues("error")))
}

func TestSweeper_StopWithoutStart(t *testing.T) {
	s := New(&countingRemover{}, time.Hour, time.Hour, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
	s.Stop()
}

func TestSweeper_StopWaitsForRunningCycle(t *testing.T) {
	release := make(chan struct{})
	var finished atomic.Bool
	var once sync.Once
	started := make(chan struct{})

	remover := new(mockRemover)
	remover.On("RemoveExpired", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		once.Do(func() { close(started) })
		<-release
		finished.Store(true)
	}).Return(0, nil)

	s := New(remover, time.Hour, time.Hour, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
	s.Start(context.Background())
	<-started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a cycle was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-stopped
	assert.True(t, finished.Load())
}
