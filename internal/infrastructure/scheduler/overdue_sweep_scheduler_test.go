package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSweeper struct {
	mu      sync.Mutex
	calls   int
	batches []int
	err     error
}

func (s *recordingSweeper) SweepOverdue(_ context.Context, batchSize int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.batches = append(s.batches, batchSize)
	if s.err != nil {
		return 0, s.err
	}
	return 2, nil
}

func (s *recordingSweeper) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestOverdueSweepScheduler(t *testing.T) {
	t.Run("sweeps immediately on start", func(t *testing.T) {
		sweeper := &recordingSweeper{}
		sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), OverdueSweepSchedulerConfig{
			Enabled:      true,
			Interval:     time.Hour,
			BatchSize:    50,
			SweepTimeout: time.Second,
		})

		require.NoError(t, sched.Start(context.Background()))
		defer sched.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return sweeper.callCount() >= 1
		}, time.Second, 10*time.Millisecond)

		sweeper.mu.Lock()
		defer sweeper.mu.Unlock()
		assert.Equal(t, 50, sweeper.batches[0])
	})

	t.Run("keeps ticking after a failed sweep", func(t *testing.T) {
		sweeper := &recordingSweeper{err: errors.New("db down")}
		sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), OverdueSweepSchedulerConfig{
			Enabled:      true,
			Interval:     20 * time.Millisecond,
			BatchSize:    10,
			SweepTimeout: time.Second,
		})

		require.NoError(t, sched.Start(context.Background()))
		defer sched.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return sweeper.callCount() >= 3
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("does nothing when disabled", func(t *testing.T) {
		sweeper := &recordingSweeper{}
		sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), OverdueSweepSchedulerConfig{
			Enabled: false,
		})

		require.NoError(t, sched.Start(context.Background()))
		time.Sleep(50 * time.Millisecond)
		assert.Zero(t, sweeper.callCount())
		require.NoError(t, sched.Stop(context.Background()))
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		sweeper := &recordingSweeper{}
		sched := NewOverdueSweepScheduler(sweeper, zap.NewNop(), DefaultOverdueSweepSchedulerConfig())

		require.NoError(t, sched.Start(context.Background()))
		require.NoError(t, sched.Stop(context.Background()))
		require.NoError(t, sched.Stop(context.Background()))
	})
}
