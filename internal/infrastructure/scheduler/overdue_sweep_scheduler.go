package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OverdueSweeper is the slice of the billing service the scheduler drives.
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, batchSize int) (int, error)
}

// OverdueSweepSchedulerConfig holds configuration for the overdue invoice sweep
type OverdueSweepSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is how often the sweep runs
	Interval time.Duration

	// BatchSize caps how many invoices a single sweep marks overdue
	BatchSize int

	// SweepTimeout is the maximum time for a single sweep run
	SweepTimeout time.Duration
}

// DefaultOverdueSweepSchedulerConfig returns default configuration
func DefaultOverdueSweepSchedulerConfig() OverdueSweepSchedulerConfig {
	return OverdueSweepSchedulerConfig{
		Enabled:      true,
		Interval:     time.Hour,
		BatchSize:    100,
		SweepTimeout: 5 * time.Minute,
	}
}

// OverdueSweepScheduler periodically marks pending invoices past their
// due date as overdue. Sweeps are best-effort: a failed run is logged
// and retried on the next tick.
type OverdueSweepScheduler struct {
	sweeper   OverdueSweeper
	logger    *zap.Logger
	config    OverdueSweepSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewOverdueSweepScheduler creates a new overdue sweep scheduler
func NewOverdueSweepScheduler(
	sweeper OverdueSweeper,
	logger *zap.Logger,
	config OverdueSweepSchedulerConfig,
) *OverdueSweepScheduler {
	return &OverdueSweepScheduler{
		sweeper: sweeper,
		logger:  logger,
		config:  config,
	}
}

// Start starts the sweep loop
func (s *OverdueSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Overdue sweep scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Overdue sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *OverdueSweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue sweep scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// runLoop sweeps once immediately, then on every tick
func (s *OverdueSweepScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.executeSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Overdue sweep loop stopping")
			return
		case <-ticker.C:
			s.executeSweep(ctx)
		}
	}
}

// executeSweep runs a single sweep with a timeout
func (s *OverdueSweepScheduler) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	start := time.Now()
	marked, err := s.sweeper.SweepOverdue(sweepCtx, s.config.BatchSize)
	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return
	}

	if marked > 0 {
		s.logger.Info("Overdue sweep completed",
			zap.Int("marked_overdue", marked),
			zap.Duration("duration", time.Since(start)),
		)
	} else {
		s.logger.Debug("Overdue sweep completed with nothing to do",
			zap.Duration("duration", time.Since(start)),
		)
	}
}
