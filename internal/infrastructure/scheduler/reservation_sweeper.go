package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/stockledger/backend/internal/application/inventory"
	"go.uber.org/zap"
)

// ReservationExpirer stores the expired status on lapsed reservations
type ReservationExpirer interface {
	ExpireLapsed(ctx context.Context) (*inventory.ExpiryStats, error)
}

// SweeperConfig holds the reservation sweeper configuration
type SweeperConfig struct {
	Enabled  bool
	Interval time.Duration
	// RunTimeout bounds a single sweep
	RunTimeout time.Duration
}

// DefaultSweeperConfig returns the default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Enabled:    true,
		Interval:   5 * time.Minute,
		RunTimeout: time.Minute,
	}
}

// ReservationSweeper periodically persists the expired status of lapsed
// reservations. Availability never depends on it: reads already ignore
// lapsed holds. It only keeps stored status and listings tidy.
type ReservationSweeper struct {
	config  SweeperConfig
	expirer ReservationExpirer
	logger  *zap.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	lastRun   *inventory.ExpiryStats
}

// NewReservationSweeper creates a sweeper
func NewReservationSweeper(config SweeperConfig, expirer ReservationExpirer, logger *zap.Logger) *ReservationSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = DefaultSweeperConfig().RunTimeout
	}
	return &ReservationSweeper{
		config:  config,
		expirer: expirer,
		logger:  logger.Named("reservation_sweeper"),
	}
}

// Start launches the sweep loop. It is a no-op when disabled or running.
func (s *ReservationSweeper) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Reservation sweeper disabled")
		return nil
	}
	if s.config.Interval <= 0 {
		return ErrInvalidConfig
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Reservation sweeper started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep, or for ctx
func (s *ReservationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reservation sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *ReservationSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastRun returns the stats of the most recent successful sweep, or nil
func (s *ReservationSweeper) LastRun() *inventory.ExpiryStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// RunOnce performs a single sweep
func (s *ReservationSweeper) RunOnce(ctx context.Context) (*inventory.ExpiryStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	stats, err := s.expirer.ExpireLapsed(ctx)
	if err != nil {
		s.logger.Error("Reservation sweep failed", zap.Error(err))
		return nil, err
	}
	s.mu.Lock()
	s.lastRun = stats
	s.mu.Unlock()
	return stats, nil
}

func (s *ReservationSweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}
