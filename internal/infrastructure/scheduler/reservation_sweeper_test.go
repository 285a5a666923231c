package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stockledger/backend/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireLapsed(_ context.Context) (*inventory.ExpiryStats, error) {
	n := e.calls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return &inventory.ExpiryStats{TotalExpired: int(n), Expired: int(n)}, nil
}

func TestReservationSweeper_RunsOnInterval(t *testing.T) {
	expirer := &countingExpirer{}
	s := NewReservationSweeper(SweeperConfig{Enabled: true, Interval: 10 * time.Millisecond}, expirer, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return expirer.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
	require.NotNil(t, s.LastRun())

	after := expirer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, expirer.calls.Load())
}

func TestReservationSweeper_Disabled(t *testing.T) {
	expirer := &countingExpirer{}
	s := NewReservationSweeper(SweeperConfig{Enabled: false, Interval: time.Millisecond}, expirer, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestReservationSweeper_InvalidInterval(t *testing.T) {
	s := NewReservationSweeper(SweeperConfig{Enabled: true}, &countingExpirer{}, nil)
	assert.ErrorIs(t, s.Start(context.Background()), ErrInvalidConfig)
}

func TestReservationSweeper_RunOnceError(t *testing.T) {
	expirer := &countingExpirer{err: errors.New("database is locked")}
	s := NewReservationSweeper(DefaultSweeperConfig(), expirer, nil)

	stats, err := s.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Nil(t, stats)
	assert.Nil(t, s.LastRun())
}
