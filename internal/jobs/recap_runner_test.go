package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nutricoach/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	ids []string
	err error
}

func (m mockUsers) ListUserIDs(ctx context.Context) ([]string, error) {
	return m.ids, m.err
}

type mockRecaps struct {
	mu       sync.Mutex
	errs     map[string]error
	seen     []string
	periods  []int
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
}

func (m *mockRecaps) ComputeAndStore(ctx context.Context, userID string, periodDays int) (*domain.CachedRecap, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		peak := m.maxSeen.Load()
		if n <= peak || m.maxSeen.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(m.delay)

	m.mu.Lock()
	m.seen = append(m.seen, userID)
	m.periods = append(m.periods, periodDays)
	m.mu.Unlock()

	if err := m.errs[userID]; err != nil {
		return nil, err
	}
	return &domain.CachedRecap{UserID: userID, Recap: domain.RecapMetrics{TotalDays: periodDays}}, nil
}

func TestRecapRunner_Run(t *testing.T) {
	recaps := &mockRecaps{
		errs: map[string]error{
			"no-goal": domain.ErrTargetUndetermined,
			"broken":  errors.New("database unavailable"),
		},
	}
	users := mockUsers{ids: []string{"a", "no-goal", "broken", "b", "c"}}

	result, err := NewRecapRunner(users, recaps, 2, 7).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, RecapResult{Processed: 3, Skipped: 1, Failed: 1}, result)
	assert.ElementsMatch(t, users.ids, recaps.seen)
	for _, p := range recaps.periods {
		assert.Equal(t, 7, p)
	}
}

func TestRecapRunner_ExplicitUsers(t *testing.T) {
	recaps := &mockRecaps{}
	users := mockUsers{err: errors.New("should not be called")}

	result, err := NewRecapRunner(users, recaps, 4, 3).Run(context.Background(), "only")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, []string{"only"}, recaps.seen)
}

func TestRecapRunner_ListError(t *testing.T) {
	_, err := NewRecapRunner(mockUsers{err: errors.New("boom")}, &mockRecaps{}, 1, 7).Run(context.Background())
	assert.Error(t, err)
}

func TestRecapRunner_BoundedConcurrency(t *testing.T) {
	recaps := &mockRecaps{delay: 10 * time.Millisecond}
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	result, err := NewRecapRunner(mockUsers{ids: ids}, recaps, 3, 7).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 12, result.Processed)
	assert.LessOrEqual(t, recaps.maxSeen.Load(), int32(3))
}

func TestRecapRunner_RunPeriodicStopsOnCancel(t *testing.T) {
	recaps := &mockRecaps{}
	runner := NewRecapRunner(mockUsers{ids: []string{"a"}}, recaps, 1, 7)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.RunPeriodic(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool {
		recaps.mu.Lock()
		defer recaps.mu.Unlock()
		return len(recaps.seen) >= 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("RunPeriodic did not stop")
	}
}
