package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPruner struct {
	mu    sync.Mutex
	calls []time.Time
	n     int64
	err   error
}

func (p *countingPruner) PruneExpired(_ context.Context, now time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, now)
	return p.n, p.err
}

func (p *countingPruner) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestSweeper_TicksUntilCancelled(t *testing.T) {
	p := &countingPruner{n: 2}
	fixed := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	s := &Sweeper{Pruner: p, Interval: 5 * time.Millisecond, Now: func() time.Time { return fixed }}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return p.count() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}

	assert.GreaterOrEqual(t, s.Pruned(), int64(6))
	p.mu.Lock()
	assert.Equal(t, fixed, p.calls[0])
	p.mu.Unlock()
}

func TestSweeper_ErrorDoesNotCount(t *testing.T) {
	p := &countingPruner{n: 5, err: errors.New("db down")}
	s := &Sweeper{Pruner: p, Interval: time.Hour}

	s.tick(context.Background())

	assert.Equal(t, 1, p.count())
	assert.Zero(t, s.Pruned())
}
