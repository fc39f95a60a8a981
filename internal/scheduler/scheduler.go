// Package scheduler runs periodic maintenance for the offer inventory.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pruner removes offers whose valid_until is before now.
type Pruner interface {
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper prunes expired inventory offers on every tick.
type Sweeper struct {
	Pruner   Pruner
	Interval time.Duration
	Logger   *zap.Logger
	Now      func() time.Time

	mu    sync.Mutex
	total int64
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// Pruned reports how many offers were removed since the sweeper started.
func (s *Sweeper) Pruned() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *Sweeper) tick(ctx context.Context) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	n, err := s.Pruner.PruneExpired(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("inventory sweep failed", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.total += n
	s.mu.Unlock()
	if n > 0 {
		log.Info("inventory sweep", zap.Int64("pruned", n))
	}
}
