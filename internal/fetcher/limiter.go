package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Limiter bounds in-flight requests and spaces dispatches by a minimum interval.
// Retries run inside the slot granted by Schedule and never take another one.
type Limiter struct {
	slots       *semaphore.Weighted
	minInterval time.Duration

	mu   sync.Mutex
	next time.Time
}

// NewLimiter returns a limiter allowing maxConcurrent callers at once, with at least
// minInterval between two dispatches. maxConcurrent below 1 is treated as 1.
func NewLimiter(maxConcurrent int, minInterval time.Duration) *Limiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Limiter{
		slots:       semaphore.NewWeighted(int64(maxConcurrent)),
		minInterval: minInterval,
	}
}

// Schedule waits for a free slot and the next dispatch time, then runs fn while holding the slot.
func (l *Limiter) Schedule(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := l.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.slots.Release(1)

	if err := l.waitTurn(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

// waitTurn reserves the next dispatch time and sleeps until it.
func (l *Limiter) waitTurn(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	at := l.next
	if at.Before(now) {
		at = now
	}
	l.next = at.Add(l.minInterval)
	l.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
