package service

import "sync/atomic"

// RunGuard admits one sync at a time across every trigger (API, scheduler).
type RunGuard struct {
	running atomic.Bool
}

// TryAcquire reports whether the caller may start a sync; it must then call Release.
func (g *RunGuard) TryAcquire() bool {
	return g.running.CompareAndSwap(false, true)
}

func (g *RunGuard) Release() {
	g.running.Store(false)
}

func (g *RunGuard) Running() bool {
	return g.running.Load()
}
