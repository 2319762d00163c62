package portal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Routine runs a func on an interval in its own goroutine until stopped or
// until the context it was started with is cancelled.
type Routine struct {
	mu        sync.Mutex
	interrupt chan struct{}
	isRunning atomic.Bool
	fn        func()
	interval  time.Duration
	tkr       *time.Ticker
}

// NewRoutine creates a Routine that calls fn every d once started.
func NewRoutine(d time.Duration, fn func()) *Routine {
	return &Routine{
		interrupt: make(chan struct{}),
		fn:        fn,
		interval:  d,
	}
}

// Start launches the goroutine. Start does nothing if the routine is already
// running or has no func.
func (r *Routine) Start(ctx context.Context) {
	if r.fn == nil || r.interval <= 0 || !r.isRunning.CompareAndSwap(false, true) {
		return
	}
	r.mu.Lock()
	r.tkr = time.NewTicker(r.interval)
	tkr := r.tkr
	r.mu.Unlock()

	go func() {
		defer tkr.Stop()
		defer r.isRunning.Store(false)
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.interrupt:
				return
			case <-tkr.C:
				r.fn()
			}
		}
	}()
}

// UpdateInterval changes the tick interval. Durations of 0 or less are ignored.
func (r *Routine) UpdateInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interval = d
	if r.tkr != nil {
		r.tkr.Reset(d)
	}
}

// Running reports whether the goroutine is active.
func (r *Routine) Running() bool {
	return r.isRunning.Load()
}

// Stop interrupts the goroutine. Stop does nothing if it is not running.
func (r *Routine) Stop() {
	if !r.isRunning.Load() {
		return
	}
	select {
	case r.interrupt <- struct{}{}:
	case <-time.After(time.Second):
	}
}
