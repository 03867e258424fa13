// Package safety implements the heartbeat watchdog. The orchestrator
// registers a heartbeat each control tick; if heartbeats stop arriving
// the watchdog fires the fault callback, which the orchestrator
// consumes as its FAULT-transition trigger.
package safety

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Watchdog monitors control-loop liveness from its own goroutine.
type Watchdog struct {
	timeout time.Duration
	onFault func(reason string)
	log     *zap.Logger

	mu   sync.Mutex
	last time.Time

	fired  bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatchdog creates a watchdog that calls onFault once if no
// heartbeat arrives within timeout.
func NewWatchdog(timeout time.Duration, onFault func(reason string), log *zap.Logger) *Watchdog {
	return &Watchdog{
		timeout: timeout,
		onFault: onFault,
		log:     log,
		last:    time.Now(),
	}
}

// Heartbeat registers control-loop liveness. Call at least once per
// timeout interval.
func (w *Watchdog) Heartbeat() {
	w.mu.Lock()
	w.last = time.Now()
	w.mu.Unlock()
}

// Start launches the monitor goroutine.
func (w *Watchdog) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.Heartbeat()
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.timeout / 4)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.check()
			}
		}
	}()
}

func (w *Watchdog) check() {
	w.mu.Lock()
	stale := time.Since(w.last)
	alreadyFired := w.fired
	if stale > w.timeout {
		w.fired = true
	}
	w.mu.Unlock()

	if stale > w.timeout && !alreadyFired {
		w.log.Error("watchdog timeout, no heartbeat",
			zap.Duration("since_heartbeat", stale),
			zap.Duration("timeout", w.timeout),
		)
		w.onFault("watchdog timeout")
	}
}

// Stop halts monitoring and waits for the goroutine to exit.
func (w *Watchdog) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.cancel = nil
}
