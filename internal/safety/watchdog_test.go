package safety

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestFaultOnMissedHeartbeat(t *testing.T) {
	defer goleak.VerifyNone(t)

	var faults atomic.Int32
	w := NewWatchdog(20*time.Millisecond, func(string) { faults.Add(1) }, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	// No heartbeats: the fault must fire, and only once.
	deadline := time.After(time.Second)
	for faults.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watchdog never fired")
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(100 * time.Millisecond)
	if got := faults.Load(); got != 1 {
		t.Errorf("fault fired %d times, want 1", got)
	}
}

func TestHeartbeatKeepsWatchdogQuiet(t *testing.T) {
	defer goleak.VerifyNone(t)

	var faults atomic.Int32
	w := NewWatchdog(50*time.Millisecond, func(string) { faults.Add(1) }, zap.NewNop())
	w.Start(context.Background())
	defer w.Stop()

	for i := 0; i < 20; i++ {
		w.Heartbeat()
		time.Sleep(10 * time.Millisecond)
	}
	if got := faults.Load(); got != 0 {
		t.Errorf("fault fired %d times despite heartbeats", got)
	}
}

func TestStopWithoutStart(t *testing.T) {
	w := NewWatchdog(time.Second, func(string) {}, zap.NewNop())
	w.Stop()
}
