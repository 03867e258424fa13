package audio

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type staticSource struct {
	freq float64
}

func (s staticSource) Frames(now time.Time) []Frame {
	return []Frame{{Channel: "arm_motor", DominantFreq: s.freq, Timestamp: now}}
}

func TestSamplerPublishesFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	ring := NewRing()
	sampler := NewSampler(ring, staticSource{freq: 420}, time.Millisecond)

	sampler.Start(context.Background())
	defer sampler.Stop()

	deadline := time.After(time.Second)
	for {
		if f, err := ring.Latest("arm_motor", time.Second, time.Now()); err == nil {
			if f.DominantFreq != 420 {
				t.Errorf("DominantFreq = %v, want 420", f.DominantFreq)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("no frame published within deadline")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSamplerStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	sampler := NewSampler(NewRing(), staticSource{freq: 400}, time.Millisecond)
	sampler.Start(context.Background())
	sampler.Stop()
	sampler.Stop()
}

func TestSamplerHonorsContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	sampler := NewSampler(NewRing(), staticSource{freq: 400}, time.Millisecond)
	sampler.Start(ctx)
	cancel()

	// Stop must return even though the goroutine already exited via
	// the canceled context.
	done := make(chan struct{})
	go func() {
		sampler.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancel")
	}
}
