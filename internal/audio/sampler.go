package audio

import (
	"context"
	"sync"
	"time"
)

// Source produces one spectral frame per motor channel. Implementations
// wrap the microphone/FFT pipeline or a simulation of it.
type Source interface {
	Frames(now time.Time) []Frame
}

// Sampler is the background producer: it polls the source at a fixed
// cadence and publishes frames into the ring. It owns its goroutine;
// the control loop never waits on it.
type Sampler struct {
	ring    *Ring
	source  Source
	cadence time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSampler creates a sampler writing into ring at the given cadence.
func NewSampler(ring *Ring, source Source, cadence time.Duration) *Sampler {
	return &Sampler{ring: ring, source: source, cadence: cadence}
}

// Start launches the producer goroutine. Calling Start twice without
// an intervening Stop is a programming error.
func (s *Sampler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cadence)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				for _, f := range s.source.Frames(now) {
					s.ring.Put(f)
				}
			}
		}
	}()
}

// Stop halts the producer and waits for it to exit.
func (s *Sampler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
}
