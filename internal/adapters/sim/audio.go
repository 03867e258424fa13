package sim

import (
	"math/rand"
	"sync"
	"time"

	"github.com/example/rover/internal/audio"
)

// Per-channel healthy dominant frequencies, in Hz. Unknown channels
// fall back to defaultBaseFreq.
var baseFreqs = map[string]float64{
	"drive_motor":  450,
	"boom_motor":   380,
	"arm_motor":    410,
	"bucket_motor": 520,
}

const (
	defaultBaseFreq = 400.0
	noiseFraction   = 0.02
	stallFraction   = 0.15 // stalled motors drop to 15% of base
)

// AudioSource implements audio.Source against a simulated World.
// During an active stall the manipulator channels collapse toward
// stallFraction of their healthy frequency.
type AudioSource struct {
	world    *World
	channels []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAudioSource creates a simulated audio source for the given motor
// channels.
func NewAudioSource(world *World, channels []string, seed int64) *AudioSource {
	return &AudioSource{
		world:    world,
		channels: channels,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Frames returns one frame per configured channel.
func (s *AudioSource) Frames(now time.Time) []audio.Frame {
	s.world.mu.Lock()
	stalled := s.world.stallActive
	s.world.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	frames := make([]audio.Frame, 0, len(s.channels))
	for _, channel := range s.channels {
		base, ok := baseFreqs[channel]
		if !ok {
			base = defaultBaseFreq
		}
		freq := base
		if stalled && channel != "drive_motor" {
			freq = base * stallFraction
		}
		// Jitter within the noise band.
		freq *= 1 + (s.rng.Float64()*2-1)*noiseFraction

		frames = append(frames, audio.Frame{
			Channel:      channel,
			DominantFreq: freq,
			Amplitude:    0.5 + s.rng.Float64()*0.3,
			Timestamp:    now,
		})
	}
	return frames
}

// Ensure AudioSource implements the interface
var _ audio.Source = (*AudioSource)(nil)
