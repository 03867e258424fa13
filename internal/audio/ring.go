// Package audio carries spectral frames from the background sampler to
// the stall detector across the producer/consumer boundary.
//
// The producer runs on its own schedule; the control loop must never
// block on it. Frames land in a bounded ring with one slot per motor
// channel where the newest frame overwrites the oldest, and consumers
// take non-blocking reads of the latest completed frame.
package audio

import (
	"errors"
	"sync"
	"time"
)

// ErrSensorUnavailable indicates no frame fresh enough to act on
// exists for the channel. Recoverable: the poll is skipped, the
// control loop continues.
var ErrSensorUnavailable = errors.New("no fresh audio frame available")

// Frame is one timestamped spectral observation for a motor channel.
type Frame struct {
	Channel      string
	DominantFreq float64 // Hz
	Amplitude    float64
	Timestamp    time.Time
}

// Ring holds the latest frame per channel.
type Ring struct {
	mu    sync.RWMutex
	slots map[string]Frame
}

// NewRing creates an empty ring.
func NewRing() *Ring {
	return &Ring{slots: make(map[string]Frame)}
}

// Put stores a frame, overwriting any older frame for the channel.
func (r *Ring) Put(f Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[f.Channel] = f
}

// Latest returns the channel's newest frame if it is within the
// freshness window of now, ErrSensorUnavailable otherwise. Never
// blocks.
func (r *Ring) Latest(channel string, freshness time.Duration, now time.Time) (Frame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.slots[channel]
	if !ok || now.Sub(f.Timestamp) > freshness {
		return Frame{}, ErrSensorUnavailable
	}
	return f, nil
}
