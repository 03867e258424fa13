// Package sim provides simulated hardware adapters for bench runs
// without a physical rover. A shared World tracks ground-truth pose
// and scattered targets; the actuator, vision and audio adapters all
// observe and mutate it.
package sim

import (
	"math"
	"math/rand"
	"sync"
)

// Target is one simulated pickup target.
type Target struct {
	X, Y float64
	// Stubborn targets stall the manipulator until the rover
	// repositions nearby, which loosens them.
	Stubborn  bool
	Loosened  bool
	Collected bool
}

// World is the shared simulation state. All methods are safe for
// concurrent use; the audio sampler polls it from its own goroutine.
type World struct {
	mu      sync.Mutex
	rng     *rand.Rand
	x       float64
	y       float64
	heading float64

	targets  []Target
	disposal struct{ x, y float64 }

	digging     bool
	stallActive bool
}

// NewWorld creates a world with the rover at the origin and the
// disposal zone at the given position.
func NewWorld(seed int64, disposalX, disposalY float64) *World {
	w := &World{rng: rand.New(rand.NewSource(seed))}
	w.disposal.x = disposalX
	w.disposal.y = disposalY
	return w
}

// Scatter places n targets uniformly inside the given area. Roughly
// one in three is stubborn.
func (w *World) Scatter(n int, minX, minY, width, height float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := 0; i < n; i++ {
		w.targets = append(w.targets, Target{
			X:        minX + w.rng.Float64()*width,
			Y:        minY + w.rng.Float64()*height,
			Stubborn: w.rng.Intn(3) == 0,
		})
	}
}

// AddTarget places a single target, for tests that need exact layouts.
func (w *World) AddTarget(t Target) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.targets = append(w.targets, t)
}

// Pose returns the ground-truth rover pose.
func (w *World) Pose() (x, y, heading float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y, w.heading
}

func (w *World) advance(distance float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.x += distance * math.Cos(w.heading)
	w.y += distance * math.Sin(w.heading)
	w.loosenNearby()
	w.updateStall()
}

func (w *World) rotate(angle float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.heading += angle
	w.loosenNearby()
	w.updateStall()
}

func (w *World) setDigging(digging bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.digging = digging
	w.updateStall()
}

// loosenNearby holds mu. Repositioning near a stubborn target frees it
// so the next dig attempt succeeds.
func (w *World) loosenNearby() {
	const loosenRadius = 1.5 // meters

	for i := range w.targets {
		t := &w.targets[i]
		if t.Collected || !t.Stubborn || t.Loosened {
			continue
		}
		if math.Hypot(t.X-w.x, t.Y-w.y) <= loosenRadius {
			t.Loosened = true
		}
	}
}

// updateStall holds mu. A dig over a stubborn, unloosened target
// stalls the manipulator.
func (w *World) updateStall() {
	if !w.digging {
		w.stallActive = false
		return
	}
	target := w.nearestTarget()
	w.stallActive = target != nil && target.Stubborn && !target.Loosened
}

// nearestTarget holds mu and returns the closest uncollected target
// within reach, or nil.
func (w *World) nearestTarget() *Target {
	const reach = 0.6 // meters

	var best *Target
	bestDist := reach
	for i := range w.targets {
		t := &w.targets[i]
		if t.Collected {
			continue
		}
		d := math.Hypot(t.X-w.x, t.Y-w.y)
		if d <= bestDist {
			best = t
			bestDist = d
		}
	}
	return best
}

// scoop attempts to collect the nearest target. It fails while a stall
// is active.
func (w *World) scoop() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stallActive {
		return false
	}
	target := w.nearestTarget()
	if target == nil {
		return false
	}
	target.Collected = true
	return true
}

// Remaining counts uncollected targets.
func (w *World) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, t := range w.targets {
		if !t.Collected {
			n++
		}
	}
	return n
}
