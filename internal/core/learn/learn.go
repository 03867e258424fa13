// Package learn adjusts control timing parameters from accumulated
// attempt outcomes using an epsilon-greedy policy.
// This is part of the Functional Core - no I/O; randomness is injected.
package learn

import (
	"fmt"
	"math/rand"
	"time"
)

// explorationSpan bounds the random perturbation to +/-20% of the
// current value.
const explorationSpan = 0.2

// Bounds clamp a learned parameter to its safe operating range.
type Bounds struct {
	Min float64
	Max float64
}

func (b Bounds) clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Parameter declares one tunable control timing.
type Parameter struct {
	Name    string
	Default float64
	Bounds  Bounds
}

// Settings are the learning-loop tuning knobs.
type Settings struct {
	LearningRate float64 // exploitation step fraction toward the success mean
	Epsilon      float64 // exploration probability per update
	MinAttempts  int     // samples required before any adjustment
}

// Snapshot is the persistable state of one parameter.
type Snapshot struct {
	Name      string
	Value     float64
	Samples   int
	UpdatedAt time.Time
}

type state struct {
	param      Parameter
	value      float64
	samples    int
	successSum float64
	successes  int
}

// Optimizer owns the learned parameters. It never adjusts a parameter
// before MinAttempts samples exist, and every update is clamped to the
// parameter's bounds.
type Optimizer struct {
	settings Settings
	rng      *rand.Rand
	params   map[string]*state
	order    []string
}

// NewOptimizer creates an optimizer over the declared parameters.
// The rand source is injected so tests can fix the exploration path.
func NewOptimizer(settings Settings, params []Parameter, rng *rand.Rand) *Optimizer {
	o := &Optimizer{
		settings: settings,
		rng:      rng,
		params:   make(map[string]*state, len(params)),
	}
	for _, p := range params {
		o.params[p.Name] = &state{param: p, value: p.Bounds.clamp(p.Default)}
		o.order = append(o.order, p.Name)
	}
	return o
}

// Record feeds one attempt outcome for a parameter. The observed value
// is the timing actually used on the attempt. Below MinAttempts the
// parameter stays at its default; from the threshold onward each record
// triggers one epsilon-greedy update.
func (o *Optimizer) Record(name string, success bool, observed float64) error {
	s, ok := o.params[name]
	if !ok {
		return fmt.Errorf("unknown learned parameter %q", name)
	}

	s.samples++
	if success {
		s.successSum += observed
		s.successes++
	}

	if s.samples < o.settings.MinAttempts {
		return nil
	}

	if o.rng.Float64() < o.settings.Epsilon {
		// Explore: bounded random step to keep searching the space.
		variation := (o.rng.Float64()*2 - 1) * explorationSpan
		s.value = s.param.Bounds.clamp(s.value * (1 + variation))
		return nil
	}

	// Exploit: move toward the mean of successful attempts.
	if s.successes == 0 {
		return nil
	}
	target := s.successSum / float64(s.successes)
	s.value = s.param.Bounds.clamp(s.value + o.settings.LearningRate*(target-s.value))
	return nil
}

// Value returns the current clamped value for a parameter, falling
// back to 0 for unknown names (callers declare parameters up front).
func (o *Optimizer) Value(name string) float64 {
	if s, ok := o.params[name]; ok {
		return s.value
	}
	return 0
}

// Samples returns the recorded sample count for a parameter.
func (o *Optimizer) Samples(name string) int {
	if s, ok := o.params[name]; ok {
		return s.samples
	}
	return 0
}

// Snapshots exports all parameter states for persistence, in
// declaration order.
func (o *Optimizer) Snapshots(now time.Time) []Snapshot {
	out := make([]Snapshot, 0, len(o.order))
	for _, name := range o.order {
		s := o.params[name]
		out = append(out, Snapshot{Name: name, Value: s.value, Samples: s.samples, UpdatedAt: now})
	}
	return out
}

// Restore loads a persisted parameter state from a previous session.
// Unknown names are ignored: a removed parameter's history is simply
// dropped.
func (o *Optimizer) Restore(snap Snapshot) {
	s, ok := o.params[snap.Name]
	if !ok {
		return
	}
	s.value = s.param.Bounds.clamp(snap.Value)
	s.samples = snap.Samples
}
