// Package pose contains the dead-reckoning position estimator.
// This is part of the Functional Core - no I/O, only pure arithmetic.
//
// The rover has no wheel encoders, so pose is estimated purely by
// integrating commanded velocities over time. Error accumulates with
// distance traveled and is only bounded by explicit resets at known
// positions (e.g. the calibrated home marker).
package pose

import "math"

// Pose is a 2D position with heading.
// Heading is in radians: 0 = east, pi/2 = north.
type Pose struct {
	X       float64 // meters
	Y       float64 // meters
	Heading float64 // radians, normalized to [-pi, pi]
}

// maxHistory bounds the retained trail used by read-side consumers.
const maxHistory = 1000

// Estimator integrates commanded motion into an estimated pose.
// It is the single owner of the pose; all other components read it
// through Current().
type Estimator struct {
	current Pose
	history []Pose
}

// NewEstimator creates an estimator starting at the given pose.
func NewEstimator(start Pose) *Estimator {
	return &Estimator{current: Pose{start.X, start.Y, NormalizeAngle(start.Heading)}}
}

// Update integrates one control interval of commanded motion.
// Heading is integrated first, then position along the new heading.
func (e *Estimator) Update(linear, angular, dt float64) {
	e.current.Heading = NormalizeAngle(e.current.Heading + angular*dt)
	e.current.X += linear * math.Cos(e.current.Heading) * dt
	e.current.Y += linear * math.Sin(e.current.Heading) * dt
	e.record()
}

// Reset overwrites the estimated pose unconditionally.
// Used at the calibrated home position or on an external correction.
func (e *Estimator) Reset(p Pose) {
	e.current = Pose{p.X, p.Y, NormalizeAngle(p.Heading)}
	e.record()
}

// Current returns the current pose estimate.
func (e *Estimator) Current() Pose {
	return e.current
}

// DistanceTo returns the straight-line distance from the current
// estimate to the given point.
func (e *Estimator) DistanceTo(x, y float64) float64 {
	return math.Hypot(x-e.current.X, y-e.current.Y)
}

// HeadingTo returns the absolute heading from the current estimate
// toward the given point.
func (e *Estimator) HeadingTo(x, y float64) float64 {
	return math.Atan2(y-e.current.Y, x-e.current.X)
}

// TurnAngleTo returns the signed turn needed to face the given point.
// Positive = counter-clockwise (left).
func (e *Estimator) TurnAngleTo(x, y float64) float64 {
	return NormalizeAngle(e.HeadingTo(x, y) - e.current.Heading)
}

// History returns the retained pose trail, oldest first.
func (e *Estimator) History() []Pose {
	out := make([]Pose, len(e.history))
	copy(out, e.history)
	return out
}

func (e *Estimator) record() {
	e.history = append(e.history, e.current)
	if len(e.history) > maxHistory {
		e.history = e.history[len(e.history)-maxHistory:]
	}
}

// NormalizeAngle wraps an angle to [-pi, pi].
func NormalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
