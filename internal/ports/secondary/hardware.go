package secondary

import (
	"context"
	"time"
)

// Direction is a drive command direction.
type Direction string

const (
	DirForward  Direction = "forward"
	DirBackward Direction = "backward"
	DirLeft     Direction = "left"
	DirRight    Direction = "right"
)

// Joint identifies one manipulator joint.
type Joint string

const (
	JointBoom   Joint = "boom"
	JointArm    Joint = "arm"
	JointBucket Joint = "bucket"
)

// Motion is a joint movement direction.
type Motion string

const (
	MotionRaise Motion = "raise"
	MotionLower Motion = "lower"
	MotionScoop Motion = "scoop"
	MotionDump  Motion = "dump"
)

// Actuator is the low-level actuation driver. Commands are
// time-pulsed: there is no position feedback, only durations.
type Actuator interface {
	// Move drives the tracks in a direction for a duration.
	Move(ctx context.Context, dir Direction, duration time.Duration) error

	// Actuate pulses one joint for a duration.
	Actuate(ctx context.Context, joint Joint, motion Motion, duration time.Duration) error

	// StopAll aborts every motor immediately. Must be safe to call
	// from any goroutine and in any state; used for FAULT handling.
	StopAll()
}

// Detection is one vision target sighting in world coordinates.
type Detection struct {
	X          float64
	Y          float64
	Confidence float64
}

// MarkerSighting is a disposal-marker observation.
type MarkerSighting struct {
	X        float64
	Y        float64
	Distance float64 // meters from the rover
}

// VisionSource produces target and disposal-marker detections per
// poll.
type VisionSource interface {
	// DetectTargets returns current target detections, possibly empty.
	DetectTargets(ctx context.Context) ([]Detection, error)

	// DetectDisposalMarker returns the disposal marker sighting, or
	// nil when the marker is not visible.
	DetectDisposalMarker(ctx context.Context) (*MarkerSighting, error)
}
