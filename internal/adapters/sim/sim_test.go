package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/example/rover/internal/ports/secondary"
)

func testActuator(t *testing.T, world *World) *Actuator {
	t.Helper()
	// High time scale keeps pulses near-instant in tests.
	return NewActuator(world, zaptest.NewLogger(t), 0.2, 0.5, 10000)
}

func TestActuatorMoveUpdatesPose(t *testing.T) {
	world := NewWorld(1, 9, 9)
	act := testActuator(t, world)
	ctx := context.Background()

	// Heading starts at 0 (east), forward speed 0.2 m/s.
	require.NoError(t, act.Move(ctx, secondary.DirForward, 5*time.Second))
	x, y, _ := world.Pose()
	assert.InDelta(t, 1.0, x, 1e-9)
	assert.InDelta(t, 0.0, y, 1e-9)

	require.NoError(t, act.Move(ctx, secondary.DirLeft, 2*time.Second))
	_, _, heading := world.Pose()
	assert.InDelta(t, 1.0, heading, 1e-9)
}

func TestActuatorMoveRespectsContext(t *testing.T) {
	world := NewWorld(1, 9, 9)
	act := NewActuator(world, zaptest.NewLogger(t), 0.2, 0.5, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := act.Move(ctx, secondary.DirForward, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)

	x, _, _ := world.Pose()
	assert.Zero(t, x, "cancelled move must not change pose")
}

func TestScoopCollectsNearbyTarget(t *testing.T) {
	world := NewWorld(1, 9, 9)
	world.AddTarget(Target{X: 0.3, Y: 0})
	act := testActuator(t, world)
	ctx := context.Background()

	require.NoError(t, act.Actuate(ctx, secondary.JointBoom, secondary.MotionLower, time.Second))
	require.NoError(t, act.Actuate(ctx, secondary.JointBucket, secondary.MotionScoop, time.Second))
	require.NoError(t, act.Actuate(ctx, secondary.JointBoom, secondary.MotionRaise, time.Second))

	assert.Zero(t, world.Remaining())
}

func TestStubbornTargetStallsUntilRepositioned(t *testing.T) {
	world := NewWorld(1, 9, 9)
	world.AddTarget(Target{X: 0.3, Y: 0, Stubborn: true})
	act := testActuator(t, world)
	ctx := context.Background()

	require.NoError(t, act.Actuate(ctx, secondary.JointArm, secondary.MotionLower, time.Second))

	src := NewAudioSource(world, []string{"drive_motor", "arm_motor"}, 7)
	frames := src.Frames(time.Now())
	require.Len(t, frames, 2)
	for _, f := range frames {
		if f.Channel == "arm_motor" {
			assert.Less(t, f.DominantFreq, 100.0, "stalled arm should collapse below 100Hz")
		}
	}

	// Scoop fails while stalled.
	require.NoError(t, act.Actuate(ctx, secondary.JointBucket, secondary.MotionScoop, time.Second))
	assert.Equal(t, 1, world.Remaining())

	// Back up, re-approach and dig again; the stall clears.
	require.NoError(t, act.Move(ctx, secondary.DirBackward, time.Second))
	require.NoError(t, act.Move(ctx, secondary.DirForward, time.Second))
	require.NoError(t, act.Actuate(ctx, secondary.JointArm, secondary.MotionLower, time.Second))
	require.NoError(t, act.Actuate(ctx, secondary.JointBucket, secondary.MotionScoop, time.Second))
	assert.Zero(t, world.Remaining())
}

func TestAudioSourceHealthyFrequencies(t *testing.T) {
	world := NewWorld(1, 9, 9)
	src := NewAudioSource(world, []string{"drive_motor", "bucket_motor"}, 7)

	frames := src.Frames(time.Now())
	require.Len(t, frames, 2)
	assert.InDelta(t, 450, frames[0].DominantFreq, 450*0.03)
	assert.InDelta(t, 520, frames[1].DominantFreq, 520*0.03)
}

func TestVisionRangeAndConfidence(t *testing.T) {
	world := NewWorld(1, 50, 50)
	world.AddTarget(Target{X: 1, Y: 0})
	world.AddTarget(Target{X: 20, Y: 20})

	vision := NewVision(world)
	detections, err := vision.DetectTargets(context.Background())
	require.NoError(t, err)
	require.Len(t, detections, 1, "far target must be invisible")
	assert.InDelta(t, 1.0, detections[0].X, 1e-9)
	assert.Greater(t, detections[0].Confidence, 0.5)

	marker, err := vision.DetectDisposalMarker(context.Background())
	require.NoError(t, err)
	assert.Nil(t, marker, "disposal zone out of range")
}

func TestScatterPlacesTargetsInBounds(t *testing.T) {
	world := NewWorld(42, 9, 9)
	world.Scatter(25, 0, 0, 10, 10)

	world.mu.Lock()
	defer world.mu.Unlock()
	require.Len(t, world.targets, 25)
	for _, target := range world.targets {
		assert.GreaterOrEqual(t, target.X, 0.0)
		assert.Less(t, target.X, 10.0)
		assert.GreaterOrEqual(t, target.Y, 0.0)
		assert.Less(t, target.Y, 10.0)
	}
}
