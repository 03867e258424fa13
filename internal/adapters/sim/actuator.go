package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/rover/internal/ports/secondary"
)

// Actuator implements secondary.Actuator against a simulated World.
// Commands take real time scaled down by timeScale so bench runs and
// tests finish quickly.
type Actuator struct {
	world        *World
	logger       *zap.Logger
	forwardSpeed float64 // m/s
	turnRate     float64 // rad/s
	timeScale    float64
}

// NewActuator creates a simulated actuator. timeScale > 1 speeds up
// the passage of command time (a scale of 10 makes a 1s pulse take
// 100ms of wall time).
func NewActuator(world *World, logger *zap.Logger, forwardSpeed, turnRate, timeScale float64) *Actuator {
	if timeScale <= 0 {
		timeScale = 1
	}
	return &Actuator{
		world:        world,
		logger:       logger,
		forwardSpeed: forwardSpeed,
		turnRate:     turnRate,
		timeScale:    timeScale,
	}
}

// Move drives the tracks for the given duration.
func (a *Actuator) Move(ctx context.Context, dir secondary.Direction, duration time.Duration) error {
	if err := a.wait(ctx, duration); err != nil {
		return err
	}

	seconds := duration.Seconds()
	switch dir {
	case secondary.DirForward:
		a.world.advance(a.forwardSpeed * seconds)
	case secondary.DirBackward:
		a.world.advance(-a.forwardSpeed * seconds)
	case secondary.DirLeft:
		a.world.rotate(a.turnRate * seconds)
	case secondary.DirRight:
		a.world.rotate(-a.turnRate * seconds)
	}

	a.logger.Debug("sim move",
		zap.String("dir", string(dir)),
		zap.Duration("duration", duration))
	return nil
}

// Actuate pulses one manipulator joint for the given duration.
func (a *Actuator) Actuate(ctx context.Context, joint secondary.Joint, motion secondary.Motion, duration time.Duration) error {
	if err := a.wait(ctx, duration); err != nil {
		return err
	}

	switch {
	case motion == secondary.MotionLower:
		// Lowering boom or arm puts the bucket into the material.
		a.world.setDigging(true)
	case joint == secondary.JointBucket && motion == secondary.MotionScoop:
		scooped := a.world.scoop()
		a.logger.Debug("sim scoop", zap.Bool("collected", scooped))
	case motion == secondary.MotionRaise, motion == secondary.MotionDump:
		a.world.setDigging(false)
	}

	a.logger.Debug("sim actuate",
		zap.String("joint", string(joint)),
		zap.String("motion", string(motion)),
		zap.Duration("duration", duration))
	return nil
}

// StopAll aborts all motion immediately.
func (a *Actuator) StopAll() {
	a.world.setDigging(false)
	a.logger.Warn("sim stop all motors")
}

func (a *Actuator) wait(ctx context.Context, duration time.Duration) error {
	scaled := time.Duration(float64(duration) / a.timeScale)
	timer := time.NewTimer(scaled)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure Actuator implements the interface
var _ secondary.Actuator = (*Actuator)(nil)
