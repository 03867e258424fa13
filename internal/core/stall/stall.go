// Package stall detects mechanical motor stalls from acoustic spectral
// frames and sequences the bounded retry ladder.
// This is part of the Functional Core - no I/O.
//
// A stalling motor spins slower, so its dominant acoustic frequency
// drops. With no force or position feedback on the actuators, that
// drop is the only stall signal available. Two independent conditions
// each suffice to declare a stall:
//
//	observed < absolute threshold
//	(baseline - observed) / baseline >= drop fraction
package stall

import (
	"fmt"
	"time"
)

// Baseline is a motor channel's unloaded acoustic signature, recorded
// once by calibration and read thereafter. Replacing it requires an
// explicit recalibration run.
type Baseline struct {
	Channel      string
	DominantFreq float64 // Hz
	Amplitude    float64 // mean amplitude over the calibration window
	CalibratedAt time.Time
}

// BaselineFrom reduces calibration samples to a baseline. The dominant
// frequency is the mean over the window.
func BaselineFrom(channel string, freqs, amps []float64, at time.Time) (Baseline, error) {
	if len(freqs) == 0 {
		return Baseline{}, fmt.Errorf("no calibration samples for channel %q", channel)
	}
	return Baseline{
		Channel:      channel,
		DominantFreq: mean(freqs),
		Amplitude:    mean(amps),
		CalibratedAt: at,
	}, nil
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// Thresholds are the stall-detection tuning knobs.
type Thresholds struct {
	AbsoluteHz   float64 // any dominant frequency below this is a stall
	DropFraction float64 // relative drop from baseline, in [0, 1]
}

// Config holds global thresholds plus optional per-channel overrides.
type Config struct {
	Default   Thresholds
	Overrides map[string]Thresholds
}

func (c Config) thresholds(channel string) Thresholds {
	if t, ok := c.Overrides[channel]; ok {
		return t
	}
	return c.Default
}

// Event is one positive stall observation, generated per detection poll.
type Event struct {
	Channel      string
	ObservedFreq float64
	BaselineFreq float64
	Timestamp    time.Time
}

// Detector evaluates live spectral frames against calibrated baselines.
type Detector struct {
	cfg       Config
	baselines map[string]Baseline
}

// NewDetector creates a detector over the given calibrated baselines.
func NewDetector(cfg Config, baselines []Baseline) *Detector {
	byChannel := make(map[string]Baseline, len(baselines))
	for _, b := range baselines {
		byChannel[b.Channel] = b
	}
	return &Detector{cfg: cfg, baselines: byChannel}
}

// Check evaluates one observed dominant frequency for a channel.
// Returns the stall event and true when either stall condition holds.
func (d *Detector) Check(channel string, observed float64, at time.Time) (Event, bool, error) {
	base, ok := d.baselines[channel]
	if !ok {
		return Event{}, false, fmt.Errorf("channel %q has no calibrated baseline", channel)
	}

	belowAbsolute := observed < d.cfg.thresholds(channel).AbsoluteHz
	drop := (base.DominantFreq - observed) / base.DominantFreq
	excessiveDrop := drop >= d.cfg.thresholds(channel).DropFraction

	if !belowAbsolute && !excessiveDrop {
		return Event{}, false, nil
	}
	return Event{
		Channel:      channel,
		ObservedFreq: observed,
		BaselineFreq: base.DominantFreq,
		Timestamp:    at,
	}, true, nil
}

// Calibrated reports whether a channel has a baseline.
func (d *Detector) Calibrated(channel string) bool {
	_, ok := d.baselines[channel]
	return ok
}
