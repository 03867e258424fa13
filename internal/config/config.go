// Package config loads and validates the rover configuration file.
// Configuration is an explicit value handed to each component at
// construction; there is no ambient global state.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/rover/internal/core/grid"
	"github.com/example/rover/internal/core/patrol"
	"github.com/example/rover/internal/core/stall"
)

// Error reports an invalid or missing configuration value. Fatal at
// startup: the session refuses to begin.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Area is the declared patrol area in world coordinates.
type Area struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Position is a world coordinate pair.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Patrol configures coverage and waypoint generation.
type Patrol struct {
	GridCellSize      float64 `yaml:"grid_cell_size"`     // meters
	Pattern           string  `yaml:"pattern"`            // lawnmower|spiral|grid
	CoverageThreshold float64 `yaml:"coverage_threshold"` // percent
	MaxPatrolTime     float64 `yaml:"max_patrol_time"`    // seconds
	VisitRadius       float64 `yaml:"visit_radius"`       // meters
	ApproachTolerance float64 `yaml:"approach_tolerance"` // meters
}

// Control configures the tick loop and watchdog.
type Control struct {
	TickIntervalMS    int     `yaml:"tick_interval_ms"`
	WatchdogTimeout   float64 `yaml:"watchdog_timeout"` // seconds
	ForwardSpeed      float64 `yaml:"forward_speed"`    // m/s, dead-reckoning estimate
	TurnRateDegPerSec float64 `yaml:"turn_rate_deg_per_sec"`
}

// ChannelThresholds overrides stall thresholds for one motor channel.
type ChannelThresholds struct {
	StallFrequencyThreshold float64 `yaml:"stall_frequency_threshold"` // Hz
	FrequencyDropPercent    float64 `yaml:"frequency_drop_percent"`    // percent
}

// Audio configures the sampler and stall detection.
type Audio struct {
	SampleCadenceMS         int                          `yaml:"sample_cadence_ms"`
	FreshnessWindowMS       int                          `yaml:"freshness_window_ms"`
	StallFrequencyThreshold float64                      `yaml:"stall_frequency_threshold"` // Hz, absolute
	FrequencyDropPercent    float64                      `yaml:"frequency_drop_percent"`    // percent of baseline
	Channels                []string                     `yaml:"channels"`
	Overrides               map[string]ChannelThresholds `yaml:"overrides"`
	CalibrationSamples      int                          `yaml:"calibration_samples"`
}

// LearnedParameter declares one tunable timing with its bounds.
type LearnedParameter struct {
	Name    string  `yaml:"name"`
	Default float64 `yaml:"default"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// Learning configures the adaptive optimizer.
type Learning struct {
	LearningRate              float64            `yaml:"learning_rate"`
	Epsilon                   float64            `yaml:"epsilon"`
	MinAttemptsBeforeLearning int                `yaml:"min_attempts_before_learning"`
	Parameters                []LearnedParameter `yaml:"parameters"`
}

// Config is the complete rover configuration.
type Config struct {
	Area               Area     `yaml:"area"`
	Home               Position `yaml:"home"`
	Disposal           Position `yaml:"disposal"`
	Patrol             Patrol   `yaml:"patrol"`
	Control            Control  `yaml:"control"`
	Audio              Audio    `yaml:"audio"`
	RetryStrategyOrder []string `yaml:"retry_strategy_order"`
	Learning           Learning `yaml:"learning"`
	DatabasePath       string   `yaml:"database_path"`
}

// Default returns the configuration used when a field is omitted.
func Default() Config {
	return Config{
		Area:     Area{Width: 10, Height: 10},
		Home:     Position{X: 0.25, Y: 0.25},
		Disposal: Position{X: 9.5, Y: 9.5},
		Patrol: Patrol{
			GridCellSize:      0.5,
			Pattern:           string(patrol.PatternLawnmower),
			CoverageThreshold: 95,
			MaxPatrolTime:     1800,
			VisitRadius:       0.5,
			ApproachTolerance: 0.3,
		},
		Control: Control{
			TickIntervalMS:    100,
			WatchdogTimeout:   5,
			ForwardSpeed:      0.3,
			TurnRateDegPerSec: 45,
		},
		Audio: Audio{
			SampleCadenceMS:         100,
			FreshnessWindowMS:       500,
			StallFrequencyThreshold: 100,
			FrequencyDropPercent:    50,
			Channels:                []string{"drive_motor", "boom_motor", "arm_motor", "bucket_motor"},
			CalibrationSamples:      50,
		},
		Learning: Learning{
			LearningRate:              0.3,
			Epsilon:                   0.1,
			MinAttemptsBeforeLearning: 10,
			Parameters: []LearnedParameter{
				{Name: "boom_down", Default: 2.0, Min: 0.5, Max: 4.0},
				{Name: "arm_down", Default: 1.5, Min: 0.4, Max: 3.0},
				{Name: "bucket_scoop", Default: 1.0, Min: 0.3, Max: 2.5},
			},
		},
		DatabasePath: "data/rover.db",
	}
}

// Load reads and validates a configuration file. Omitted fields take
// defaults; invalid values are rejected with *Error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every recognized option. Returns *Error on the
// first violation.
func (c Config) Validate() error {
	if c.Area.Width <= 0 || c.Area.Height <= 0 {
		return &Error{Field: "area", Reason: "width and height must be positive"}
	}
	if c.Patrol.GridCellSize <= 0 {
		return &Error{Field: "patrol.grid_cell_size", Reason: "must be positive"}
	}
	if _, err := patrol.ParsePattern(c.Patrol.Pattern); err != nil {
		return &Error{Field: "patrol.pattern", Reason: err.Error()}
	}
	if c.Patrol.CoverageThreshold <= 0 || c.Patrol.CoverageThreshold > 100 {
		return &Error{Field: "patrol.coverage_threshold", Reason: "must be in (0, 100]"}
	}
	if c.Patrol.MaxPatrolTime <= 0 {
		return &Error{Field: "patrol.max_patrol_time", Reason: "must be positive"}
	}
	if c.Patrol.VisitRadius <= 0 {
		return &Error{Field: "patrol.visit_radius", Reason: "must be positive"}
	}
	if c.Patrol.ApproachTolerance <= 0 {
		return &Error{Field: "patrol.approach_tolerance", Reason: "must be positive"}
	}
	if !gridBounds(c).Contains(c.Home.X, c.Home.Y) {
		return &Error{Field: "home", Reason: "home position outside declared area"}
	}
	if !gridBounds(c).Contains(c.Disposal.X, c.Disposal.Y) {
		return &Error{Field: "disposal", Reason: "disposal position outside declared area"}
	}
	if c.Control.TickIntervalMS <= 0 {
		return &Error{Field: "control.tick_interval_ms", Reason: "must be positive"}
	}
	if c.Control.WatchdogTimeout <= 0 {
		return &Error{Field: "control.watchdog_timeout", Reason: "must be positive"}
	}
	if c.Control.ForwardSpeed <= 0 {
		return &Error{Field: "control.forward_speed", Reason: "must be positive"}
	}
	if c.Control.TurnRateDegPerSec <= 0 {
		return &Error{Field: "control.turn_rate_deg_per_sec", Reason: "must be positive"}
	}
	if c.Audio.SampleCadenceMS <= 0 {
		return &Error{Field: "audio.sample_cadence_ms", Reason: "must be positive"}
	}
	if c.Audio.FreshnessWindowMS <= 0 {
		return &Error{Field: "audio.freshness_window_ms", Reason: "must be positive"}
	}
	if c.Audio.StallFrequencyThreshold <= 0 {
		return &Error{Field: "audio.stall_frequency_threshold", Reason: "must be positive"}
	}
	if c.Audio.FrequencyDropPercent <= 0 || c.Audio.FrequencyDropPercent > 100 {
		return &Error{Field: "audio.frequency_drop_percent", Reason: "must be in (0, 100]"}
	}
	if len(c.Audio.Channels) == 0 {
		return &Error{Field: "audio.channels", Reason: "at least one motor channel required"}
	}
	if c.Audio.CalibrationSamples <= 0 {
		return &Error{Field: "audio.calibration_samples", Reason: "must be positive"}
	}
	for channel, t := range c.Audio.Overrides {
		if t.StallFrequencyThreshold <= 0 || t.FrequencyDropPercent <= 0 || t.FrequencyDropPercent > 100 {
			return &Error{Field: "audio.overrides." + channel, Reason: "invalid thresholds"}
		}
	}
	if _, err := stall.ParseLadder(c.RetryStrategyOrder); err != nil {
		return &Error{Field: "retry_strategy_order", Reason: err.Error()}
	}
	if c.Learning.LearningRate <= 0 || c.Learning.LearningRate > 1 {
		return &Error{Field: "learning.learning_rate", Reason: "must be in (0, 1]"}
	}
	if c.Learning.Epsilon < 0 || c.Learning.Epsilon > 1 {
		return &Error{Field: "learning.epsilon", Reason: "must be in [0, 1]"}
	}
	if c.Learning.MinAttemptsBeforeLearning < 1 {
		return &Error{Field: "learning.min_attempts_before_learning", Reason: "must be at least 1"}
	}
	for _, p := range c.Learning.Parameters {
		if p.Name == "" {
			return &Error{Field: "learning.parameters", Reason: "parameter name required"}
		}
		if p.Min >= p.Max {
			return &Error{Field: "learning.parameters." + p.Name, Reason: "min must be below max"}
		}
		if p.Default < p.Min || p.Default > p.Max {
			return &Error{Field: "learning.parameters." + p.Name, Reason: "default outside [min, max]"}
		}
	}
	if c.DatabasePath == "" {
		return &Error{Field: "database_path", Reason: "required"}
	}
	return nil
}

// Bounds returns the declared patrol area as grid bounds.
func (c Config) Bounds() grid.Bounds {
	return gridBounds(c)
}

func gridBounds(c Config) grid.Bounds {
	return grid.Bounds{X: c.Area.X, Y: c.Area.Y, Width: c.Area.Width, Height: c.Area.Height}
}

// TickInterval returns the control loop period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Control.TickIntervalMS) * time.Millisecond
}

// WatchdogTimeout returns the heartbeat timeout.
func (c Config) WatchdogTimeout() time.Duration {
	return time.Duration(c.Control.WatchdogTimeout * float64(time.Second))
}

// MaxPatrolTime returns the wall-clock patrol bound.
func (c Config) MaxPatrolTime() time.Duration {
	return time.Duration(c.Patrol.MaxPatrolTime * float64(time.Second))
}

// SampleCadence returns the audio sampler period.
func (c Config) SampleCadence() time.Duration {
	return time.Duration(c.Audio.SampleCadenceMS) * time.Millisecond
}

// FreshnessWindow returns how old an audio frame may be and still be
// acted on.
func (c Config) FreshnessWindow() time.Duration {
	return time.Duration(c.Audio.FreshnessWindowMS) * time.Millisecond
}

// StallConfig maps the audio options onto detector thresholds.
func (c Config) StallConfig() stall.Config {
	cfg := stall.Config{
		Default: stall.Thresholds{
			AbsoluteHz:   c.Audio.StallFrequencyThreshold,
			DropFraction: c.Audio.FrequencyDropPercent / 100,
		},
	}
	if len(c.Audio.Overrides) > 0 {
		cfg.Overrides = make(map[string]stall.Thresholds, len(c.Audio.Overrides))
		for channel, t := range c.Audio.Overrides {
			cfg.Overrides[channel] = stall.Thresholds{
				AbsoluteHz:   t.StallFrequencyThreshold,
				DropFraction: t.FrequencyDropPercent / 100,
			}
		}
	}
	return cfg
}
