// Package primary defines the primary ports (driving interfaces)
// through which the CLI invokes the application.
package primary

import "context"

// MissionService defines the primary port for running patrol missions.
type MissionService interface {
	// RunMission runs a full patrol mission until coverage completes,
	// the patrol time budget expires, the context is cancelled, or a
	// fault occurs. It returns a summary of the finished session.
	RunMission(ctx context.Context, opts MissionOptions) (*MissionSummary, error)
}

// MissionOptions selects per-run overrides on top of the loaded
// configuration. Zero values mean "use the configured default".
type MissionOptions struct {
	Pattern  string // lawnmower, spiral or grid
	MaxTicks int    // hard stop after this many control ticks, 0 = unlimited
}

// MissionSummary reports how a mission ended.
type MissionSummary struct {
	SessionID       int64
	FinalState      string
	CoveragePercent float64
	Attempts        int
	Successes       int
	Reason          string // why the mission ended
}
