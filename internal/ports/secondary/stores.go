// Package secondary defines the secondary ports (driven adapters) for
// the application: persistence and hardware interfaces through which
// the orchestrator drives external systems.
package secondary

import (
	"context"
	"time"
)

// AttemptRecord is one manipulation episode outcome as persisted.
// Records are immutable once appended.
type AttemptRecord struct {
	ID             string
	Timestamp      time.Time
	X              float64
	Y              float64
	Strategies     []string // ordered strategy trace for the episode
	Success        bool
	FailureReason  string
	TimingSnapshot map[string]float64 // learned-parameter values used
	SessionID      int64
}

// AttemptStore is the append-only outcome log. Existing rows are never
// updated, so read-side consumers may query concurrently.
type AttemptStore interface {
	// Append persists a new record. The record's ID must be
	// pre-populated by the caller.
	Append(ctx context.Context, record *AttemptRecord) error

	// Recent returns the newest n records, newest first.
	Recent(ctx context.Context, n int) ([]*AttemptRecord, error)

	// SuccessRate returns the success fraction over the newest window
	// records (all records when window <= 0). Zero when no records
	// exist.
	SuccessRate(ctx context.Context, window int) (float64, error)
}

// Hotspot is a coverage cell where targets keep appearing.
type Hotspot struct {
	Row      int
	Col      int
	Count    int
	LastSeen time.Time
}

// HotspotStore accumulates per-cell detection counts.
type HotspotStore interface {
	// Record increments the detection count for a cell.
	Record(ctx context.Context, row, col int) error

	// Hotspots returns cells with at least minCount detections,
	// highest count first.
	Hotspots(ctx context.Context, minCount int) ([]Hotspot, error)
}

// BaselineRecord is a persisted audio calibration baseline.
type BaselineRecord struct {
	Channel      string
	DominantFreq float64
	Amplitude    float64
	CalibratedAt time.Time
}

// BaselineStore persists calibration baselines keyed by motor channel.
// Save replaces any prior baseline for the channel (explicit
// recalibration).
type BaselineStore interface {
	Save(ctx context.Context, record BaselineRecord) error
	LoadAll(ctx context.Context) ([]BaselineRecord, error)
}

// SessionRecord summarizes one patrol session.
type SessionRecord struct {
	ID              int64
	StartedAt       time.Time
	EndedAt         time.Time
	Pattern         string
	CoveragePercent float64
	Attempts        int
	Successes       int
}

// SessionStore persists patrol session accounting.
type SessionStore interface {
	// Start opens a session row and returns its ID.
	Start(ctx context.Context, pattern string, at time.Time) (int64, error)

	// End closes a session with its final statistics.
	End(ctx context.Context, id int64, at time.Time, coveragePercent float64, attempts, successes int) error

	// Latest returns the most recent session, or nil when none exist.
	Latest(ctx context.Context) (*SessionRecord, error)
}

// ParameterRecord is a persisted learned-parameter state.
type ParameterRecord struct {
	Name      string
	Value     float64
	Samples   int
	UpdatedAt time.Time
}

// ParameterStore persists learned parameters across sessions.
type ParameterStore interface {
	SaveAll(ctx context.Context, records []ParameterRecord) error
	LoadAll(ctx context.Context) ([]ParameterRecord, error)
}
