package primary

import "context"

// ReportService defines the primary port for inspecting stored state:
// session status, attempt history and detection hotspots.
type ReportService interface {
	// Status summarizes the latest session, calibration state and
	// learned parameters.
	Status(ctx context.Context) (*StatusReport, error)

	// RecentAttempts returns the newest n attempts, newest first.
	RecentAttempts(ctx context.Context, n int) ([]*Attempt, error)

	// Hotspots returns cells with at least minCount detections,
	// highest count first.
	Hotspots(ctx context.Context, minCount int) ([]Hotspot, error)
}

// StatusReport is the aggregate status view.
type StatusReport struct {
	Session     *Session
	SuccessRate float64 // over all recorded attempts
	Baselines   []Baseline
	Parameters  []Parameter
}

// Session describes one patrol session at the port boundary.
type Session struct {
	ID              int64
	StartedAt       string
	EndedAt         string
	Pattern         string
	CoveragePercent float64
	Attempts        int
	Successes       int
}

// Baseline describes one calibrated channel.
type Baseline struct {
	Channel      string
	DominantFreq float64
	CalibratedAt string
}

// Parameter describes one learned parameter value.
type Parameter struct {
	Name    string
	Value   float64
	Samples int
}

// Attempt describes one manipulation attempt at the port boundary.
type Attempt struct {
	ID         string
	Timestamp  string
	X          float64
	Y          float64
	Strategies []string
	Success    bool
	Reason     string
}

// Hotspot describes one detection hotspot cell.
type Hotspot struct {
	Row      int
	Col      int
	Count    int
	LastSeen string
}
