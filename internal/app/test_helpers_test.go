package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/example/rover/internal/audio"
	"github.com/example/rover/internal/config"
	"github.com/example/rover/internal/ports/secondary"
)

// ---- in-memory stores ----

type memAttempts struct {
	mu      sync.Mutex
	records []*secondary.AttemptRecord
}

func (m *memAttempts) Append(_ context.Context, r *secondary.AttemptRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

func (m *memAttempts) Recent(_ context.Context, n int) ([]*secondary.AttemptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*secondary.AttemptRecord, len(m.records))
	copy(out, m.records)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (m *memAttempts) SuccessRate(_ context.Context, window int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.records
	if window > 0 && len(records) > window {
		records = records[len(records)-window:]
	}
	if len(records) == 0 {
		return 0, nil
	}
	successes := 0
	for _, r := range records {
		if r.Success {
			successes++
		}
	}
	return float64(successes) / float64(len(records)), nil
}

type memHotspots struct {
	mu     sync.Mutex
	counts map[[2]int]int
}

func (m *memHotspots) Record(_ context.Context, row, col int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[[2]int]int)
	}
	m.counts[[2]int{row, col}]++
	return nil
}

func (m *memHotspots) Hotspots(_ context.Context, minCount int) ([]secondary.Hotspot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []secondary.Hotspot
	for key, count := range m.counts {
		if count >= minCount {
			out = append(out, secondary.Hotspot{Row: key[0], Col: key[1], Count: count})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

type memBaselines struct {
	mu      sync.Mutex
	records map[string]secondary.BaselineRecord
}

func (m *memBaselines) Save(_ context.Context, r secondary.BaselineRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]secondary.BaselineRecord)
	}
	m.records[r.Channel] = r
	return nil
}

func (m *memBaselines) LoadAll(_ context.Context) ([]secondary.BaselineRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []secondary.BaselineRecord
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Channel < out[j].Channel })
	return out, nil
}

type memSessions struct {
	mu      sync.Mutex
	nextID  int64
	records []*secondary.SessionRecord
}

func (m *memSessions) Start(_ context.Context, pattern string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.records = append(m.records, &secondary.SessionRecord{ID: m.nextID, StartedAt: at, Pattern: pattern})
	return m.nextID, nil
}

func (m *memSessions) End(_ context.Context, id int64, at time.Time, coverage float64, attempts, successes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.ID == id {
			r.EndedAt = at
			r.CoveragePercent = coverage
			r.Attempts = attempts
			r.Successes = successes
			return nil
		}
	}
	return errors.New("session not found")
}

func (m *memSessions) Latest(_ context.Context) (*secondary.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) == 0 {
		return nil, nil
	}
	return m.records[len(m.records)-1], nil
}

type memParams struct {
	mu      sync.Mutex
	records map[string]secondary.ParameterRecord
}

func (m *memParams) SaveAll(_ context.Context, records []secondary.ParameterRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = make(map[string]secondary.ParameterRecord)
	}
	for _, r := range records {
		m.records[r.Name] = r
	}
	return nil
}

func (m *memParams) LoadAll(_ context.Context) ([]secondary.ParameterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []secondary.ParameterRecord
	for _, r := range m.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---- scripted hardware ----

// harness wires the scripted actuator, vision and audio source around
// shared flags so tests can couple motor motion to sensor behavior.
type harness struct {
	mu         sync.Mutex
	moves      []secondary.Direction
	actuations []secondary.Motion
	scoops     int
	stopAll    int

	// stalled controls the audio frames for the manipulator channels.
	stalled bool
	// clearStallOnBackUp releases the stall after a backward move.
	clearStallOnBackUp bool

	// targets visible to the vision fake until a scoop happens.
	targetX, targetY float64
	hasTarget        bool
	targetUntilScoop bool
}

func (h *harness) Move(_ context.Context, dir secondary.Direction, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.moves = append(h.moves, dir)
	if dir == secondary.DirBackward && h.clearStallOnBackUp {
		h.stalled = false
	}
	return nil
}

func (h *harness) Actuate(_ context.Context, _ secondary.Joint, motion secondary.Motion, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actuations = append(h.actuations, motion)
	if motion == secondary.MotionScoop {
		h.scoops++
	}
	return nil
}

func (h *harness) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopAll++
}

func (h *harness) DetectTargets(_ context.Context) ([]secondary.Detection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.hasTarget {
		return nil, nil
	}
	if h.targetUntilScoop && h.scoops > 0 {
		return nil, nil
	}
	return []secondary.Detection{{X: h.targetX, Y: h.targetY, Confidence: 0.9}}, nil
}

func (h *harness) DetectDisposalMarker(_ context.Context) (*secondary.MarkerSighting, error) {
	return nil, nil
}

// Frames implements audio.Source. The drive channel always reads
// healthy; the arm channel collapses while stalled.
func (h *harness) Frames(now time.Time) []audio.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	armFreq := 450.0
	if h.stalled {
		armFreq = 50.0
	}
	return []audio.Frame{
		{Channel: "drive_motor", DominantFreq: 450, Amplitude: 0.7, Timestamp: now},
		{Channel: "arm_motor", DominantFreq: armFreq, Amplitude: 0.7, Timestamp: now},
	}
}

func (h *harness) stopAllCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopAll
}

// testConfig returns a small, fast arena for control loop tests.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Area = config.Area{Width: 2, Height: 2}
	cfg.Home = config.Position{X: 0.25, Y: 0.25}
	cfg.Disposal = config.Position{X: 1.75, Y: 1.75}
	cfg.Patrol.CoverageThreshold = 30
	cfg.Patrol.MaxPatrolTime = 15
	cfg.Control.TickIntervalMS = 1
	cfg.Control.ForwardSpeed = 1.0
	cfg.Control.TurnRateDegPerSec = 90
	cfg.Audio.SampleCadenceMS = 1
	cfg.Audio.Channels = []string{"drive_motor", "arm_motor"}
	cfg.Audio.CalibrationSamples = 5
	return cfg
}

func seedBaselines(store secondary.BaselineStore, channels []string) {
	for _, channel := range channels {
		_ = store.Save(context.Background(), secondary.BaselineRecord{
			Channel:      channel,
			DominantFreq: 450,
			Amplitude:    0.7,
			CalibratedAt: time.Now(),
		})
	}
}
