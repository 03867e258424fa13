package app

import (
	"context"
	"fmt"
	"time"

	"github.com/example/rover/internal/ports/primary"
	"github.com/example/rover/internal/ports/secondary"
)

// ReportServiceImpl implements the ReportService interface over the
// persistence stores.
type ReportServiceImpl struct {
	attempts  secondary.AttemptStore
	hotspots  secondary.HotspotStore
	baselines secondary.BaselineStore
	sessions  secondary.SessionStore
	params    secondary.ParameterStore
}

// NewReportService creates a report service with injected stores.
func NewReportService(
	attempts secondary.AttemptStore,
	hotspots secondary.HotspotStore,
	baselines secondary.BaselineStore,
	sessions secondary.SessionStore,
	params secondary.ParameterStore,
) *ReportServiceImpl {
	return &ReportServiceImpl{
		attempts:  attempts,
		hotspots:  hotspots,
		baselines: baselines,
		sessions:  sessions,
		params:    params,
	}
}

// Status summarizes the latest session, calibration state and learned
// parameters.
func (s *ReportServiceImpl) Status(ctx context.Context) (*primary.StatusReport, error) {
	report := &primary.StatusReport{}

	session, err := s.sessions.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest session: %w", err)
	}
	if session != nil {
		report.Session = &primary.Session{
			ID:              session.ID,
			StartedAt:       session.StartedAt.Format(time.RFC3339),
			Pattern:         session.Pattern,
			CoveragePercent: session.CoveragePercent,
			Attempts:        session.Attempts,
			Successes:       session.Successes,
		}
		if !session.EndedAt.IsZero() {
			report.Session.EndedAt = session.EndedAt.Format(time.RFC3339)
		}
	}

	rate, err := s.attempts.SuccessRate(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to compute success rate: %w", err)
	}
	report.SuccessRate = rate

	baselines, err := s.baselines.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load baselines: %w", err)
	}
	for _, b := range baselines {
		report.Baselines = append(report.Baselines, primary.Baseline{
			Channel:      b.Channel,
			DominantFreq: b.DominantFreq,
			CalibratedAt: b.CalibratedAt.Format(time.RFC3339),
		})
	}

	params, err := s.params.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}
	for _, p := range params {
		report.Parameters = append(report.Parameters, primary.Parameter{
			Name:    p.Name,
			Value:   p.Value,
			Samples: p.Samples,
		})
	}

	return report, nil
}

// RecentAttempts returns the newest n attempts, newest first.
func (s *ReportServiceImpl) RecentAttempts(ctx context.Context, n int) ([]*primary.Attempt, error) {
	records, err := s.attempts.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attempts := make([]*primary.Attempt, 0, len(records))
	for _, r := range records {
		attempts = append(attempts, &primary.Attempt{
			ID:         r.ID,
			Timestamp:  r.Timestamp.Format(time.RFC3339),
			X:          r.X,
			Y:          r.Y,
			Strategies: r.Strategies,
			Success:    r.Success,
			Reason:     r.FailureReason,
		})
	}
	return attempts, nil
}

// Hotspots returns cells with at least minCount detections, highest
// count first.
func (s *ReportServiceImpl) Hotspots(ctx context.Context, minCount int) ([]primary.Hotspot, error) {
	records, err := s.hotspots.Hotspots(ctx, minCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotspots: %w", err)
	}

	hotspots := make([]primary.Hotspot, 0, len(records))
	for _, h := range records {
		hotspots = append(hotspots, primary.Hotspot{
			Row:      h.Row,
			Col:      h.Col,
			Count:    h.Count,
			LastSeen: h.LastSeen.Format(time.RFC3339),
		})
	}
	return hotspots, nil
}

// Ensure ReportServiceImpl implements the interface
var _ primary.ReportService = (*ReportServiceImpl)(nil)
