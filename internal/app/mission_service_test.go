package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/example/rover/internal/audio"
	"github.com/example/rover/internal/config"
	"github.com/example/rover/internal/core/mission"
	"github.com/example/rover/internal/ports/primary"
)

type missionFixture struct {
	svc       *MissionServiceImpl
	harness   *harness
	attempts  *memAttempts
	hotspots  *memHotspots
	baselines *memBaselines
	sessions  *memSessions
	params    *memParams
}

func newMissionFixture(t *testing.T, cfg config.Config, h *harness) *missionFixture {
	t.Helper()
	f := &missionFixture{
		harness:   h,
		attempts:  &memAttempts{},
		hotspots:  &memHotspots{},
		baselines: &memBaselines{},
		sessions:  &memSessions{},
		params:    &memParams{},
	}
	f.svc = NewMissionService(
		cfg, zaptest.NewLogger(t),
		f.attempts, f.hotspots, f.baselines, f.sessions, f.params,
		h, h, audio.NewRing(), h,
	)
	return f
}

func TestRunMissionRequiresCalibration(t *testing.T) {
	f := newMissionFixture(t, testConfig(), &harness{})

	_, err := f.svc.RunMission(context.Background(), primary.MissionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calibrate")
}

func TestRunMissionRejectsUnknownPattern(t *testing.T) {
	f := newMissionFixture(t, testConfig(), &harness{})
	seedBaselines(f.baselines, testConfig().Audio.Channels)

	_, err := f.svc.RunMission(context.Background(), primary.MissionOptions{Pattern: "zigzag"})
	assert.Error(t, err)
}

func TestRunMissionCollectsTarget(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	h := &harness{targetX: 1.0, targetY: 1.0, hasTarget: true, targetUntilScoop: true}
	f := newMissionFixture(t, cfg, h)
	seedBaselines(f.baselines, cfg.Audio.Channels)

	summary, err := f.svc.RunMission(context.Background(), primary.MissionOptions{})
	require.NoError(t, err)

	assert.Equal(t, string(mission.StateIdle), summary.FinalState)
	assert.Equal(t, 1, summary.Attempts)
	assert.Equal(t, 1, summary.Successes)
	assert.NotEmpty(t, summary.Reason)

	recs, err := f.attempts.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Success)
	assert.Empty(t, recs[0].Strategies, "clean pickup needs no retry rungs")
	assert.Equal(t, summary.SessionID, recs[0].SessionID)
	assert.Contains(t, recs[0].TimingSnapshot, "boom_down")

	// The detection cell was recorded as a hotspot.
	hotspots, err := f.hotspots.Hotspots(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, hotspots, 1)

	// Session closed with final statistics.
	session, err := f.sessions.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.False(t, session.EndedAt.IsZero())
	assert.Equal(t, 1, session.Successes)

	// Learned parameters persisted for the next session.
	params, err := f.params.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, params, len(cfg.Learning.Parameters))
}

func TestRunMissionStallRecoversViaBackUp(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	h := &harness{
		targetX: 1.0, targetY: 1.0, hasTarget: true, targetUntilScoop: true,
		stalled: true, clearStallOnBackUp: true,
	}
	f := newMissionFixture(t, cfg, h)
	seedBaselines(f.baselines, cfg.Audio.Channels)

	summary, err := f.svc.RunMission(context.Background(), primary.MissionOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Attempts)
	assert.Equal(t, 1, summary.Successes)

	recs, err := f.attempts.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].Success)
	// The sampler may publish one more stalled frame before the
	// back-up takes effect, so later rungs can appear; the episode
	// must start with the first ladder rung either way.
	require.NotEmpty(t, recs[0].Strategies)
	assert.Equal(t, "back_up", recs[0].Strategies[0])
	assert.NotContains(t, recs[0].Strategies, "skip")
}

func TestRunMissionLadderExhaustionRecordsFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	h := &harness{
		targetX: 1.0, targetY: 1.0, hasTarget: true,
		stalled: true, // never clears
	}
	f := newMissionFixture(t, cfg, h)
	seedBaselines(f.baselines, cfg.Audio.Channels)

	summary, err := f.svc.RunMission(context.Background(), primary.MissionOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Attempts)
	assert.Zero(t, summary.Successes)
	assert.Equal(t, string(mission.StateIdle), summary.FinalState, "a skipped target must not end the mission")

	recs, err := f.attempts.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recs, 1, "exactly one record per episode")
	assert.False(t, recs[0].Success)
	assert.Equal(t, "retry ladder exhausted", recs[0].FailureReason)
	assert.Equal(t, []string{"back_up", "adjust_angle", "reduce_depth", "skip"}, recs[0].Strategies)
}

func TestRunMissionContextCancelStopsMotors(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Area = config.Area{Width: 10, Height: 10}
	cfg.Disposal = config.Position{X: 9.5, Y: 9.5}
	cfg.Patrol.CoverageThreshold = 100
	cfg.Patrol.MaxPatrolTime = 300 // long enough that only cancel ends it
	h := &harness{}
	f := newMissionFixture(t, cfg, h)
	seedBaselines(f.baselines, cfg.Audio.Channels)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	summary, err := f.svc.RunMission(ctx, primary.MissionOptions{})
	require.NoError(t, err)

	assert.Equal(t, string(mission.StateFault), summary.FinalState)
	assert.Contains(t, summary.Reason, "cancelled")
	assert.Positive(t, h.stopAllCount(), "fault must stop all motors")

	// The session row is still closed after a fault.
	session, err := f.sessions.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.False(t, session.EndedAt.IsZero())
}

func TestRunMissionMaxTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Area = config.Area{Width: 10, Height: 10}
	cfg.Disposal = config.Position{X: 9.5, Y: 9.5}
	cfg.Patrol.CoverageThreshold = 100
	h := &harness{}
	f := newMissionFixture(t, cfg, h)
	seedBaselines(f.baselines, cfg.Audio.Channels)

	summary, err := f.svc.RunMission(context.Background(), primary.MissionOptions{MaxTicks: 10})
	require.NoError(t, err)

	assert.Equal(t, string(mission.StateFault), summary.FinalState)
	assert.Contains(t, summary.Reason, "tick budget")
	assert.Positive(t, h.stopAllCount())
}

func TestRunMissionPatrolTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig()
	cfg.Patrol.MaxPatrolTime = 0.05
	cfg.Patrol.CoverageThreshold = 100
	h := &harness{}
	f := newMissionFixture(t, cfg, h)
	seedBaselines(f.baselines, cfg.Audio.Channels)

	summary, err := f.svc.RunMission(context.Background(), primary.MissionOptions{})
	require.NoError(t, err)

	assert.Equal(t, string(mission.StateIdle), summary.FinalState)
	assert.Contains(t, summary.Reason, "time budget")
	assert.Zero(t, summary.Attempts)
}
