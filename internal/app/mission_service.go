// Package app implements the application services behind the primary
// ports. The mission service owns the control loop: a single goroutine
// drives the state machine, actuation and dead reckoning, while the
// audio sampler and watchdog run alongside and signal in through
// channels.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/rover/internal/audio"
	"github.com/example/rover/internal/config"
	"github.com/example/rover/internal/core/coverage"
	"github.com/example/rover/internal/core/grid"
	"github.com/example/rover/internal/core/learn"
	"github.com/example/rover/internal/core/mission"
	"github.com/example/rover/internal/core/path"
	"github.com/example/rover/internal/core/patrol"
	"github.com/example/rover/internal/core/pose"
	"github.com/example/rover/internal/core/stall"
	"github.com/example/rover/internal/ports/primary"
	"github.com/example/rover/internal/ports/secondary"
	"github.com/example/rover/internal/safety"
)

const (
	// motionPulse is the duration of one drive command. Decoupled
	// from the tick interval so the loop stays responsive while the
	// rover still makes useful progress per command.
	motionPulse = 500 * time.Millisecond

	// turnTolerance is the heading error below which the rover drives
	// straight instead of turning in place.
	turnTolerance = 0.15 // radians

	// depthReduction scales the lowering timings after a ReduceDepth
	// retry rung.
	depthReduction = 0.7

	// raisePulse lifts the manipulator clear of the ground after a
	// scoop or dump.
	raisePulse = 1500 * time.Millisecond
)

// MissionServiceImpl implements the MissionService interface.
type MissionServiceImpl struct {
	cfg    config.Config
	logger *zap.Logger

	attempts  secondary.AttemptStore
	hotspots  secondary.HotspotStore
	baselines secondary.BaselineStore
	sessions  secondary.SessionStore
	params    secondary.ParameterStore

	actuator    secondary.Actuator
	vision      secondary.VisionSource
	ring        *audio.Ring
	audioSource audio.Source
}

// NewMissionService creates a mission service with injected hardware
// and stores.
func NewMissionService(
	cfg config.Config,
	logger *zap.Logger,
	attempts secondary.AttemptStore,
	hotspots secondary.HotspotStore,
	baselines secondary.BaselineStore,
	sessions secondary.SessionStore,
	params secondary.ParameterStore,
	actuator secondary.Actuator,
	vision secondary.VisionSource,
	ring *audio.Ring,
	audioSource audio.Source,
) *MissionServiceImpl {
	return &MissionServiceImpl{
		cfg:         cfg,
		logger:      logger,
		attempts:    attempts,
		hotspots:    hotspots,
		baselines:   baselines,
		sessions:    sessions,
		params:      params,
		actuator:    actuator,
		vision:      vision,
		ring:        ring,
		audioSource: audioSource,
	}
}

// missionRun is the mutable state of one mission. It is owned by the
// RunMission goroutine; nothing else touches it.
type missionRun struct {
	svc   *MissionServiceImpl
	cfg   config.Config
	log   *zap.Logger
	state mission.State

	est      *pose.Estimator
	cov      *coverage.Map
	planner  *patrol.Planner
	detector *stall.Detector
	episode  *stall.Episode
	optim    *learn.Optimizer

	sessionID int64
	startedAt time.Time

	// Current approach/manipulation target.
	target     *secondary.Detection
	targetCell grid.Cell

	// Per-episode state.
	trace      []string
	snapshot   map[string]float64
	depthScale float64

	// Patrol route: remaining cell centers toward the current
	// waypoint.
	route     []grid.Cell
	obstacles map[grid.Cell]bool

	maxTicks     int
	ticks        int
	attemptCount int
	successCount int
	reason       string
	done         bool
}

// RunMission runs one full patrol mission. It blocks until the mission
// finishes, faults or the context is cancelled.
func (s *MissionServiceImpl) RunMission(ctx context.Context, opts primary.MissionOptions) (*primary.MissionSummary, error) {
	patternName := s.cfg.Patrol.Pattern
	if opts.Pattern != "" {
		patternName = opts.Pattern
	}
	pattern, err := patrol.ParsePattern(patternName)
	if err != nil {
		return nil, fmt.Errorf("invalid patrol pattern: %w", err)
	}

	baselineRecords, err := s.baselines.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load baselines: %w", err)
	}
	detector, err := s.buildDetector(baselineRecords)
	if err != nil {
		return nil, err
	}

	ladder, err := stall.ParseLadder(s.cfg.RetryStrategyOrder)
	if err != nil {
		return nil, fmt.Errorf("invalid retry ladder: %w", err)
	}

	optim, err := s.buildOptimizer(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sessionID, err := s.sessions.Start(ctx, string(pattern), now)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	bounds := s.cfg.Bounds()
	run := &missionRun{
		svc:        s,
		cfg:        s.cfg,
		log:        s.logger.With(zap.Int64("session", sessionID)),
		state:      mission.InitialState(),
		est:        pose.NewEstimator(pose.Pose{X: s.cfg.Home.X, Y: s.cfg.Home.Y}),
		cov:        coverage.NewMap(bounds, s.cfg.Patrol.GridCellSize),
		planner:    patrol.NewPlanner(pattern, bounds, s.cfg.Patrol.GridCellSize),
		detector:   detector,
		episode:    stall.NewEpisode(ladder),
		optim:      optim,
		sessionID:  sessionID,
		startedAt:  now,
		maxTicks:   opts.MaxTicks,
		depthScale: 1,
		obstacles:  make(map[grid.Cell]bool),
	}

	summary := run.loop(ctx)

	endCtx := context.WithoutCancel(ctx)
	if err := s.sessions.End(endCtx, sessionID, time.Now(), summary.CoveragePercent, summary.Attempts, summary.Successes); err != nil {
		s.logger.Error("failed to close session", zap.Error(err))
	}
	if err := s.persistParameters(endCtx, optim); err != nil {
		s.logger.Error("failed to persist learned parameters", zap.Error(err))
	}

	return summary, nil
}

func (s *MissionServiceImpl) buildDetector(records []secondary.BaselineRecord) (*stall.Detector, error) {
	if len(records) == 0 {
		return nil, errors.New("no audio baselines stored, run calibrate first")
	}
	byChannel := make(map[string]bool, len(records))
	baselines := make([]stall.Baseline, 0, len(records))
	for _, r := range records {
		byChannel[r.Channel] = true
		baselines = append(baselines, stall.Baseline{
			Channel:      r.Channel,
			DominantFreq: r.DominantFreq,
			Amplitude:    r.Amplitude,
			CalibratedAt: r.CalibratedAt,
		})
	}
	for _, channel := range s.cfg.Audio.Channels {
		if !byChannel[channel] {
			return nil, fmt.Errorf("channel %q has no baseline, run calibrate first", channel)
		}
	}
	return stall.NewDetector(s.cfg.StallConfig(), baselines), nil
}

func (s *MissionServiceImpl) buildOptimizer(ctx context.Context) (*learn.Optimizer, error) {
	params := make([]learn.Parameter, 0, len(s.cfg.Learning.Parameters))
	for _, p := range s.cfg.Learning.Parameters {
		params = append(params, learn.Parameter{
			Name:    p.Name,
			Default: p.Default,
			Bounds:  learn.Bounds{Min: p.Min, Max: p.Max},
		})
	}
	optim := learn.NewOptimizer(learn.Settings{
		LearningRate: s.cfg.Learning.LearningRate,
		Epsilon:      s.cfg.Learning.Epsilon,
		MinAttempts:  s.cfg.Learning.MinAttemptsBeforeLearning,
	}, params, rand.New(rand.NewSource(time.Now().UnixNano())))

	stored, err := s.params.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load learned parameters: %w", err)
	}
	for _, r := range stored {
		optim.Restore(learn.Snapshot{Name: r.Name, Value: r.Value, Samples: r.Samples, UpdatedAt: r.UpdatedAt})
	}
	return optim, nil
}

func (s *MissionServiceImpl) persistParameters(ctx context.Context, optim *learn.Optimizer) error {
	snaps := optim.Snapshots(time.Now())
	records := make([]secondary.ParameterRecord, 0, len(snaps))
	for _, snap := range snaps {
		records = append(records, secondary.ParameterRecord{
			Name:      snap.Name,
			Value:     snap.Value,
			Samples:   snap.Samples,
			UpdatedAt: snap.UpdatedAt,
		})
	}
	return s.params.SaveAll(ctx, records)
}

// loop is the single-writer control loop.
func (r *missionRun) loop(ctx context.Context) *primary.MissionSummary {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sampler := audio.NewSampler(r.svc.ring, r.svc.audioSource, r.cfg.SampleCadence())
	sampler.Start(loopCtx)
	defer sampler.Stop()

	faultCh := make(chan string, 1)
	watchdog := safety.NewWatchdog(r.cfg.WatchdogTimeout(), func(reason string) {
		select {
		case faultCh <- reason:
		default:
		}
	}, r.log)
	watchdog.Start(loopCtx)
	defer watchdog.Stop()

	if err := r.apply(loopCtx, mission.EventSessionStart); err != nil {
		r.fail(loopCtx, err.Error())
		return r.summary()
	}

	ticker := time.NewTicker(r.cfg.TickInterval())
	defer ticker.Stop()

	for !r.done && !r.state.Terminal() {
		select {
		case <-ctx.Done():
			r.fail(loopCtx, "context cancelled")
		case reason := <-faultCh:
			r.fail(loopCtx, "watchdog: "+reason)
		case <-ticker.C:
			watchdog.Heartbeat()
			r.ticks++
			if r.maxTicks > 0 && r.ticks > r.maxTicks {
				r.fail(loopCtx, "tick budget exhausted")
				continue
			}
			if err := r.tick(loopCtx, watchdog); err != nil {
				r.fail(loopCtx, err.Error())
			}
		}
	}

	r.log.Info("mission finished",
		zap.String("state", string(r.state)),
		zap.String("reason", r.reason),
		zap.Float64("coverage", r.cov.Percent()),
		zap.Int("attempts", r.attemptCount),
		zap.Int("successes", r.successCount))
	return r.summary()
}

func (r *missionRun) summary() *primary.MissionSummary {
	return &primary.MissionSummary{
		SessionID:       r.sessionID,
		FinalState:      string(r.state),
		CoveragePercent: r.cov.Percent(),
		Attempts:        r.attemptCount,
		Successes:       r.successCount,
		Reason:          r.reason,
	}
}

// fail routes any fatal condition through the fault transition so the
// stop-all effect always runs.
func (r *missionRun) fail(ctx context.Context, reason string) {
	if r.reason == "" {
		r.reason = reason
	}
	if !r.state.Terminal() {
		_ = r.apply(ctx, mission.EventFault)
	}
	r.done = true
}

// tick advances the mission by one step of the current state.
func (r *missionRun) tick(ctx context.Context, watchdog *safety.Watchdog) error {
	switch r.state {
	case mission.StateIdle:
		// Back at Idle after returning home: the mission is over.
		r.done = true
		return nil
	case mission.StatePatrolling:
		return r.tickPatrol(ctx)
	case mission.StateApproaching:
		return r.tickApproach(ctx)
	case mission.StateManipulating:
		return r.tickManipulate(ctx, watchdog)
	case mission.StateRetrying:
		return r.tickRetry(ctx)
	case mission.StateTransporting:
		return r.tickTransport(ctx)
	case mission.StateDumping:
		return r.tickDump(ctx, watchdog)
	case mission.StateReturningHome:
		return r.tickReturnHome(ctx)
	default:
		return fmt.Errorf("tick in unexpected state %s", r.state)
	}
}

func (r *missionRun) tickPatrol(ctx context.Context) error {
	if time.Since(r.startedAt) >= r.cfg.MaxPatrolTime() {
		r.reason = "patrol time budget exhausted"
		return r.apply(ctx, mission.EventPatrolTimeout)
	}
	if r.cov.IsComplete(r.cfg.Patrol.CoverageThreshold) {
		r.reason = "coverage threshold reached"
		return r.apply(ctx, mission.EventCoverageComplete)
	}

	detections, err := r.svc.vision.DetectTargets(ctx)
	if err != nil {
		return fmt.Errorf("vision failure: %w", err)
	}
	if target := r.pickTarget(detections); target != nil {
		r.target = target
		r.targetCell = grid.CellAt(r.cov.Bounds(), r.cov.CellSize(), target.X, target.Y)
		if err := r.svc.hotspots.Record(ctx, r.targetCell.Row, r.targetCell.Col); err != nil {
			r.log.Warn("failed to record hotspot", zap.Error(err))
		}
		r.log.Info("target detected",
			zap.Float64("x", target.X),
			zap.Float64("y", target.Y),
			zap.Float64("confidence", target.Confidence))
		return r.apply(ctx, mission.EventTargetDetected)
	}

	return r.patrolStep(ctx)
}

// pickTarget selects the nearest detection outside an obstacle cell.
func (r *missionRun) pickTarget(detections []secondary.Detection) *secondary.Detection {
	var best *secondary.Detection
	bestDist := math.Inf(1)
	for i := range detections {
		d := &detections[i]
		cell := grid.CellAt(r.cov.Bounds(), r.cov.CellSize(), d.X, d.Y)
		if r.obstacles[cell] {
			continue
		}
		dist := r.est.DistanceTo(d.X, d.Y)
		if dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best
}

// patrolStep follows the current A* route, replanning toward the next
// waypoint when the route is exhausted.
func (r *missionRun) patrolStep(ctx context.Context) error {
	if len(r.route) == 0 {
		wp, ok := r.planner.Next(r.cov, r.cfg.Patrol.CoverageThreshold)
		if !ok {
			r.reason = "patrol pattern exhausted"
			return r.apply(ctx, mission.EventCoverageComplete)
		}
		if err := r.planRoute(wp.X, wp.Y); err != nil {
			if errors.Is(err, path.ErrNoPathFound) {
				r.log.Warn("waypoint unreachable, skipping",
					zap.Float64("x", wp.X), zap.Float64("y", wp.Y))
				return nil
			}
			return err
		}
	}

	cell := r.route[0]
	x, y := grid.Center(r.cov.Bounds(), r.cov.CellSize(), cell)
	arrived, err := r.driveStep(ctx, x, y, r.cfg.Patrol.GridCellSize/2)
	if err != nil {
		return err
	}
	if arrived {
		r.route = r.route[1:]
	}
	return nil
}

func (r *missionRun) planRoute(x, y float64) error {
	p := r.est.Current()
	bounds, cellSize := r.cov.Bounds(), r.cov.CellSize()
	start := grid.CellAt(bounds, cellSize, p.X, p.Y)
	goal := grid.CellAt(bounds, cellSize, x, y)

	cells, err := path.FindPath(start, goal, r.cov.Rows(), r.cov.Cols(), func(c grid.Cell) bool {
		return r.obstacles[c]
	})
	if err != nil {
		return err
	}
	// Drop the start cell, the rover is already in it.
	if len(cells) > 0 {
		cells = cells[1:]
	}
	r.route = cells
	return nil
}

func (r *missionRun) tickApproach(ctx context.Context) error {
	if r.target == nil {
		return errors.New("approaching with no target")
	}
	arrived, err := r.driveStep(ctx, r.target.X, r.target.Y, r.cfg.Patrol.ApproachTolerance)
	if err != nil {
		return err
	}
	if !arrived {
		return nil
	}

	r.beginEpisode()
	return r.apply(ctx, mission.EventPositioned)
}

// beginEpisode snapshots the learned timings for one manipulation
// episode. Exactly one attempt record is written per episode.
func (r *missionRun) beginEpisode() {
	r.trace = nil
	r.snapshot = make(map[string]float64, len(r.cfg.Learning.Parameters))
	for _, p := range r.cfg.Learning.Parameters {
		r.snapshot[p.Name] = r.optim.Value(p.Name)
	}
}

// tickManipulate runs the full dig sequence, polling for stalls after
// each joint pulse.
func (r *missionRun) tickManipulate(ctx context.Context, watchdog *safety.Watchdog) error {
	steps := []struct {
		joint  secondary.Joint
		motion secondary.Motion
		param  string
		scaled bool
	}{
		{secondary.JointBoom, secondary.MotionLower, "boom_down", true},
		{secondary.JointArm, secondary.MotionLower, "arm_down", true},
		{secondary.JointBucket, secondary.MotionScoop, "bucket_scoop", false},
	}

	for _, step := range steps {
		seconds := r.snapshot[step.param]
		if step.scaled {
			seconds *= r.depthScale
		}
		watchdog.Heartbeat()
		if err := r.svc.actuator.Actuate(ctx, step.joint, step.motion, secondsToDuration(seconds)); err != nil {
			return fmt.Errorf("actuation failure: %w", err)
		}

		stalled, err := r.checkStall(ctx)
		if err != nil {
			return err
		}
		if stalled {
			return r.apply(ctx, mission.EventStall)
		}
	}

	watchdog.Heartbeat()
	if err := r.svc.actuator.Actuate(ctx, secondary.JointBoom, secondary.MotionRaise, raisePulse); err != nil {
		return fmt.Errorf("actuation failure: %w", err)
	}
	return r.apply(ctx, mission.EventManipulationDone)
}

// checkStall polls the freshest frame for every calibrated channel.
// A stale ring is logged and treated as healthy for this poll.
func (r *missionRun) checkStall(ctx context.Context) (bool, error) {
	now := time.Now()
	for _, channel := range r.cfg.Audio.Channels {
		frame, err := r.svc.ring.Latest(channel, r.cfg.FreshnessWindow(), now)
		if errors.Is(err, audio.ErrSensorUnavailable) {
			r.log.Warn("no fresh audio frame", zap.String("channel", channel))
			continue
		}
		if err != nil {
			return false, err
		}

		event, stalled, err := r.detector.Check(channel, frame.DominantFreq, frame.Timestamp)
		if err != nil {
			return false, err
		}
		if stalled {
			r.log.Warn("stall detected",
				zap.String("channel", event.Channel),
				zap.Float64("observed_hz", event.ObservedFreq),
				zap.Float64("baseline_hz", event.BaselineFreq))
			return true, nil
		}
	}
	return false, nil
}

// tickRetry consumes the next rung of the retry ladder and executes
// its physical motion.
func (r *missionRun) tickRetry(ctx context.Context) error {
	strategy, err := r.episode.NextStrategy()
	if errors.Is(err, stall.ErrLadderExhausted) {
		// Defensive rail; ladders end in Skip so this is unreachable
		// unless the episode outlives its reset.
		return r.apply(ctx, mission.EventRetryExhausted)
	}
	if err != nil {
		return err
	}

	r.trace = append(r.trace, string(strategy))
	r.log.Info("executing retry strategy", zap.String("strategy", string(strategy)))

	switch strategy {
	case stall.StrategyBackUp:
		if err := r.moveDistance(ctx, secondary.DirBackward, 0.5); err != nil {
			return err
		}
		if err := r.moveDistance(ctx, secondary.DirForward, 0.4); err != nil {
			return err
		}
	case stall.StrategyAdjustAngle:
		if err := r.turnAngle(ctx, 15*math.Pi/180); err != nil {
			return err
		}
		if err := r.moveDistance(ctx, secondary.DirForward, 0.2); err != nil {
			return err
		}
	case stall.StrategyReduceDepth:
		r.depthScale *= depthReduction
	case stall.StrategySkip:
		r.log.Warn("retry ladder exhausted, skipping target")
		return r.apply(ctx, mission.EventRetryExhausted)
	}

	return r.apply(ctx, mission.EventRetryExecuted)
}

func (r *missionRun) tickTransport(ctx context.Context) error {
	goalX, goalY := r.cfg.Disposal.X, r.cfg.Disposal.Y
	marker, err := r.svc.vision.DetectDisposalMarker(ctx)
	if err != nil {
		return fmt.Errorf("vision failure: %w", err)
	}
	if marker != nil {
		goalX, goalY = marker.X, marker.Y
	}

	arrived, err := r.driveStep(ctx, goalX, goalY, r.cfg.Patrol.ApproachTolerance)
	if err != nil {
		return err
	}
	if !arrived {
		return nil
	}
	return r.apply(ctx, mission.EventDisposalReached)
}

func (r *missionRun) tickDump(ctx context.Context, watchdog *safety.Watchdog) error {
	watchdog.Heartbeat()
	if err := r.svc.actuator.Actuate(ctx, secondary.JointBucket, secondary.MotionDump, secondsToDuration(1)); err != nil {
		return fmt.Errorf("actuation failure: %w", err)
	}
	if err := r.svc.actuator.Actuate(ctx, secondary.JointBoom, secondary.MotionRaise, raisePulse); err != nil {
		return fmt.Errorf("actuation failure: %w", err)
	}
	return r.apply(ctx, mission.EventDumpDone)
}

func (r *missionRun) tickReturnHome(ctx context.Context) error {
	arrived, err := r.driveStep(ctx, r.cfg.Home.X, r.cfg.Home.Y, r.cfg.Patrol.ApproachTolerance)
	if err != nil {
		return err
	}
	if !arrived {
		return nil
	}
	return r.apply(ctx, mission.EventArrivedHome)
}

// driveStep issues one motion pulse toward (x, y) and dead-reckons the
// result. Returns true once the estimated position is within
// tolerance.
func (r *missionRun) driveStep(ctx context.Context, x, y, tolerance float64) (bool, error) {
	if r.est.DistanceTo(x, y) <= tolerance {
		return true, nil
	}

	turnRate := r.cfg.Control.TurnRateDegPerSec * math.Pi / 180
	angle := r.est.TurnAngleTo(x, y)
	if math.Abs(angle) > turnTolerance {
		dt := math.Min(motionPulse.Seconds(), math.Abs(angle)/turnRate)
		dir := secondary.DirLeft
		signed := turnRate
		if angle < 0 {
			dir = secondary.DirRight
			signed = -turnRate
		}
		if err := r.svc.actuator.Move(ctx, dir, secondsToDuration(dt)); err != nil {
			return false, fmt.Errorf("drive failure: %w", err)
		}
		r.est.Update(0, signed, dt)
		return false, nil
	}

	speed := r.cfg.Control.ForwardSpeed
	dt := math.Min(motionPulse.Seconds(), r.est.DistanceTo(x, y)/speed)
	if err := r.svc.actuator.Move(ctx, secondary.DirForward, secondsToDuration(dt)); err != nil {
		return false, fmt.Errorf("drive failure: %w", err)
	}
	r.est.Update(speed, 0, dt)
	r.markVisited()

	return r.est.DistanceTo(x, y) <= tolerance, nil
}

// moveDistance drives a fixed distance in one command, for retry
// motions.
func (r *missionRun) moveDistance(ctx context.Context, dir secondary.Direction, meters float64) error {
	speed := r.cfg.Control.ForwardSpeed
	dt := meters / speed
	if err := r.svc.actuator.Move(ctx, dir, secondsToDuration(dt)); err != nil {
		return fmt.Errorf("drive failure: %w", err)
	}
	linear := speed
	if dir == secondary.DirBackward {
		linear = -speed
	}
	r.est.Update(linear, 0, dt)
	r.markVisited()
	return nil
}

// turnAngle rotates in place by the signed angle, in radians.
func (r *missionRun) turnAngle(ctx context.Context, angle float64) error {
	turnRate := r.cfg.Control.TurnRateDegPerSec * math.Pi / 180
	dt := math.Abs(angle) / turnRate
	dir := secondary.DirLeft
	signed := turnRate
	if angle < 0 {
		dir = secondary.DirRight
		signed = -turnRate
	}
	if err := r.svc.actuator.Move(ctx, dir, secondsToDuration(dt)); err != nil {
		return fmt.Errorf("drive failure: %w", err)
	}
	r.est.Update(0, signed, dt)
	return nil
}

func (r *missionRun) markVisited() {
	p := r.est.Current()
	if err := r.cov.MarkVisited(p.X, p.Y, r.cfg.Patrol.VisitRadius); err != nil {
		// Dead reckoning drifted outside the declared area. Not
		// fatal, but worth seeing in the logs.
		r.log.Debug("position outside patrol area", zap.Float64("x", p.X), zap.Float64("y", p.Y))
	}
}

// apply runs one state machine transition and executes its effects.
func (r *missionRun) apply(ctx context.Context, event mission.Event) error {
	result, err := mission.Transition(r.state, event)
	if err != nil {
		return err
	}

	r.log.Debug("state transition",
		zap.String("from", string(r.state)),
		zap.String("event", string(event)),
		zap.String("to", string(result.Next)))
	r.state = result.Next

	for _, effect := range result.Effects {
		if err := r.execEffect(ctx, effect); err != nil {
			return err
		}
	}
	return nil
}

func (r *missionRun) execEffect(ctx context.Context, effect mission.Effect) error {
	switch effect {
	case mission.EffectResetEpisode:
		r.episode.Reset()
		r.depthScale = 1
	case mission.EffectRecordSuccess:
		return r.recordAttempt(ctx, true, "")
	case mission.EffectRecordFailure:
		if r.target != nil {
			// Avoid re-stalling on the same spot this session.
			r.obstacles[r.targetCell] = true
		}
		return r.recordAttempt(ctx, false, "retry ladder exhausted")
	case mission.EffectStopAll:
		r.svc.actuator.StopAll()
	}
	return nil
}

// recordAttempt writes the single attempt record for the finished
// episode and feeds the outcome to the optimizer.
func (r *missionRun) recordAttempt(ctx context.Context, success bool, reason string) error {
	if r.target == nil {
		return errors.New("attempt finished with no target")
	}

	record := &secondary.AttemptRecord{
		ID:             uuid.NewString(),
		Timestamp:      time.Now(),
		X:              r.target.X,
		Y:              r.target.Y,
		Strategies:     append([]string(nil), r.trace...),
		Success:        success,
		FailureReason:  reason,
		TimingSnapshot: r.snapshot,
		SessionID:      r.sessionID,
	}
	if err := r.svc.attempts.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	for name, observed := range r.snapshot {
		if err := r.optim.Record(name, success, observed); err != nil {
			r.log.Warn("optimizer rejected outcome", zap.String("parameter", name), zap.Error(err))
		}
	}

	r.attemptCount++
	if success {
		r.successCount++
	}
	r.target = nil
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Ensure MissionServiceImpl implements the interface
var _ primary.MissionService = (*MissionServiceImpl)(nil)
