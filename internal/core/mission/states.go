// Package mission contains the pure task state machine for a patrol
// session. This is part of the Functional Core - no I/O; each
// transition is a pure function of (state, event).
package mission

// State is the orchestrator's current task state. Single writer: the
// orchestrator itself.
type State string

const (
	StateIdle          State = "idle"
	StatePatrolling    State = "patrolling"
	StateApproaching   State = "approaching"
	StateManipulating  State = "manipulating"
	StateRetrying      State = "retrying"
	StateTransporting  State = "transporting"
	StateDumping       State = "dumping"
	StateReturningHome State = "returning_home"
	// StateFault is terminal for the session. Reaching it halts all
	// actuation; recovery requires an external restart.
	StateFault State = "fault"
)

// Event is an input to the state machine.
type Event string

const (
	// EventSessionStart begins patrol after home calibration.
	EventSessionStart Event = "session_start"
	// EventTargetDetected is an external vision detection.
	EventTargetDetected Event = "target_detected"
	// EventCoverageComplete fires when the coverage map reaches the
	// configured threshold.
	EventCoverageComplete Event = "coverage_complete"
	// EventPatrolTimeout fires when max_patrol_time elapses.
	EventPatrolTimeout Event = "patrol_timeout"
	// EventPositioned fires once the rover is within tolerance of the
	// target.
	EventPositioned Event = "positioned"
	// EventStall is a stall signal from the detector.
	EventStall Event = "stall"
	// EventRetryExecuted fires after a non-Skip strategy's physical
	// correction completes.
	EventRetryExecuted Event = "retry_executed"
	// EventRetryExhausted fires when the ladder returns Skip.
	EventRetryExhausted Event = "retry_exhausted"
	// EventManipulationDone fires when the full action completes with
	// no stall observed.
	EventManipulationDone Event = "manipulation_done"
	// EventDisposalReached is the external disposal-marker arrival.
	EventDisposalReached Event = "disposal_reached"
	// EventDumpDone fires after the dump action executes.
	EventDumpDone Event = "dump_done"
	// EventArrivedHome fires on arrival at the home position.
	EventArrivedHome Event = "arrived_home"
	// EventFault is the safety-fault or manual-stop signal. Valid
	// from every state.
	EventFault Event = "fault"
)

// Effect is a side effect the orchestrator must execute alongside a
// transition.
type Effect string

const (
	// EffectResetEpisode clears the stall retry episode.
	EffectResetEpisode Effect = "reset_episode"
	// EffectRecordFailure appends a failed AttemptRecord with the full
	// strategy trace.
	EffectRecordFailure Effect = "record_failure"
	// EffectRecordSuccess appends a successful AttemptRecord.
	EffectRecordSuccess Effect = "record_success"
	// EffectStopAll aborts all actuation immediately.
	EffectStopAll Effect = "stop_all"
)

// Terminal reports whether a state ends the session.
func (s State) Terminal() bool { return s == StateFault }
