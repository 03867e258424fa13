package mission

import "fmt"

// Result captures a transition outcome: the new state plus the side
// effects the orchestrator must execute.
type Result struct {
	Next    State
	Effects []Effect
}

// InvalidTransitionError reports an event that is not legal in the
// current state. The orchestrator treats it as a programming error.
type InvalidTransitionError struct {
	From  State
	Event Event
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("event %q not valid in state %q", e.Event, e.From)
}

// transitionKey indexes the closed transition table.
type transitionKey struct {
	from  State
	event Event
}

var transitions = map[transitionKey]Result{
	{StateIdle, EventSessionStart}: {Next: StatePatrolling},

	{StatePatrolling, EventTargetDetected}:   {Next: StateApproaching},
	{StatePatrolling, EventCoverageComplete}: {Next: StateReturningHome},
	{StatePatrolling, EventPatrolTimeout}:    {Next: StateReturningHome},

	{StateApproaching, EventPositioned}: {Next: StateManipulating},

	{StateManipulating, EventStall}: {Next: StateRetrying},
	{StateManipulating, EventManipulationDone}: {
		Next:    StateTransporting,
		Effects: []Effect{EffectResetEpisode},
	},

	{StateRetrying, EventRetryExecuted}: {Next: StateManipulating},
	{StateRetrying, EventRetryExhausted}: {
		Next:    StatePatrolling,
		Effects: []Effect{EffectRecordFailure, EffectResetEpisode},
	},

	{StateTransporting, EventDisposalReached}: {Next: StateDumping},

	{StateDumping, EventDumpDone}: {
		Next:    StatePatrolling,
		Effects: []Effect{EffectRecordSuccess},
	},

	{StateReturningHome, EventArrivedHome}: {Next: StateIdle},
}

// Transition applies an event to a state. EventFault is accepted from
// every state and always halts actuation; all other pairs must appear
// in the transition table.
func Transition(from State, event Event) (Result, error) {
	if event == EventFault {
		return Result{Next: StateFault, Effects: []Effect{EffectStopAll}}, nil
	}
	if from == StateFault {
		return Result{}, &InvalidTransitionError{From: from, Event: event}
	}
	if result, ok := transitions[transitionKey{from, event}]; ok {
		return result, nil
	}
	return Result{}, &InvalidTransitionError{From: from, Event: event}
}

// InitialState returns the state a new session starts in.
func InitialState() State { return StateIdle }
