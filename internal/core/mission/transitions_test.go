package mission

import (
	"errors"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name        string
		from        State
		event       Event
		wantNext    State
		wantEffects []Effect
	}{
		{"session start", StateIdle, EventSessionStart, StatePatrolling, nil},
		{"target detected while patrolling", StatePatrolling, EventTargetDetected, StateApproaching, nil},
		{"coverage complete", StatePatrolling, EventCoverageComplete, StateReturningHome, nil},
		{"patrol timeout", StatePatrolling, EventPatrolTimeout, StateReturningHome, nil},
		{"positioned at target", StateApproaching, EventPositioned, StateManipulating, nil},
		{"stall triggers retry", StateManipulating, EventStall, StateRetrying, nil},
		{
			"manipulation success",
			StateManipulating, EventManipulationDone, StateTransporting,
			[]Effect{EffectResetEpisode},
		},
		{"retry correction done", StateRetrying, EventRetryExecuted, StateManipulating, nil},
		{
			"ladder exhausted",
			StateRetrying, EventRetryExhausted, StatePatrolling,
			[]Effect{EffectRecordFailure, EffectResetEpisode},
		},
		{"disposal reached", StateTransporting, EventDisposalReached, StateDumping, nil},
		{
			"dump completed",
			StateDumping, EventDumpDone, StatePatrolling,
			[]Effect{EffectRecordSuccess},
		},
		{"arrived home", StateReturningHome, EventArrivedHome, StateIdle, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.from, tt.event)
			if err != nil {
				t.Fatalf("Transition(%s, %s): %v", tt.from, tt.event, err)
			}
			if got.Next != tt.wantNext {
				t.Errorf("Next = %s, want %s", got.Next, tt.wantNext)
			}
			if len(got.Effects) != len(tt.wantEffects) {
				t.Fatalf("Effects = %v, want %v", got.Effects, tt.wantEffects)
			}
			for i := range tt.wantEffects {
				if got.Effects[i] != tt.wantEffects[i] {
					t.Errorf("Effects[%d] = %s, want %s", i, got.Effects[i], tt.wantEffects[i])
				}
			}
		})
	}
}

func TestFaultFromEveryState(t *testing.T) {
	states := []State{
		StateIdle, StatePatrolling, StateApproaching, StateManipulating,
		StateRetrying, StateTransporting, StateDumping, StateReturningHome, StateFault,
	}

	for _, from := range states {
		got, err := Transition(from, EventFault)
		if err != nil {
			t.Fatalf("Transition(%s, fault): %v", from, err)
		}
		if got.Next != StateFault {
			t.Errorf("fault from %s -> %s, want %s", from, got.Next, StateFault)
		}
		if len(got.Effects) != 1 || got.Effects[0] != EffectStopAll {
			t.Errorf("fault effects = %v, want [stop_all]", got.Effects)
		}
	}
}

func TestFaultIsTerminal(t *testing.T) {
	if !StateFault.Terminal() {
		t.Error("StateFault.Terminal() = false")
	}

	_, err := Transition(StateFault, EventSessionStart)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Errorf("leaving fault: err = %v, want InvalidTransitionError", err)
	}
}

func TestInvalidPairsRejected(t *testing.T) {
	tests := []struct {
		from  State
		event Event
	}{
		{StateIdle, EventTargetDetected},
		{StatePatrolling, EventManipulationDone},
		{StateDumping, EventStall},
		{StateTransporting, EventDumpDone},
	}

	for _, tt := range tests {
		if _, err := Transition(tt.from, tt.event); err == nil {
			t.Errorf("Transition(%s, %s) succeeded, want error", tt.from, tt.event)
		}
	}
}

func TestInitialState(t *testing.T) {
	if got := InitialState(); got != StateIdle {
		t.Errorf("InitialState() = %s, want %s", got, StateIdle)
	}
}
