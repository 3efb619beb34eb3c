package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestMachineTransition tests the combination state machine on its own.
func TestMachineTransition(t *testing.T) {
	t.Parallel()

	t.Run("results path", func(t *testing.T) {
		t.Parallel()

		m := newMachine()
		path := []State{StateFormReset, StateFiltersSet, StateSubmitted, StateResultsReady, StateDelegated, StateIdle}
		for _, to := range path {
			if err := m.transition(to); err != nil {
				t.Fatalf("transition to %s: %v", to, err)
			}
		}
		want := append([]State{StateIdle}, path...)
		if diff := cmp.Diff(want, m.history); diff != "" {
			t.Errorf("history mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("error path", func(t *testing.T) {
		t.Parallel()

		m := newMachine()
		for _, to := range []State{StateFormReset, StateFiltersSet, StateSubmitted, StateErrorDetected, StateIdle} {
			if err := m.transition(to); err != nil {
				t.Fatalf("transition to %s: %v", to, err)
			}
		}
		if m.state != StateIdle {
			t.Errorf("expected idle, got %s", m.state)
		}
	})

	t.Run("invalid moves are rejected", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			from []State
			to   State
		}{
			{name: "submit before filters", from: []State{StateFormReset}, to: StateSubmitted},
			{name: "delegate without results", from: []State{StateFormReset, StateFiltersSet, StateSubmitted}, to: StateDelegated},
			{name: "skip the reset", from: nil, to: StateFiltersSet},
			{name: "results after error", from: []State{StateFormReset, StateFiltersSet, StateSubmitted, StateErrorDetected}, to: StateResultsReady},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				m := newMachine()
				for _, s := range tt.from {
					if err := m.transition(s); err != nil {
						t.Fatalf("setup transition to %s: %v", s, err)
					}
				}
				before := m.state

				err := m.transition(tt.to)
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				if m.state != before {
					t.Errorf("state changed on rejected move: %s -> %s", before, m.state)
				}
			})
		}
	})

	t.Run("reset from any state", func(t *testing.T) {
		t.Parallel()

		m := newMachine()
		for _, to := range []State{StateFormReset, StateFiltersSet, StateSubmitted, StateResultsReady} {
			if err := m.transition(to); err != nil {
				t.Fatalf("transition to %s: %v", to, err)
			}
		}
		m.reset()
		if m.state != StateIdle {
			t.Errorf("expected idle after reset, got %s", m.state)
		}
		if len(m.history) != 1 {
			t.Errorf("expected history to restart, got %v", m.history)
		}
	})
}

// TestStateString tests state names.
func TestStateString(t *testing.T) {
	t.Parallel()

	for s := StateIdle; s <= StateDelegated; s++ {
		if s.String() == "unknown" {
			t.Errorf("state %d has no name", int(s))
		}
	}
	if got := State(42).String(); got != "unknown" {
		t.Errorf("expected unknown, got %q", got)
	}
}
