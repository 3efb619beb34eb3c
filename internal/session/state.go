package session

import "fmt"

// State is a step of the per-combination search cycle.
type State int

const (
	// StateIdle is the search form, ready for the next combination.
	StateIdle State = iota

	// StateFormReset means the form has been cleared.
	StateFormReset

	// StateFiltersSet means the major and career options are selected.
	StateFiltersSet

	// StateSubmitted means the search has been submitted and has settled.
	StateSubmitted

	// StateErrorDetected means the form shows an error message.
	StateErrorDetected

	// StateResultsReady means a result page is showing.
	StateResultsReady

	// StateDelegated means a crawler owns the page.
	StateDelegated
)

var stateNames = map[State]string{
	StateIdle:          "idle",
	StateFormReset:     "form-reset",
	StateFiltersSet:    "filters-set",
	StateSubmitted:     "submitted",
	StateErrorDetected: "error-detected",
	StateResultsReady:  "results-ready",
	StateDelegated:     "delegated",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// transitions lists the allowed moves out of each state.
var transitions = map[State][]State{
	StateIdle:          {StateFormReset},
	StateFormReset:     {StateFiltersSet},
	StateFiltersSet:    {StateSubmitted},
	StateSubmitted:     {StateErrorDetected, StateResultsReady},
	StateErrorDetected: {StateIdle},
	StateResultsReady:  {StateDelegated},
	StateDelegated:     {StateIdle},
}

// machine tracks the search cycle of the current combination.
type machine struct {
	state   State
	history []State
}

func newMachine() *machine {
	return &machine{state: StateIdle, history: []State{StateIdle}}
}

// transition moves to the given state if the table allows it.
func (m *machine) transition(to State) error {
	for _, allowed := range transitions[m.state] {
		if allowed == to {
			m.state = to
			m.history = append(m.history, to)
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.state, to)
}

// reset returns to StateIdle from any state. It is used after the page has
// been re-navigated to the search form following a failure, and at the
// start of every combination.
func (m *machine) reset() {
	m.state = StateIdle
	m.history = []State{StateIdle}
}
