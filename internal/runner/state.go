package runner

import "fmt"

// State is the orchestrator's position in a run. Transitions only move forward.
type State int

const (
	StateInit State = iota
	StateTechnicalScreening
	StateFundamentalScreening
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateTechnicalScreening:
		return "technical_screening"
	case StateFundamentalScreening:
		return "fundamental_screening"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// advance moves to next, refusing backward or repeated transitions.
func (s *State) advance(next State) error {
	if next <= *s {
		return fmt.Errorf("invalid transition %s -> %s", *s, next)
	}
	*s = next
	return nil
}
