package playback

// State is the controller's activity.
type State int

const (
	// StateIdle indicates no session is fetching or playing.
	StateIdle State = iota
	// StateRequesting indicates audio is being resolved for a chunk.
	StateRequesting
	// StatePlaying indicates the sink is playing a chunk.
	StatePlaying
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode is the kind of session.
type Mode int

const (
	ModeSingleStep Mode = iota
	ModeSequence
	ModePregenerate
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSingleStep:
		return "step"
	case ModeSequence:
		return "sequence"
	case ModePregenerate:
		return "pregenerate"
	default:
		return "unknown"
	}
}

// stateMachine validates state transitions.
type stateMachine struct {
	current     State
	transitions map[State][]State
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:       {StateRequesting},
			StateRequesting: {StatePlaying, StateIdle, StateRequesting},
			StatePlaying:    {StateIdle, StateRequesting},
		},
	}
}

// Transition moves to the given state if the move is allowed.
func (sm *stateMachine) Transition(to State) bool {
	if sm.current == to {
		return true
	}
	valid := false
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to
	return true
}

// Reset forces the machine back to idle. Abort and error use it from any
// state.
func (sm *stateMachine) Reset() {
	sm.current = StateIdle
}

// Current returns the current state.
func (sm *stateMachine) Current() State {
	return sm.current
}
