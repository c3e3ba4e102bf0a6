package playback

import "testing"

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		to    State
		valid bool
	}{
		{"idle to requesting", StateIdle, StateRequesting, true},
		{"idle to playing", StateIdle, StatePlaying, false},
		{"requesting to playing", StateRequesting, StatePlaying, true},
		{"requesting to idle", StateRequesting, StateIdle, true},
		{"playing to requesting", StatePlaying, StateRequesting, true},
		{"playing to idle", StatePlaying, StateIdle, true},
		{"same state", StatePlaying, StatePlaying, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newStateMachine()
			sm.current = tt.from

			if got := sm.Transition(tt.to); got != tt.valid {
				t.Errorf("Expected %v, got %v", tt.valid, got)
			}
			want := tt.from
			if tt.valid {
				want = tt.to
			}
			if sm.Current() != want {
				t.Errorf("Expected state %s, got %s", want, sm.Current())
			}
		})
	}
}

func TestStateMachineReset(t *testing.T) {
	sm := newStateMachine()
	sm.Transition(StateRequesting)
	sm.Transition(StatePlaying)
	sm.Reset()

	if sm.Current() != StateIdle {
		t.Errorf("Expected idle after reset, got %s", sm.Current())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "idle"},
		{StateRequesting, "requesting"},
		{StatePlaying, "playing"},
		{State(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}
