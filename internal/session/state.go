package session

// State is the parse state of the open document.
type State int

const (
	// StateIdle indicates no document is loaded.
	StateIdle State = iota
	// StateOpeningFile indicates the file type is being detected and opened.
	StateOpeningFile
	// StateExtractingFast indicates the first page is being read.
	StateExtractingFast
	// StateReady indicates words can be played.
	StateReady
	// StateExtractingBackground indicates a later page is being read.
	StateExtractingBackground
	// StateFailed indicates opening or parsing failed.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpeningFile:
		return "opening"
	case StateExtractingFast:
		return "extracting"
	case StateReady:
		return "ready"
	case StateExtractingBackground:
		return "extracting-background"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanPlay returns true if words may be in the store.
func (s State) CanPlay() bool {
	return s == StateReady || s == StateExtractingBackground || s == StateFailed
}

// StateMachine guards the parse state transitions. It is not safe for
// concurrent use; the session serializes access.
type StateMachine struct {
	current     State
	transitions map[State][]State
	onEnter     map[State]func()
	onExit      map[State]func()
}

// NewStateMachine creates a state machine in StateIdle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:                 {StateOpeningFile},
			StateOpeningFile:          {StateExtractingFast, StateFailed},
			StateExtractingFast:       {StateReady, StateFailed},
			StateReady:                {StateExtractingBackground},
			StateExtractingBackground: {StateReady, StateFailed},
			StateFailed:               {},
		},
		onEnter: make(map[State]func()),
		onExit:  make(map[State]func()),
	}
}

// Transition moves to the given state if the move is allowed and reports
// whether it happened.
func (sm *StateMachine) Transition(to State) bool {
	allowed := false
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}
	sm.move(to)
	return true
}

// Reset returns to StateIdle from any state. A new upload always starts
// here.
func (sm *StateMachine) Reset() {
	sm.move(StateIdle)
}

func (sm *StateMachine) move(to State) {
	if fn := sm.onExit[sm.current]; fn != nil {
		fn()
	}
	sm.current = to
	if fn := sm.onEnter[to]; fn != nil {
		fn()
	}
}

// Current returns the current state.
func (sm *StateMachine) Current() State {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state State, fn func()) {
	sm.onEnter[state] = fn
}

// OnExit registers a callback for exiting a state.
func (sm *StateMachine) OnExit(state State, fn func()) {
	sm.onExit[state] = fn
}
