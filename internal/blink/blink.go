// Package blink debounces per-frame eye aspect ratios into blink events.
//
// A blink fires on the first open frame that follows a run of at least
// EARConsecFrames closed frames, never while the eye is still shut.
package blink

// EARConsecFrames is the number of consecutive frames the eye aspect ratio
// must stay below the threshold for a blink to count.
const EARConsecFrames = 3

// Phase is the conceptual state of the eye
type Phase int

const (
	Open Phase = iota
	AccumulatingClosed
)

func (p Phase) String() string {
	if p == AccumulatingClosed {
		return "accumulating-closed"
	}
	return "open"
}

// State holds the counters of one tracking session
type State struct {
	ConsecutiveLowFrames int `json:"consecutiveLowFrames"`
	TotalBlinks          int `json:"totalBlinks"`
}

// Phase reports whether a closed run is in progress
func (s State) Phase() Phase {
	if s.ConsecutiveLowFrames > 0 {
		return AccumulatingClosed
	}
	return Open
}

// Step advances s by one frame with the averaged eye aspect ratio ear and
// reports whether a blink fired on this frame.
func Step(s State, ear, earThresh float64, consecFrames int) (State, bool) {
	if ear < earThresh {
		s.ConsecutiveLowFrames++
		return s, false
	}

	fired := s.ConsecutiveLowFrames >= consecFrames
	if fired {
		s.TotalBlinks++
	}
	s.ConsecutiveLowFrames = 0
	return s, fired
}

// Machine owns the blink state of one session
type Machine struct {
	state        State
	consecFrames int
}

// NewMachine creates a machine that requires consecFrames closed frames per
// blink. Non-positive values fall back to EARConsecFrames.
func NewMachine(consecFrames int) *Machine {
	if consecFrames <= 0 {
		consecFrames = EARConsecFrames
	}
	return &Machine{consecFrames: consecFrames}
}

// Update feeds one frame and reports whether a blink fired
func (m *Machine) Update(ear, earThresh float64) bool {
	var fired bool
	m.state, fired = Step(m.state, ear, earThresh, m.consecFrames)
	return fired
}

// SetConsecFrames changes the debounce length for subsequent frames
func (m *Machine) SetConsecFrames(n int) {
	if n > 0 {
		m.consecFrames = n
	}
}

// State returns a copy of the current counters
func (m *Machine) State() State {
	return m.state
}

// Reset clears all counters
func (m *Machine) Reset() {
	m.state = State{}
}
