// Package autoadvance advances a playlist after the current item ends.
package autoadvance

// State represents the auto-advance state.
type State int

const (
	StateIdle         State = iota // No listener and no pending advance
	StateArmed                     // Waiting for playback to end
	StateCountingDown              // Playback ended, advance pending
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateCountingDown:
		return "counting_down"
	default:
		return "unknown"
	}
}
