package stream

// State identifies where a streaming turn currently is.
type State int

const (
	StateIdle State = iota
	StateClassifying
	StateSearching
	StateGenerating
	StateStreaming
	StateDone
	// StateFailed marks a turn that degraded to a fallback answer or was
	// cancelled. It is terminal, like StateDone.
	StateFailed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClassifying:
		return "classifying"
	case StateSearching:
		return "searching"
	case StateGenerating:
		return "generating"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
