package aggregator

// Source reports the current instantaneous consumption in kW. It is
// queried once per sampling tick and must not block.
type Source interface {
	Reading() float64
}

// SourceFunc adapts a function to Source
type SourceFunc func() float64

func (f SourceFunc) Reading() float64 { return f() }

// State is the lifecycle position of an Aggregator
type State int

const (
	Uninitialized State = iota
	// Loading restores history; no timer runs yet
	Loading
	// Armed has both timers active
	Armed
	// Stopped is terminal; timers are cancelled and nothing mutates
	Stopped
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Armed:
		return "armed"
	case Stopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

// Snapshot is a read-only copy of aggregator state
type Snapshot struct {
	State   string    `json:"state"`
	Sum     float64   `json:"sum"`
	Count   int       `json:"count"`
	Current float64   `json:"current"`
	History []float64 `json:"history"`
}
