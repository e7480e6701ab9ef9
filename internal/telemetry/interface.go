package telemetry

import "context"

// Outcome is the result of one delivery attempt
type Outcome int

const (
	Failed Outcome = iota
	Delivered
	// Disabled is returned by the no-op forwarder
	Disabled
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Disabled:
		return "disabled"
	default:
		return "failed"
	}
}

// Forwarder submits one completed period average to the remote collector.
// Forward makes exactly one attempt and never retries; a failure is
// reported through the Outcome and the returned error, which callers log
// and drop.
type Forwarder interface {
	Forward(ctx context.Context, average float64) (Outcome, error)
}

// Payload is the JSON body expected by the collector
type Payload struct {
	CurrentTime       string  `json:"current_time"`
	GlobalActivePower float64 `json:"Global_active_power"`
}
