package metrics

// Recorder receives pipeline events for instrumentation
type Recorder interface {
	// SampleFolded records one reading folded into the accumulator
	SampleFolded(reading float64)
	// PeriodEmitted records one completed period average
	PeriodEmitted(average float64, historyLen int)
	// PeriodSkipped records a period boundary with no samples
	PeriodSkipped()
	// Delivery records a forward outcome ("delivered", "failed", "disabled")
	Delivery(outcome string)
	// PersistFailed records a failed store operation
	PersistFailed(op string)
}
