package aggregator

// AggregateNow runs one aggregation body outside the period ticker
func (a *Aggregator) AggregateNow() {
	a.aggregate()
}
