// Package aggregator samples a consumption source every second and folds
// the readings into fixed-period averages kept in a bounded, persisted
// history.
package aggregator

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mutker/wattd/internal/clock"
	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/history"
	"codeberg.org/mutker/wattd/internal/logger"
	"codeberg.org/mutker/wattd/internal/metrics"
	"codeberg.org/mutker/wattd/internal/telemetry"
)

const (
	DefaultSampleInterval = time.Second
	DefaultPeriod         = time.Hour
	DefaultCapacity       = 24
)

// Options configures an Aggregator. Zero durations and capacity take the
// package defaults; nil Clock, Forwarder, Recorder and Logger take the
// real clock, no forwarding, no metrics and no logging.
type Options struct {
	Source         Source
	Repository     *history.Repository
	Forwarder      telemetry.Forwarder
	Clock          clock.Clock
	Recorder       metrics.Recorder
	Logger         logger.Logger
	SampleInterval time.Duration
	Period         time.Duration
	Capacity       int
}

// Aggregator owns the accumulator and the history. All mutation happens on
// a single loop goroutine driven by the sampling and aggregation tickers.
type Aggregator struct {
	opts Options
	log  logger.Logger

	lifecycle sync.Mutex // serializes Start and Stop

	mu      sync.Mutex
	state   State
	sum     float64
	count   int
	current float64
	hist    *history.History

	sampleTicker clock.Ticker
	periodTicker clock.Ticker
	snapshots    chan chan Snapshot
	persist      *persister
	quit         chan struct{}
	loopDone     chan struct{}
	forwards     sync.WaitGroup
	runCtx       context.Context
	cancelRun    context.CancelFunc
}

func New(opts Options) (*Aggregator, error) {
	errFactory := errors.New()

	if opts.Source == nil {
		return nil, errFactory.WithMessage(ErrInvalidOptions, "source is required")
	}
	if opts.Repository == nil {
		return nil, errFactory.WithMessage(ErrInvalidOptions, "history repository is required")
	}
	if opts.SampleInterval < 0 || opts.Period < 0 || opts.Capacity < 0 {
		return nil, errFactory.WithData(ErrInvalidOptions, struct {
			SampleInterval time.Duration
			Period         time.Duration
			Capacity       int
		}{
			SampleInterval: opts.SampleInterval,
			Period:         opts.Period,
			Capacity:       opts.Capacity,
		})
	}

	if opts.SampleInterval == 0 {
		opts.SampleInterval = DefaultSampleInterval
	}
	if opts.Period == 0 {
		opts.Period = DefaultPeriod
	}
	if opts.Capacity == 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Forwarder == nil {
		opts.Forwarder = telemetry.Noop()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Noop()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	return &Aggregator{
		opts:      opts,
		log:       opts.Logger,
		hist:      history.New(opts.Capacity),
		snapshots: make(chan chan Snapshot),
	}, nil
}

// Start restores the history and arms both timers. Calling Start while
// armed does nothing. A stopped Aggregator cannot be restarted.
func (a *Aggregator) Start(ctx context.Context) error {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.mu.Lock()
	state := a.state
	a.mu.Unlock()

	switch state {
	case Armed:
		a.log.Debug().Msg("Sampling already armed")
		return nil
	case Stopped:
		return errors.New().New(ErrStopped)
	}

	a.setState(Loading)
	h := a.opts.Repository.Load(ctx, a.opts.Capacity)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	a.mu.Lock()
	a.hist = h
	a.sum, a.count = 0, 0
	a.runCtx, a.cancelRun = runCtx, cancel
	a.quit = make(chan struct{})
	a.loopDone = make(chan struct{})
	a.persist = newPersister(a.opts.Repository, a.opts.Recorder, a.log)
	a.sampleTicker = a.opts.Clock.NewTicker(a.opts.SampleInterval)
	a.periodTicker = a.opts.Clock.NewTicker(a.opts.Period)
	a.state = Armed
	a.mu.Unlock()

	go a.persist.run(runCtx)
	go a.loop(a.sampleTicker, a.periodTicker, a.quit, a.loopDone)

	a.log.Info().
		Dur("sample_interval", a.opts.SampleInterval).
		Dur("period", a.opts.Period).
		Int("capacity", a.opts.Capacity).
		Int("history", h.Len()).
		Msg("Sampling armed")

	return nil
}

// Stop cancels both timers and waits for the loop, the pending history
// write and any in-flight forwards to finish. It is safe to call more than
// once.
func (a *Aggregator) Stop() {
	a.lifecycle.Lock()
	defer a.lifecycle.Unlock()

	a.mu.Lock()
	if a.state != Armed {
		a.state = Stopped
		a.mu.Unlock()
		return
	}
	a.sampleTicker.Stop()
	a.periodTicker.Stop()
	close(a.quit)
	loopDone := a.loopDone
	a.mu.Unlock()

	<-loopDone
	a.persist.close()
	a.forwards.Wait()
	a.cancelRun()

	a.setState(Stopped)
	a.log.Info().Msg("Sampling stopped")
}

// State returns the current lifecycle state
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Snapshot returns a copy of the accumulator and history. While armed the
// read is served by the loop, so it observes every tick already delivered.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	armed := a.state == Armed
	quit := a.quit
	a.mu.Unlock()

	if armed {
		reply := make(chan Snapshot, 1)
		select {
		case a.snapshots <- reply:
			return <-reply
		case <-quit:
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *Aggregator) loop(sample, period clock.Ticker, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-quit:
			return
		case <-sample.C():
			a.sample()
		case <-period.C():
			a.aggregate()
		case reply := <-a.snapshots:
			a.mu.Lock()
			reply <- a.snapshotLocked()
			a.mu.Unlock()
		}
	}
}

func (a *Aggregator) sample() {
	reading := a.opts.Source.Reading()

	a.mu.Lock()
	a.sum += reading
	a.count++
	a.current = reading
	a.mu.Unlock()

	a.opts.Recorder.SampleFolded(reading)
}

func (a *Aggregator) aggregate() {
	a.mu.Lock()
	defer a.mu.Unlock()

	sum, count := a.sum, a.count
	if count == 0 {
		a.opts.Recorder.PeriodSkipped()
		a.log.Debug().Msg("No samples this period, skipping")
		return
	}

	average := history.Round2(sum / float64(count))
	evicted := a.hist.Append(average)

	a.persist.submit(a.hist.Values())
	a.forward(average)

	a.sum, a.count = 0, 0

	a.opts.Recorder.PeriodEmitted(average, a.hist.Len())
	a.log.Info().
		Float64("average", average).
		Int("samples", count).
		Int("history", a.hist.Len()).
		Bool("evicted", evicted).
		Msg("Period average recorded")
}

// forward submits average on its own goroutine; the outcome is logged and
// counted but never affects aggregator state.
func (a *Aggregator) forward(average float64) {
	ctx := a.runCtx

	a.forwards.Add(1)
	go func() {
		defer a.forwards.Done()

		outcome, err := a.opts.Forwarder.Forward(ctx, average)
		a.opts.Recorder.Delivery(outcome.String())

		if err != nil {
			a.log.Warn().
				Err(err).
				Str("outcome", outcome.String()).
				Float64("average", average).
				Msg("Failed to forward average, dropping")
			return
		}
		a.log.Debug().Str("outcome", outcome.String()).Msg("Forwarded average")
	}()
}

func (a *Aggregator) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

func (a *Aggregator) snapshotLocked() Snapshot {
	return Snapshot{
		State:   a.state.String(),
		Sum:     a.sum,
		Count:   a.count,
		Current: a.current,
		History: a.hist.Values(),
	}
}
