// Package clock abstracts time so periodic work can be driven by virtual
// time in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock creates tickers and reports the current time
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks on C until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

type realTicker struct {
	t *time.Ticker
}

// Real returns a Clock backed by the time package
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Fake is a manually advanced Clock. Ticks are delivered on unbuffered
// channels, so Advance returns only after every due tick was received.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	seq     int
}

type fakeTicker struct {
	c       chan time.Time
	period  time.Duration
	next    time.Time
	seq     int
	stopped chan struct{}
	once    sync.Once
}

// NewFake returns a Fake clock set to start
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		c:       make(chan time.Time),
		period:  d,
		next:    f.now.Add(d),
		seq:     f.seq,
		stopped: make(chan struct{}),
	}
	f.seq++
	f.tickers = append(f.tickers, t)
	return t
}

// Tickers returns the number of tickers that have not been stopped
func (f *Fake) Tickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, t := range f.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, delivering due ticks in
// chronological order. Ticks due at the same instant are delivered in
// ticker creation order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		t := f.nextDue(target)
		if t == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		at := t.next
		f.now = at
		t.next = at.Add(t.period)
		f.mu.Unlock()

		select {
		case t.c <- at:
		case <-t.stopped:
		}
	}
}

func (f *Fake) nextDue(target time.Time) *fakeTicker {
	live := f.tickers[:0]
	for _, t := range f.tickers {
		if !t.isStopped() {
			live = append(live, t)
		}
	}
	f.tickers = live

	sort.SliceStable(live, func(i, j int) bool {
		if live[i].next.Equal(live[j].next) {
			return live[i].seq < live[j].seq
		}
		return live[i].next.Before(live[j].next)
	})

	if len(live) == 0 || live[0].next.After(target) {
		return nil
	}
	return live[0]
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }

func (t *fakeTicker) Stop() {
	t.once.Do(func() { close(t.stopped) })
}

func (t *fakeTicker) isStopped() bool {
	select {
	case <-t.stopped:
		return true
	default:
		return false
	}
}
