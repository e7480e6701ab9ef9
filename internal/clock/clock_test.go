package clock_test

import (
	"testing"
	"time"

	"codeberg.org/mutker/wattd/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFakeAdvanceOrder(t *testing.T) {
	fc := clock.NewFake(epoch)
	fast := fc.NewTicker(time.Second)
	slow := fc.NewTicker(3 * time.Second)

	events := make(chan string, 16)
	done := make(chan struct{})
	defer close(done)

	// Single receiver, like the aggregator loop.
	go func() {
		for {
			select {
			case <-fast.C():
				events <- "fast"
			case <-slow.C():
				events <- "slow"
			case <-done:
				return
			}
		}
	}()

	fc.Advance(3 * time.Second)

	got := make([]string, 0, 4)
	for len(got) < 4 {
		got = append(got, <-events)
	}
	assert.Equal(t, []string{"fast", "fast", "fast", "slow"}, got)
	assert.Equal(t, epoch.Add(3*time.Second), fc.Now())
}

func TestFakeStopSkipsTicker(t *testing.T) {
	fc := clock.NewFake(epoch)
	tk := fc.NewTicker(time.Second)
	require.Equal(t, 1, fc.Tickers())

	tk.Stop()
	tk.Stop()
	assert.Equal(t, 0, fc.Tickers())

	// Nobody receives; must not block.
	fc.Advance(5 * time.Second)
	assert.Equal(t, epoch.Add(5*time.Second), fc.Now())
}

func TestFakeTickTimes(t *testing.T) {
	fc := clock.NewFake(epoch)
	tk := fc.NewTicker(2 * time.Second)

	times := make(chan time.Time, 4)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case at := <-tk.C():
				times <- at
			case <-done:
				return
			}
		}
	}()

	fc.Advance(5 * time.Second)
	assert.Equal(t, epoch.Add(2*time.Second), <-times)
	assert.Equal(t, epoch.Add(4*time.Second), <-times)
}

func TestRealTicker(t *testing.T) {
	tk := clock.Real().NewTicker(5 * time.Millisecond)
	defer tk.Stop()

	select {
	case <-tk.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}
}
