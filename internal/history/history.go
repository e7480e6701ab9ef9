// Package history keeps the bounded rolling window of period averages and
// its durable copy.
package history

import "math"

// History is an oldest-first sequence of period averages holding at most
// Cap entries. It is not safe for concurrent use.
type History struct {
	entries []float64
	cap     int
}

// New returns an empty History. capacity below 1 is treated as 1.
func New(capacity int) *History {
	capacity = max(capacity, 1)
	return &History{
		entries: make([]float64, 0, capacity),
		cap:     capacity,
	}
}

// FromValues builds a History from stored entries, keeping the newest
// capacity entries when there are more.
func FromValues(capacity int, values []float64) *History {
	h := New(capacity)
	if len(values) > h.cap {
		values = values[len(values)-h.cap:]
	}
	h.entries = append(h.entries, values...)
	return h
}

// Append adds v as the newest entry and reports whether the oldest entry
// was evicted to stay within capacity.
func (h *History) Append(v float64) bool {
	evicted := false
	if len(h.entries) == h.cap {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.cap-1]
		evicted = true
	}
	h.entries = append(h.entries, v)
	return evicted
}

// Values returns a copy of the entries, oldest first
func (h *History) Values() []float64 {
	out := make([]float64, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int { return len(h.entries) }

func (h *History) Cap() int { return h.cap }

// Last returns the newest entry
func (h *History) Last() (float64, bool) {
	if len(h.entries) == 0 {
		return 0, false
	}
	return h.entries[len(h.entries)-1], true
}

// Round2 rounds v half away from zero to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
