package metrics_test

import (
	"strings"
	"testing"

	"codeberg.org/mutker/wattd/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	rec, err := metrics.New(reg)
	require.NoError(t, err)

	rec.SampleFolded(1)
	rec.SampleFolded(3)
	rec.PeriodEmitted(2, 1)
	rec.PeriodSkipped()
	rec.Delivery("delivered")
	rec.Delivery("failed")
	rec.Delivery("failed")
	rec.PersistFailed("save_history")

	expected := `
# HELP wattd_deliveries_total Total collector forwards by outcome
# TYPE wattd_deliveries_total counter
wattd_deliveries_total{outcome="delivered"} 1
wattd_deliveries_total{outcome="failed"} 2
# HELP wattd_history_length Number of period averages currently retained
# TYPE wattd_history_length gauge
wattd_history_length 1
# HELP wattd_samples_total Total readings folded into the accumulator
# TYPE wattd_samples_total counter
wattd_samples_total 2
# HELP wattd_current_reading_kw Most recent instantaneous reading
# TYPE wattd_current_reading_kw gauge
wattd_current_reading_kw 3
`
	err = testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"wattd_deliveries_total", "wattd_history_length", "wattd_samples_total", "wattd_current_reading_kw")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "wattd_periods_skipped_total", "wattd_persist_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	rec := metrics.Noop()
	assert.NotPanics(t, func() {
		rec.SampleFolded(1)
		rec.PeriodEmitted(1, 1)
		rec.PeriodSkipped()
		rec.Delivery("failed")
		rec.PersistFailed("x")
	})
}
