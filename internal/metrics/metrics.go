package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "wattd_"

type promRecorder struct {
	samples        prometheus.Counter
	periods        prometheus.Counter
	skipped        prometheus.Counter
	deliveries     *prometheus.CounterVec
	persistFailed  *prometheus.CounterVec
	historyLength  prometheus.Gauge
	lastAverage    prometheus.Gauge
	currentReading prometheus.Gauge
}

type noopRecorder struct{}

// New registers the pipeline metrics with reg
func New(reg prometheus.Registerer) (Recorder, error) {
	r := &promRecorder{
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "samples_total",
			Help: "Total readings folded into the accumulator",
		}),
		periods: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "periods_total",
			Help: "Total period averages appended to history",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "periods_skipped_total",
			Help: "Total period boundaries with no samples",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "deliveries_total",
			Help: "Total collector forwards by outcome",
		}, []string{"outcome"}),
		persistFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "persist_failures_total",
			Help: "Total failed store operations by operation",
		}, []string{"op"}),
		historyLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "history_length",
			Help: "Number of period averages currently retained",
		}),
		lastAverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_period_average_kw",
			Help: "Most recent period average",
		}),
		currentReading: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "current_reading_kw",
			Help: "Most recent instantaneous reading",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.samples, r.periods, r.skipped, r.deliveries,
		r.persistFailed, r.historyLength, r.lastAverage, r.currentReading,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Noop returns a Recorder that records nothing
func Noop() Recorder {
	return noopRecorder{}
}

func (r *promRecorder) SampleFolded(reading float64) {
	r.samples.Inc()
	r.currentReading.Set(reading)
}

func (r *promRecorder) PeriodEmitted(average float64, historyLen int) {
	r.periods.Inc()
	r.lastAverage.Set(average)
	r.historyLength.Set(float64(historyLen))
}

func (r *promRecorder) PeriodSkipped() {
	r.skipped.Inc()
}

func (r *promRecorder) Delivery(outcome string) {
	r.deliveries.WithLabelValues(outcome).Inc()
}

func (r *promRecorder) PersistFailed(op string) {
	r.persistFailed.WithLabelValues(op).Inc()
}

func (noopRecorder) SampleFolded(float64)       {}
func (noopRecorder) PeriodEmitted(float64, int) {}
func (noopRecorder) PeriodSkipped()             {}
func (noopRecorder) Delivery(string)            {}
func (noopRecorder) PersistFailed(string)       {}
