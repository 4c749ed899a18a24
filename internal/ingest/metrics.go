package ingest

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "rds_pricing"

// Metrics counts ingestion activity across runs.
type Metrics struct {
	Feeds        *prometheus.CounterVec
	Observations *prometheus.CounterVec
	Writes       prometheus.Counter
	Warnings     *prometheus.CounterVec
}

// NewMetrics creates the ingestion counters and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Feeds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "feeds_total",
			Help:      "Pricing feeds processed, by shape and result.",
		}, []string{"shape", "result"}),
		Observations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "observations_total",
			Help:      "Prices read from feeds, by shape.",
		}, []string{"shape"}),
		Writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "catalog_writes_total",
			Help:      "Prices written to the catalog.",
		}),
		Warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "warnings_total",
			Help:      "Items skipped during ingestion, by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.Feeds, m.Observations, m.Writes, m.Warnings)
	}
	return m
}

func (m *Metrics) feed(shape, result string) {
	if m != nil {
		m.Feeds.WithLabelValues(shape, result).Inc()
	}
}

func (m *Metrics) observations(shape string, n int) {
	if m != nil {
		m.Observations.WithLabelValues(shape).Add(float64(n))
	}
}

func (m *Metrics) write() {
	if m != nil {
		m.Writes.Inc()
	}
}

func (m *Metrics) warning(kind WarningKind) {
	if m != nil {
		m.Warnings.WithLabelValues(string(kind)).Inc()
	}
}
