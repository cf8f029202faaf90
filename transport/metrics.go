package transport

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshkol/cancensus-go/errors"
)

// prometheusRegisterer is the slice of prometheus.Registerer the transport
// needs; an interface keeps tests off the shared default registry.
type prometheusRegisterer interface {
	Register(prometheus.Collector) error
}

// transportMetrics holds Prometheus metrics for outbound calls.
type transportMetrics struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newTransportMetrics(reg prometheusRegisterer) (*transportMetrics, error) {
	m := &transportMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cancensus",
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Total HTTP attempts against the census service, including retries",
		}, []string{"endpoint"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cancensus",
			Subsystem: "transport",
			Name:      "failures_total",
			Help:      "Failed attempts by error kind",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *transportMetrics) recordRequest(endpoint string) {
	m.requests.WithLabelValues(endpoint).Inc()
}

func (m *transportMetrics) recordFailure(kind errors.Kind) {
	m.failures.WithLabelValues(kind.String()).Inc()
}
