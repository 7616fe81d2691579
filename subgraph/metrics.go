package subgraph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts executed GraphQL operations by type and outcome.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer, subgraphName string) (*Metrics, error) {
	labels := prometheus.Labels{"subgraph": subgraphName}
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "graphql_operations_total",
			Help:        "Number of executed GraphQL operations.",
			ConstLabels: labels,
		}, []string{"operation_type", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "graphql_operation_duration_seconds",
			Help:        "Latency of executed GraphQL operations.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"operation_type"}),
	}
	for _, c := range []prometheus.Collector{m.operations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(operationType string, failed bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if failed {
		result = "error"
	}
	m.operations.WithLabelValues(operationType, result).Inc()
	m.duration.WithLabelValues(operationType).Observe(elapsed.Seconds())
}
