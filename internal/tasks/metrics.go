package tasks

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds store operation metrics.
type Metrics struct {
	opsTotal   *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
}

// NewMetrics creates store metrics registered on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		opsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskvoice_store_operations_total",
			Help: "Total task store operations labeled by operation (create, list) and status (ok, error).",
		}, []string{"operation", "status"}),
		opDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskvoice_store_operation_duration_seconds",
			Help:    "Task store operation duration in seconds, labeled by operation.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}
}

// observe records one completed operation. Designed for deferred use:
//
//	defer s.metrics.observe("create", time.Now(), &err)
//
// A nil receiver is a no-op so stores can run without metrics in tests.
func (m *Metrics) observe(operation string, start time.Time, err *error) {
	if m == nil {
		return
	}

	status := "ok"
	if err != nil && *err != nil {
		status = "error"
	}

	m.opsTotal.WithLabelValues(operation, status).Inc()
	m.opDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
