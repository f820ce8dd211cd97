package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	repositoryRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operations_total",
		Help:      "Count of index store operations.",
	}, []string{"operation", "dialect", "status"})
	repositoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of index store operations.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation", "dialect", "status"})
)

// Repository tracks metrics for index store operations.
type Repository struct {
	dialect string
}

// NewRepository creates a Repository metrics collector for a database dialect.
func NewRepository(dialect string) *Repository {
	return &Repository{dialect: orUnknown(dialect)}
}

// Observe records duration and status of a store operation.
func (m Repository) Observe(operation string, err error, started time.Time) {
	s := status(err)
	repositoryRequestsTotal.WithLabelValues(operation, m.dialect, s).Inc()
	repositoryRequestDuration.WithLabelValues(operation, m.dialect, s).Observe(time.Since(started).Seconds())
}
