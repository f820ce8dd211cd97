package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Count of HTTP API requests.",
	}, []string{"route", "code"})
	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "code"})
)

// API tracks metrics for HTTP API requests.
type API struct{}

// NewAPI constructs an API metrics collector.
func NewAPI() *API {
	return &API{}
}

// ObserveRequest records one served request by route template and status code.
func (API) ObserveRequest(route string, code int, started time.Time) {
	c := strconv.Itoa(code)
	route = orUnknown(route)
	apiRequestsTotal.WithLabelValues(route, c).Inc()
	apiRequestDuration.WithLabelValues(route, c).Observe(time.Since(started).Seconds())
}
