package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingesterSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "sync_cycles_total",
		Help:      "Count of sync cycles.",
	}, []string{"network", "status"})

	ingesterSyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "sync_cycle_duration_seconds",
		Help:      "Duration of sync cycles.",
		Buckets:   []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"network", "status"})

	ingesterSyncBlocks = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "sync_cycle_blocks",
		Help:      "Number of blocks committed per sync cycle.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"network"})

	ingesterCommitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "block_commits_total",
		Help:      "Count of block commits.",
	}, []string{"network", "status"})

	ingesterCommitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "block_commit_duration_seconds",
		Help:      "Duration of block commits.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	ingesterLastCommitted = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "last_committed_block",
		Help:      "Number of the last committed block.",
	}, []string{"network"})

	ingesterReorgTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "reorganizations_total",
		Help:      "Count of followed chain reorganizations.",
	}, []string{"network"})

	ingesterReorgDepth = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "reorganization_depth_blocks",
		Help:      "Depth of followed chain reorganizations.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	}, []string{"network"})

	ingesterHead = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingester",
		Name:      "head_block",
		Help:      "Head block number as seen by the node and by the index.",
	}, []string{"network", "source"})
)

// Ingester tracks metrics for the ingestion engine.
type Ingester struct {
	network string
}

// NewIngester constructs an Ingester metrics collector.
func NewIngester(network string) *Ingester {
	return &Ingester{network: orUnknown(network)}
}

// ObserveSync records a sync cycle outcome, duration and committed block count.
func (m Ingester) ObserveSync(err error, committed int, started time.Time) {
	s := status(err)
	ingesterSyncTotal.WithLabelValues(m.network, s).Inc()
	ingesterSyncDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
	ingesterSyncBlocks.WithLabelValues(m.network).Observe(float64(committed))
}

// ObserveCommit records one block commit.
func (m Ingester) ObserveCommit(err error, number uint64, started time.Time) {
	s := status(err)
	ingesterCommitTotal.WithLabelValues(m.network, s).Inc()
	ingesterCommitDuration.WithLabelValues(m.network, s).Observe(time.Since(started).Seconds())
	if err == nil {
		ingesterLastCommitted.WithLabelValues(m.network).Set(float64(number))
	}
}

// ObserveReorg records a followed reorganization of the given depth.
func (m Ingester) ObserveReorg(depth uint64) {
	ingesterReorgTotal.WithLabelValues(m.network).Inc()
	ingesterReorgDepth.WithLabelValues(m.network).Observe(float64(depth))
}

// SetHeads publishes the node and index heads.
func (m Ingester) SetHeads(chainHead, indexHead uint64) {
	ingesterHead.WithLabelValues(m.network, "chain").Set(float64(chainHead))
	ingesterHead.WithLabelValues(m.network, "index").Set(float64(indexHead))
}
