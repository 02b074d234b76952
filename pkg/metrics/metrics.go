// Package metrics defines this module's Prometheus collectors: snapshot
// batch throughput and commit-processor queue depth and latency.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Keys for snapshot metrics.
const (
	BatchesWrittenTotalKey = "zoocore_snapshot_batches_written_total"
	BatchesReadTotalKey     = "zoocore_snapshot_batches_read_total"
	ChecksumMismatchesKey   = "zoocore_snapshot_checksum_mismatches_total"
)

// Collectors for snapshot metrics.
var (
	BatchesWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: BatchesWrittenTotalKey,
		Help: "Cumulative number of batches flushed to a snapshot file, by domain collection.",
	}, []string{"collection"})
	BatchesReadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: BatchesReadTotalKey,
		Help: "Cumulative number of batches read back while rebuilding a collection from a snapshot.",
	}, []string{"collection"})
	ChecksumMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: ChecksumMismatchesKey,
		Help: "Cumulative number of batches rejected for a checksum mismatch.",
	})
)

// Keys for commit processor metrics.
const (
	InputQueueDepthKey     = "zoocore_commitproc_input_queue_depth"
	PendingWritesDepthKey  = "zoocore_commitproc_pending_writes_depth"
	CommitLatencySecondsKey = "zoocore_commitproc_commit_latency_seconds"
)

// Collectors for commit processor metrics.
var (
	InputQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: InputQueueDepthKey,
		Help: "Current number of requests waiting in the commit processor's input queue.",
	})
	PendingWritesDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: PendingWritesDepthKey,
		Help: "Current number of writes proposed to consensus but not yet committed, summed across sessions.",
	})
	CommitLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    CommitLatencySecondsKey,
		Help:    "Time between a write being drained from the input queue and its commit or failure being handled.",
		Buckets: prometheus.DefBuckets,
	})
)

// Collectors returns every collector this package defines, for
// registration against a prometheus.Registerer at startup.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		BatchesWrittenTotal,
		BatchesReadTotal,
		ChecksumMismatches,
		InputQueueDepth,
		PendingWritesDepth,
		CommitLatencySeconds,
	}
}
