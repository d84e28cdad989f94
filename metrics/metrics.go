// Package metrics exposes Prometheus instrumentation for shard operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all metrics of this module.
	Namespace = "sskr"

	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelResult    = "result"

	StatusSuccess = "success"
	StatusError   = "error"

	OpSplit   = "split"
	OpCombine = "combine"
	OpInspect = "inspect"
)

var (
	// OperationsTotal counts split, combine and inspect requests by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of shard operations by type and status",
		},
		[]string{LabelOperation, LabelStatus},
	)

	// OperationDuration tracks operation latency. Combine is dominated by the
	// PBKDF2 rounds of the share decryption.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of shard operations in seconds",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelOperation},
	)

	// ShardSubmissionsTotal counts shards submitted to the recovery keeper by result.
	ShardSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "shard_submissions_total",
			Help:      "Total number of shards submitted for recovery by result",
		},
		[]string{LabelResult},
	)

	// KeeperUnlocked is 1 once the recovery keeper holds the secret.
	KeeperUnlocked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "keeper_unlocked",
			Help:      "Whether the recovery keeper has recovered its secret",
		},
	)
)

// RecordOperation records the outcome and duration of one operation.
func RecordOperation(operation string, start time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	OperationsTotal.WithLabelValues(operation, status).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordSubmission records one shard submission. result is a short reason such
// as "accepted", "unlocked" or "rejected".
func RecordSubmission(result string) {
	ShardSubmissionsTotal.WithLabelValues(result).Inc()
}
