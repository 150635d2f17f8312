package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PermissionChecks counts permission evaluations and their outcome (allowed|denied|error).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resguard_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"resource_type", "result"},
	)

	// PermissionMutations counts owner and permission record writes by operation.
	PermissionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resguard_permission_mutations_total",
			Help: "Total number of ownership and permission record mutations",
		},
		[]string{"operation", "result"},
	)

	// OrphanedRecordsSwept tracks permission records removed by the maintenance sweep.
	OrphanedRecordsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "resguard_orphaned_records_swept_total",
			Help: "Permission records deleted because no owner record exists",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resguard_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
