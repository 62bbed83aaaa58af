package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchanges_created_total",
			Help: "Exchange transactions created",
		},
		[]string{"type"}, // deposit|withdraw
	)
	ExchangesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exchanges_create_failed_total",
			Help: "Creation attempts that produced no record",
		},
	)
	// DanglingLegs counts creations aborted after the first remote leg
	// already existed. These need manual reconciliation with the
	// provider; there is no cancel API.
	DanglingLegs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exchanges_dangling_legs_total",
			Help: "Saga aborts that left an unreferenced remote leg",
		},
	)
	Reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Status advances written by the reconciler",
		},
		[]string{"status"},
	)
	ReconcileFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciliation_query_failures_total",
			Help: "Reconciliation runs that hit a gateway query failure",
		},
	)
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current reconciliation worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(ExchangesTotal)
	prometheus.MustRegister(ExchangesFailed)
	prometheus.MustRegister(DanglingLegs)
	prometheus.MustRegister(Reconciliations)
	prometheus.MustRegister(ReconcileFailures)
	prometheus.MustRegister(WorkerQueueDepth)
}
