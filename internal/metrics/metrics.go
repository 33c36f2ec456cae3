package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WorkflowOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vzero_workflow_operations_total",
			Help: "Sensor connect, disconnect and reconcile operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	MiddlewareRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vzero_middleware_request_duration_seconds",
			Help:    "Duration of requests to the middleware",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DevicePollFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vzero_device_poll_failures_total",
			Help: "Failed polls of the device API",
		},
		[]string{"endpoint"},
	)

	DeviceFreeHeap = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vzero_device_free_heap_bytes",
			Help: "Free heap reported by the device on the last heartbeat",
		},
	)
)

func init() {
	prometheus.MustRegister(WorkflowOperations)
	prometheus.MustRegister(MiddlewareRequestDuration)
	prometheus.MustRegister(DevicePollFailures)
	prometheus.MustRegister(DeviceFreeHeap)
}
