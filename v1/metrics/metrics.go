package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AcquireCounter tracks successful lock acquisitions per lock name.
	AcquireCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warp_lock_acquire_total",
		Help: "Total number of lock acquisitions",
	}, []string{"lock"})
	// WaitHistogram observes the time spent blocked in Lock.
	WaitHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warp_lock_wait_seconds",
		Help:    "Time spent waiting to acquire a lock",
		Buckets: prometheus.ExponentialBuckets(1e-7, 10, 8),
	}, []string{"lock"})
	// HoldHistogram observes the time a lock was held.
	HoldHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warp_lock_hold_seconds",
		Help:    "Time a lock was held before release",
		Buckets: prometheus.ExponentialBuckets(1e-7, 10, 8),
	}, []string{"lock"})
	// MisuseCounter tracks detected lock misuse by kind.
	MisuseCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warp_lock_misuse_total",
		Help: "Total number of detected lock misuses",
	}, []string{"op"})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterLockMetrics registers the lock metrics on the provided registry.
func RegisterLockMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AcquireCounter, WaitHistogram, HoldHistogram, MisuseCounter)
}
