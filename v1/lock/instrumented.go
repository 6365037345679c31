package lock

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mirkobrombin/go-protected/v1/metrics"
)

// Instrumented wraps a Locker and reports acquisitions, wait time and hold
// time to the collectors in package metrics, labelled with its name.
// Register them once with metrics.RegisterLockMetrics.
type Instrumented struct {
	inner    Locker
	name     string
	acquired atomic.Int64 // unix nanos of the last acquisition

	acquireCounter prometheus.Counter
	waitHist       prometheus.Observer
	holdHist       prometheus.Observer
}

// Instrument returns l decorated with metrics under the given name.
func Instrument(l Locker, name string) *Instrumented {
	return &Instrumented{
		inner:          l,
		name:           name,
		acquireCounter: metrics.AcquireCounter.WithLabelValues(name),
		waitHist:       metrics.WaitHistogram.WithLabelValues(name),
		holdHist:       metrics.HoldHistogram.WithLabelValues(name),
	}
}

// Lock implements Locker.Lock.
func (i *Instrumented) Lock() {
	start := time.Now()
	i.inner.Lock()
	now := time.Now()
	i.acquired.Store(now.UnixNano())
	i.waitHist.Observe(now.Sub(start).Seconds())
	i.acquireCounter.Inc()
}

// Unlock implements Locker.Unlock.
func (i *Instrumented) Unlock() {
	if h, ok := i.inner.(interface{ Held() bool }); ok && !h.Held() {
		// reports the misuse
		i.inner.Unlock()
		return
	}
	held := time.Duration(time.Now().UnixNano() - i.acquired.Load())
	i.inner.Unlock()
	i.holdHist.Observe(held.Seconds())
}

// Name returns the metrics label of the lock.
func (i *Instrumented) Name() string { return i.name }

var _ Locker = (*Instrumented)(nil)
