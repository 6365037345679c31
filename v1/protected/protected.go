package protected

import (
	"fmt"

	"github.com/mirkobrombin/go-protected/v1/lock"
)

// Value holds a value of type T guarded by its own lock.
type Value[T any] struct {
	lock  lock.Locker
	value T
}

// Option configures a Value at construction.
type Option func(*options)

type options struct {
	factory lock.Factory
	name    string
	metrics bool
}

// WithLocker sets the factory that creates the lock of the Value. It is
// called exactly once.
func WithLocker(f lock.Factory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithName names the Value. The name labels its metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithMetrics wraps the lock in lock.Instrument so acquisitions, wait and
// hold times are reported under the Value's name. The collectors must be
// registered with metrics.RegisterLockMetrics.
func WithMetrics() Option {
	return func(o *options) {
		o.metrics = true
	}
}

// New returns a Value holding v, guarded by a fresh lock from lock.New unless
// WithLocker says otherwise.
func New[T any](v T, opts ...Option) *Value[T] {
	o := options{factory: lock.New, name: "protected"}
	for _, opt := range opts {
		opt(&o)
	}
	l := o.factory()
	if o.metrics {
		l = lock.Instrument(l, o.name)
	}
	return &Value[T]{lock: l, value: v}
}

// Get returns a copy of the current value. The copy is shallow: when T is a
// slice, map or pointer, or contains one, the referenced memory is still the
// Value's and must not be modified through the copy. Use Clone for slices.
func (p *Value[T]) Get() T {
	return lock.Around(p.lock, func() T { return p.value })
}

// Set replaces the current value.
func (p *Value[T]) Set(v T) {
	lock.Do(p.lock, func() { p.value = v })
}

// Swap replaces the current value and returns the previous one.
func (p *Value[T]) Swap(v T) T {
	return lock.Around(p.lock, func() T {
		old := p.value
		p.value = v
		return old
	})
}

// Read calls fn with the current value while holding the lock.
func (p *Value[T]) Read(fn func(T)) {
	lock.Do(p.lock, func() { fn(p.value) })
}

// Write calls fn with a pointer to the value while holding the lock. The
// pointer is only valid until fn returns.
func (p *Value[T]) Write(fn func(*T)) {
	lock.Do(p.lock, func() { fn(&p.value) })
}

// String formats a snapshot of the value.
func (p *Value[T]) String() string {
	return fmt.Sprint(p.Get())
}

// Read calls fn with the current value of p while holding its lock and
// returns fn's result. Use R = error to pass failures through.
func Read[T, R any](p *Value[T], fn func(T) R) R {
	return lock.Around(p.lock, func() R { return fn(p.value) })
}

// Write calls fn with a pointer to the value of p while holding its lock and
// returns fn's result.
func Write[T, R any](p *Value[T], fn func(*T) R) R {
	return lock.Around(p.lock, func() R { return fn(&p.value) })
}
