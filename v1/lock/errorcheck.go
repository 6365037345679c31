package lock

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"

	warperrors "github.com/mirkobrombin/go-protected/v1/errors"
	"github.com/mirkobrombin/go-protected/v1/metrics"
)

// ErrorCheck is a mutex that records its owning goroutine so misuse is caught
// instead of deadlocking or corrupting state. Locking it again from the owner
// panics with ErrRecursiveLock; unlocking it from any goroutine other than the
// owner panics with ErrUnlockNotHeld. The zero value is an unlocked lock.
type ErrorCheck struct {
	mu    sync.Mutex
	owner atomic.Int64 // goroutine id of the holder, 0 when unlocked
	name  string
}

// NewErrorCheck returns an unlocked ErrorCheck. The name only appears in
// misuse reports and may be empty.
func NewErrorCheck(name string) *ErrorCheck {
	return &ErrorCheck{name: name}
}

// Lock acquires the lock, blocking until it is available.
func (l *ErrorCheck) Lock() {
	id := goid.Get()
	if l.owner.Load() == id {
		l.misuse("lock", id, warperrors.ErrRecursiveLock)
	}
	l.mu.Lock()
	l.owner.Store(id)
}

// Unlock releases the lock held by the calling goroutine.
func (l *ErrorCheck) Unlock() {
	id := goid.Get()
	if !l.owner.CompareAndSwap(id, 0) {
		l.misuse("unlock", id, warperrors.ErrUnlockNotHeld)
	}
	l.mu.Unlock()
}

// Held reports whether the calling goroutine holds the lock.
func (l *ErrorCheck) Held() bool {
	return l.owner.Load() == goid.Get()
}

func (l *ErrorCheck) misuse(op string, id int64, err error) {
	metrics.MisuseCounter.WithLabelValues(op).Inc()
	slog.Error("warp: lock misuse", "op", op, "lock", l.name, "goroutine", id, "error", err)
	panic(&warperrors.MisuseError{Op: op, Lock: l.name, Goroutine: id, Err: err})
}

var _ Locker = (*ErrorCheck)(nil)
