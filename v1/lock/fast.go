package lock

import "sync"

// Fast is a lightweight non-reentrant exclusive lock. Uncontended Lock and
// Unlock are a single atomic operation each. Misuse is not detected: locking
// twice from one goroutine deadlocks, and unlocking an unlocked Fast is a
// fatal runtime error.
type Fast struct {
	mu sync.Mutex
}

// NewFast returns an unlocked Fast lock.
func NewFast() *Fast {
	return &Fast{}
}

func (l *Fast) Lock()   { l.mu.Lock() }
func (l *Fast) Unlock() { l.mu.Unlock() }

var _ Locker = (*Fast)(nil)
