package lock

// Locker is the capability every lock implementation provides. Lock blocks
// until exclusive ownership is acquired; Unlock releases it and must only be
// called by the current holder, once per Lock.
type Locker interface {
	Lock()
	Unlock()
}

// Factory creates a fresh Locker. Containers call it once at construction.
type Factory func() Locker

// Do runs fn while holding l. The lock is released when fn returns or panics.
func Do(l Locker, fn func()) {
	l.Lock()
	defer l.Unlock()
	fn()
}

// Around runs fn while holding l and returns its result. The lock is released
// when fn returns or panics; a panic propagates to the caller unchanged.
func Around[R any](l Locker, fn func() R) R {
	l.Lock()
	defer l.Unlock()
	return fn()
}

// New returns a new lock of the platform default kind.
func New() Locker {
	return newPlatform()
}
