//go:build (linux && !protected_fast) || protected_errorcheck

package lock

// Platform names the lock kind returned by New.
const Platform = "errorcheck"

func newPlatform() Locker {
	return NewErrorCheck("")
}
