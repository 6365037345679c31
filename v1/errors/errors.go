package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrRecursiveLock is reported when a goroutine locks a lock it already holds.
	ErrRecursiveLock = errors.New("warp: recursive lock")
	// ErrUnlockNotHeld is reported when a goroutine unlocks a lock it does not hold.
	ErrUnlockNotHeld = errors.New("warp: unlock of lock not held")
	// ErrBackend is reported when a remote lock backend fails mid-operation.
	ErrBackend = errors.New("warp: lock backend failure")
)

// MisuseError describes a fatal lock misuse. Lock implementations panic with
// a *MisuseError; it is never returned as an ordinary error.
type MisuseError struct {
	Op        string
	Lock      string
	Goroutine int64
	Err       error
}

func (e *MisuseError) Error() string {
	if e.Lock == "" {
		return fmt.Sprintf("%s: goroutine %d: %v", e.Op, e.Goroutine, e.Err)
	}
	return fmt.Sprintf("%s %s: goroutine %d: %v", e.Op, e.Lock, e.Goroutine, e.Err)
}

func (e *MisuseError) Unwrap() error { return e.Err }

// AsMisuse reports whether a recovered panic value is a lock misuse.
func AsMisuse(r any) (*MisuseError, bool) {
	err, ok := r.(error)
	if !ok {
		return nil, false
	}
	var me *MisuseError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
