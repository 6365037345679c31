// Package lock provides the mutual-exclusion primitives used by the protected
// container. A Locker exposes only Lock and Unlock; Do and Around are the
// scoped helpers that pair the two and release on every exit path, panics
// included.
//
// Two in-process implementations are provided. ErrorCheck tracks the owning
// goroutine and panics with a *errors.MisuseError on recursive locking or on
// unlocking a lock the caller does not hold. Fast is a thin sync.Mutex with no
// misuse detection. New returns the platform default, selected at build time:
// ErrorCheck on linux, Fast elsewhere. The protected_errorcheck and
// protected_fast build tags force either one.
//
// Instrument decorates any Locker with Prometheus metrics, and Redis extends
// mutual exclusion across processes sharing a Redis server.
package lock
