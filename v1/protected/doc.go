// Package protected wraps a single value together with a lock so that every
// read and mutation of the value is serialized.
//
// A Value is created with New and used only through its methods and the
// generic helpers of this package. Get returns a copy; Read and Write run a
// function while the lock is held and must not keep references to the value
// after they return. Functions passed to Read or Write must not call back
// into the same Value: with the default lock on linux that panics with
// errors.ErrRecursiveLock, with the fast lock it deadlocks.
//
// Capabilities that depend on the value type are free functions constrained
// by it: Append and AppendAll need a slice, Equal and Hash need a comparable
// type, Compare and Less need an ordered one. Comparisons snapshot each side
// separately and are not atomic across the two values.
package protected
