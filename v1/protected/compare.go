package protected

import (
	"cmp"
	"hash/maphash"
)

// Equal reports whether a and b hold equal values. Each side is read under its
// own lock in turn; the result may not reflect any single instant if either
// is being written concurrently.
func Equal[T comparable](a, b *Value[T]) bool {
	return a.Get() == b.Get()
}

// Compare compares the values of a and b like cmp.Compare.
func Compare[T cmp.Ordered](a, b *Value[T]) int {
	return cmp.Compare(a.Get(), b.Get())
}

// Less reports whether the value of a sorts before the value of b.
func Less[T cmp.Ordered](a, b *Value[T]) bool {
	return Compare(a, b) < 0
}

// Hash returns the hash of the current value of p under seed. Values that
// are Equal hash equally under the same seed.
func Hash[T comparable](seed maphash.Seed, p *Value[T]) uint64 {
	return maphash.Comparable(seed, p.Get())
}

// WriteHash adds the current value of p to h.
func WriteHash[T comparable](h *maphash.Hash, p *Value[T]) {
	maphash.WriteComparable(h, p.Get())
}
