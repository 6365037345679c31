package protected

import (
	"iter"
	"slices"
)

// Append adds elems to the end of the slice held by p.
func Append[S ~[]E, E any](p *Value[S], elems ...E) {
	AppendAll(p, elems)
}

// AppendAll adds all of elems to the end of the slice held by p as one step.
// The held slice is clipped first, so slices returned by earlier calls to Get
// never share spare capacity with the appended elements.
func AppendAll[S ~[]E, E any](p *Value[S], elems []E) {
	p.Write(func(s *S) { *s = append(slices.Clip(*s), elems...) })
}

// AppendSeq adds the values of seq to the end of the slice held by p as one
// step. seq runs with the lock held and must not use p.
func AppendSeq[S ~[]E, E any](p *Value[S], seq iter.Seq[E]) {
	p.Write(func(s *S) { *s = slices.AppendSeq(slices.Clip(*s), seq) })
}

// Clone returns a copy of the slice held by p that shares no memory with it.
func Clone[S ~[]E, E any](p *Value[S]) S {
	return Read(p, func(s S) S { return slices.Clone(s) })
}

// Len returns the length of the slice held by p.
func Len[S ~[]E, E any](p *Value[S]) int {
	return Read(p, func(s S) int { return len(s) })
}
