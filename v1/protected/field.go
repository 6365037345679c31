package protected

// Field addresses one part of a T, such as a struct field, through a getter
// and a setter. All access goes through Read and Write of the Value.
type Field[T, F any] struct {
	get func(*T) F
	set func(*T, F)
}

// NewField returns a Field from explicit accessors.
func NewField[T, F any](get func(*T) F, set func(*T, F)) Field[T, F] {
	return Field[T, F]{get: get, set: set}
}

// FieldOf returns a Field for the location ptr yields, for example
//
//	name := protected.FieldOf(func(u *User) *string { return &u.Name })
func FieldOf[T, F any](ptr func(*T) *F) Field[T, F] {
	return Field[T, F]{
		get: func(t *T) F { return *ptr(t) },
		set: func(t *T, v F) { *ptr(t) = v },
	}
}

// Get returns a copy of the field in p.
func (f Field[T, F]) Get(p *Value[T]) F {
	// the value is only read, a pointer saves copying T
	return Write(p, f.get)
}

// Set replaces the field in p.
func (f Field[T, F]) Set(p *Value[T], v F) {
	p.Write(func(t *T) { f.set(t, v) })
}

// Update replaces the field in p with fn applied to its current value, as a
// single step, and returns the new field value.
func (f Field[T, F]) Update(p *Value[T], fn func(F) F) F {
	return Write(p, func(t *T) F {
		v := fn(f.get(t))
		f.set(t, v)
		return v
	})
}
