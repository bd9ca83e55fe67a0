package helio

// Wrapped is the runtime handle for a native object. Value always
// holds a pointer into native state: borrowed and owned wrappers
// point at the source, value-copy wrappers at their own independent
// copy. The uniform shape is what makes extraction safe after a
// passing IsInstanceOf check.
type Wrapped struct {
	Proto *TypeProto
	Value any

	// owned marks wrappers whose native value must be released via
	// Proto.Drop when the wrapper is discarded.
	owned bool
}

// Owned reports whether the wrapper is responsible for releasing its
// native value.
func (w *Wrapped) Owned() bool { return w.owned }

// Borrow wraps a native pointer without taking ownership. The caller
// guarantees the pointee outlives the wrapper.
func Borrow(p *TypeProto, ptr any) *Wrapped {
	return &Wrapped{Proto: p, Value: ptr}
}

// Copy wraps an independent copy of a native value. Value points at
// the copy, so mutations through the wrapper never reach the source.
func Copy[T any](p *TypeProto, v T) *Wrapped {
	c := v
	return &Wrapped{Proto: p, Value: &c}
}

// Adopt wraps a native pointer and takes ownership of it. Release
// hands the value to Proto.Drop.
func Adopt(p *TypeProto, ptr any) *Wrapped {
	return &Wrapped{Proto: p, Value: ptr, owned: true}
}

// FromTransient wraps a transient native value for a pointer-form
// class by duplicating it through the proto's allocator, so the
// wrapper does not outlive its source. It fails when no allocator is
// registered; generated code only reaches this path when generation
// already proved the allocator exists, but hand-written callers get a
// real error instead of a dangling borrow.
func FromTransient(p *TypeProto, v any) (*Wrapped, error) {
	if p.Alloc == nil {
		return nil, typeErrf(p, "construct", "no allocator registered for transient value")
	}
	return &Wrapped{Proto: p, Value: p.Alloc(v), owned: true}, nil
}

// Release drops an owned native value. Safe to call on borrowed and
// value-copy wrappers; it does nothing there.
func (w *Wrapped) Release() {
	if w.owned && w.Proto != nil && w.Proto.Drop != nil {
		w.Proto.Drop(w.Value)
	}
	w.owned = false
}

// IsInstanceOf reports whether o is a wrapped native conforming to
// proto.
func IsInstanceOf(o Object, proto *TypeProto) bool {
	w, ok := o.(*Wrapped)
	return ok && w.Proto == proto
}

// AsWrapped extracts the wrapper from a handle. Callers must have
// checked IsInstanceOf first; the assertion panics otherwise.
func AsWrapped(o Object) *Wrapped {
	return o.(*Wrapped)
}
