package helio

// Dispatch helpers. The host runtime routes its attribute, call,
// subscript and equality operations through these; they locate the
// protocol table on the handle and invoke the generated slot.

func wrappedFor(o Object, op string) (*Wrapped, error) {
	w, ok := o.(*Wrapped)
	if !ok {
		return nil, typeErrf(nil, op, "handle %T is not a wrapped native", o)
	}
	return w, nil
}

// GetAttr reads an attribute off a wrapped handle.
func GetAttr(o Object, name string) (Object, error) {
	w, err := wrappedFor(o, "get "+name)
	if err != nil {
		return nil, err
	}
	slot, ok := w.Proto.Attrs[name]
	if !ok {
		return nil, typeErrf(w.Proto, "get", "no attribute %q", name)
	}
	return slot.Get(w)
}

// SetAttr writes an attribute on a wrapped handle. Read-only
// attributes reject the write.
func SetAttr(o Object, name string, v Object) error {
	w, err := wrappedFor(o, "set "+name)
	if err != nil {
		return err
	}
	slot, ok := w.Proto.Attrs[name]
	if !ok {
		return typeErrf(w.Proto, "set", "no attribute %q", name)
	}
	if slot.Set == nil {
		return typeErrf(w.Proto, "set", "attribute %q is read-only", name)
	}
	return slot.Set(w, v)
}

// Call invokes a bound method by exposed name.
func Call(o Object, name string, args ...Object) (Object, error) {
	w, err := wrappedFor(o, "call "+name)
	if err != nil {
		return nil, err
	}
	m, ok := w.Proto.Methods[name]
	if !ok {
		return nil, typeErrf(w.Proto, "call", "no method %q", name)
	}
	return m(w, args...)
}

// Subscript performs the two-mode index operation: pass Sentinel as
// value to read, any other handle to write.
func Subscript(o Object, key, value Object) (Object, error) {
	w, err := wrappedFor(o, "subscript")
	if err != nil {
		return nil, err
	}
	if w.Proto.Subscript == nil {
		return nil, typeErrf(w.Proto, "subscript", "type is not subscriptable")
	}
	return w.Proto.Subscript(w, key, value)
}

// Equal compares two handles through the left operand's equality
// slot. Handles of different protos, or protos without the slot,
// compare unequal without error.
func Equal(a, b Object) (bool, error) {
	wa, ok := a.(*Wrapped)
	if !ok {
		return false, nil
	}
	wb, ok := b.(*Wrapped)
	if !ok || wa.Proto != wb.Proto || wa.Proto.Equals == nil {
		return false, nil
	}
	return wa.Proto.Equals(wa, wb)
}
