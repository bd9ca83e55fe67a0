// Package helio is the runtime type-adapter layer for the Helio
// embedded scripting runtime. Generated glue code depends on it for
// presence tests, value extraction, value construction, and
// ownership-aware allocation; it is fixed library code, never
// generated. All operations run inside the interpeter's single
// execution context and must not block.
//
// Owned wrappers release their native value through Proto.Drop when
// the runtime finalizes them. Generated glue never installs a Drop,
// so under Go's garbage collector an owned release is a no-op unless
// the host registers one for a resource-holding class.
package helio

import "fmt"

// Object is a runtime handle. Primitive values travel as int64,
// float64, bool and string; wrapped natives travel as *Wrapped.
type Object = any

// sentinel is the unique read marker for subscript dispatch.
type sentinel struct{}

// Sentinel requests a subscript read. Any other value passed to
// Subscript is treated as a write of that value. This collapses the
// get and set paths into one protocol entry point.
var Sentinel Object = sentinel{}

// AttrSlot is one attribute entry in a protocol table. A nil Set
// makes the attribute read-only.
type AttrSlot struct {
	Get func(self *Wrapped) (Object, error)
	Set func(self *Wrapped, v Object) error
}

// MethodFunc is a bound method entry point.
type MethodFunc func(self *Wrapped, args ...Object) (Object, error)

// GlobalFunc is a free-function entry point.
type GlobalFunc func(args ...Object) (Object, error)

// SubscriptFunc implements both subscript modes behind one entry
// point: value is Sentinel for a read, anything else for a write.
// Reads return the converted element; writes return nil.
type SubscriptFunc func(self *Wrapped, key, value Object) (Object, error)

// TypeProto is the protocol table the runtime consults to interact
// with one wrapped native type: attribute access, call, subscript,
// equality, and the optional allocator strategy.
type TypeProto struct {
	Name    string
	Attrs   map[string]*AttrSlot
	Methods map[string]MethodFunc

	// Subscript handles indexing when the type binds the index slot.
	Subscript SubscriptFunc

	// Equals handles the equality slot. Both operands are guaranteed
	// to conform to this proto when called through Equal.
	Equals func(a, b *Wrapped) (bool, error)

	// Alloc duplicates a transient native value onto the heap and
	// returns a pointer, decoupling the wrapper's lifetime from the
	// caller's. Required for constructing borrowed wrappers from
	// transients; generation fails earlier when it is structurally
	// required but unregistered.
	Alloc func(v any) any

	// Drop releases an owned native value when its wrapper dies.
	Drop func(v any)
}

// Registrar is the module registration surface the host runtime
// implements. Generated registration blocks call it once per exposed
// class, function and constant, in declaration order.
type Registrar interface {
	RegisterType(module string, proto *TypeProto)
	RegisterFunc(module, name string, fn GlobalFunc)
	RegisterConst(module, name string, value Object)
}

// TypeError reports a protocol violation observed at dispatch time,
// such as a missing attribute or an unsubscriptable type.
type TypeError struct {
	Proto string
	Op    string
	Msg   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Proto, e.Op, e.Msg)
}

func typeErrf(proto *TypeProto, op, format string, args ...any) error {
	name := "<nil>"
	if proto != nil {
		name = proto.Name
	}
	return &TypeError{Proto: name, Op: op, Msg: fmt.Sprintf(format, args...)}
}
