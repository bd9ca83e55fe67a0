// Package bind turns raw annotated-declaration records into the
// normalized binding model the emitter consumes: modules containing
// classes, classes containing properties, methods and operators, free
// functions, and type references resolved to a conversion category.
package bind

import (
	"fmt"
	"strings"
	"unicode"
)

// Ownership is the lifetime relationship between a generated wrapper
// and the native value it represents.
type Ownership int

const (
	// OwnershipUnresolved means the class tag did not specify a mode and
	// the builder has not yet applied the documented default. Emitting a
	// class in this state is a hard error.
	OwnershipUnresolved Ownership = iota
	// Owned wrappers allocate the native value and free it on finalize.
	Owned
	// Borrowed wrappers reference a native value they do not control.
	Borrowed
	// ValueCopy wrappers store an independent copy of the native value.
	ValueCopy
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "Owned"
	case Borrowed:
		return "Borrowed"
	case ValueCopy:
		return "ValueCopy"
	default:
		return "Unresolved"
	}
}

// AccessMode controls whether a property binding emits a setter.
type AccessMode int

const (
	ReadWrite AccessMode = iota
	ReadOnly
)

func (a AccessMode) String() string {
	if a == ReadOnly {
		return "ReadOnly"
	}
	return "ReadWrite"
}

// ValueForm is how a native value travels across the boundary.
type ValueForm int

const (
	// FormValue is a plain by-value spelling (T).
	FormValue ValueForm = iota
	// FormPointer is an explicit pointer spelling (*T).
	FormPointer
	// FormReference is an interior borrow produced by aggregate property
	// access; it is never spelled in source, only derived.
	FormReference
)

func (f ValueForm) String() string {
	switch f {
	case FormPointer:
		return "Pointer"
	case FormReference:
		return "Reference"
	default:
		return "Value"
	}
}

// TypeCategory selects the conversion strategy for a type reference.
type TypeCategory int

const (
	CategoryUnsupported TypeCategory = iota
	CategoryIntegral
	CategoryFloating
	CategoryBoolean
	CategoryText
	CategoryWrapped
)

func (c TypeCategory) String() string {
	switch c {
	case CategoryIntegral:
		return "Integral"
	case CategoryFloating:
		return "Floating"
	case CategoryBoolean:
		return "Boolean"
	case CategoryText:
		return "Text"
	case CategoryWrapped:
		return "WrappedObject"
	default:
		return "Unsupported"
	}
}

// TypeRef is a native type spelling plus its derived category and
// value form. Category is CategoryUnsupported until the classifier
// resolves it; unsupported references are deferred to emission time so
// the full missing-type list reports together.
type TypeRef struct {
	Spelling string
	Category TypeCategory
	Form     ValueForm
	// Class is the registered class a CategoryWrapped reference names.
	Class *Class
}

// IsVoid reports whether the reference is an absent return type.
func (t TypeRef) IsVoid() bool { return t.Spelling == "" }

// BaseSpelling returns the spelling with the pointer qualifier removed.
func (t TypeRef) BaseSpelling() string {
	return strings.TrimPrefix(t.Spelling, "*")
}

// Property is one exposed field or module variable.
type Property struct {
	Name    string // native name
	Exposed string // script-visible name
	Type    TypeRef
	Access  AccessMode
	File    string
	Line    int

	owner *Class // back-reference only, nil for module properties
}

// Owner returns the class the property belongs to, or nil for module
// level properties.
func (p *Property) Owner() *Class { return p.owner }

// Param is one function parameter.
type Param struct {
	Name    string
	Type    TypeRef
	Default string // literal text, empty when required
}

// Function is an exposed free function or method.
type Function struct {
	Name     string
	Exposed  string
	Params   []Param
	Return   TypeRef
	Receiver *Class // nil for free functions
	File     string
	Line     int
}

// OperatorKind names the protocol slot an operator binding fills.
type OperatorKind int

const (
	OpSubscript OperatorKind = iota
	OpEquals
)

func (k OperatorKind) String() string {
	if k == OpEquals {
		return "eq"
	}
	return "index"
}

// Operator binds a method to a runtime protocol slot.
type Operator struct {
	Kind OperatorKind
	Fn   *Function
}

// Class is one wrapped native type.
type Class struct {
	Name         string // native type name
	Exposed      string
	Ownership    Ownership
	HasAllocator bool
	Properties   []*Property
	Methods      []*Function
	Operators    []*Operator
	File         string
	Line         int

	ptrReceiver bool // a method was declared on *T
}

// ProtoSymbol is the deterministic protocol-table symbol the emitter
// generates for this class.
func (c *Class) ProtoSymbol() string { return c.Name + "Proto" }

// Module is the root of one target's binding model.
type Module struct {
	Name       string
	Classes    []*Class
	Functions  []*Function
	Properties []*Property // module-level constants and variables
	File       string
}

// BuilderError reports a structural violation in the annotated input:
// duplicate module, name collision, unrecognized tag option. It is
// fatal for the target being built.
type BuilderError struct {
	File string
	Line int
	Msg  string
}

func (e *BuilderError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// ExposedName converts a native PascalCase identifier to the
// script-visible snake_case form. Uppercase runs stay together, with
// the last letter starting a new word when followed by lowercase
// ("HTTPServer" becomes "http_server").
func ExposedName(name string) string {
	runes := []rune(name)
	var out []rune
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 && (!unicode.IsUpper(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				out = append(out, '_')
			}
			out = append(out, unicode.ToLower(r))
			continue
		}
		out = append(out, r)
	}
	return strings.Trim(string(out), "_")
}
