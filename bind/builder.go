package bind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/heliolang/heliobind/scanner"
)

// RecordSource is the scanner's record stream contract: Next returns
// the next annotated-declaration record, (nil, nil) at end of stream.
type RecordSource interface {
	Next() (*scanner.Record, error)
}

// Builder consumes annotated-declaration records for one target and
// produces one Module. A builder is single-use.
type Builder struct {
	reg      *Registry
	fallback Ownership // ownership for the ambiguous unspecified case

	module  *Module
	current *Class // nearest open class scope
	seen    map[string]string
}

// NewBuilder creates a builder registering classes into reg as they
// open, so forward references within the same target resolve.
func NewBuilder(reg *Registry) *Builder {
	return &Builder{
		reg:      reg,
		fallback: ValueCopy,
		seen:     map[string]string{},
	}
}

// SetDefaultOwnership overrides the fallback ownership mode used when
// a class tag omits the mode and the declaration context is ambiguous.
func (b *Builder) SetDefaultOwnership(o Ownership) { b.fallback = o }

// Build consumes every record from the given sources, in order, and
// returns the completed Module. A scanner error abandons only the
// source unit it occurred in; the remaining units are still consumed
// so one run reports every broken unit, then the joined errors fail
// the target. Structural violations abort immediately.
func (b *Builder) Build(sources ...RecordSource) (*Module, error) {
	var scanErrs []error
	for _, src := range sources {
		for {
			rec, err := src.Next()
			if err != nil {
				scanErrs = append(scanErrs, err)
				break
			}
			if rec == nil {
				break
			}
			if err := b.add(rec); err != nil {
				return nil, err
			}
		}
	}
	if len(scanErrs) > 0 {
		return nil, errors.Join(scanErrs...)
	}
	return b.finish()
}

func (b *Builder) add(rec *scanner.Record) error {
	switch rec.Kind {
	case scanner.KindModule:
		return b.addModule(rec)
	case scanner.KindClass:
		return b.addClass(rec)
	case scanner.KindProperty:
		return b.addProperty(rec)
	case scanner.KindFunction:
		return b.addFunction(rec)
	case scanner.KindOperator:
		return b.addOperator(rec)
	}
	return b.errf(rec, "unhandled record kind %v", rec.Kind)
}

func (b *Builder) errf(rec *scanner.Record, format string, args ...any) error {
	return &BuilderError{File: rec.File, Line: rec.Line, Msg: fmt.Sprintf(format, args...)}
}

func (b *Builder) addModule(rec *scanner.Record) error {
	if b.module != nil {
		return b.errf(rec, "duplicate module tag: target already declares module %q", b.module.Name)
	}
	if len(rec.Args) != 1 || rec.Args[0].Name != "" || rec.Args[0].Value == "" {
		return b.errf(rec, "module tag requires exactly one name argument")
	}
	b.module = &Module{Name: rec.Args[0].Value, File: rec.File}
	return nil
}

// ensureModule rejects member tags that appear before the module tag.
func (b *Builder) ensureModule(rec *scanner.Record) error {
	if b.module == nil {
		return b.errf(rec, "%s tag before module tag", rec.Kind)
	}
	return nil
}

func (b *Builder) addClass(rec *scanner.Record) error {
	if err := b.ensureModule(rec); err != nil {
		return err
	}
	c := &Class{
		Name:    rec.Name,
		Exposed: ExposedName(rec.Name),
		File:    rec.File,
		Line:    rec.Line,
	}
	for _, arg := range rec.Args {
		switch {
		case arg.Name == "name":
			c.Exposed = arg.Value
		case arg.Name == "" && arg.Value == "allocator":
			c.HasAllocator = true
		case arg.Name == "" && arg.Value == "Owned":
			c.Ownership = Owned
		case arg.Name == "" && arg.Value == "Borrowed":
			c.Ownership = Borrowed
		case arg.Name == "" && arg.Value == "ValueCopy":
			c.Ownership = ValueCopy
		default:
			return b.errf(rec, "class tag: unrecognized option %q", argText(arg))
		}
	}
	if err := b.collide("module", c.Exposed, rec); err != nil {
		return err
	}
	if err := b.reg.Add(b.module.Name, c); err != nil {
		return b.errf(rec, "%v", err)
	}
	b.module.Classes = append(b.module.Classes, c)
	b.current = c
	return nil
}

func (b *Builder) addProperty(rec *scanner.Record) error {
	if err := b.ensureModule(rec); err != nil {
		return err
	}
	p := &Property{
		Name:    rec.Name,
		Exposed: ExposedName(rec.Name),
		Type:    typeRefFor(rec.Type),
		File:    rec.File,
		Line:    rec.Line,
	}
	for _, arg := range rec.Args {
		switch {
		case arg.Name == "name":
			p.Exposed = arg.Value
		case arg.Name == "" && arg.Value == "ReadOnly":
			p.Access = ReadOnly
		case arg.Name == "" && arg.Value == "ReadWrite":
			p.Access = ReadWrite
		default:
			return b.errf(rec, "property tag: unrecognized option %q", argText(arg))
		}
	}
	// Field declarations attach to the nearest open class; var
	// declarations are module properties.
	if b.current != nil && !strings.HasPrefix(rec.Decl, "var ") {
		if err := b.collide(b.current.Name, p.Exposed, rec); err != nil {
			return err
		}
		p.owner = b.current
		b.current.Properties = append(b.current.Properties, p)
		return nil
	}
	if err := b.collide("module", p.Exposed, rec); err != nil {
		return err
	}
	b.module.Properties = append(b.module.Properties, p)
	return nil
}

func (b *Builder) buildFunction(rec *scanner.Record) (*Function, error) {
	fn := &Function{
		Name:    rec.Name,
		Exposed: ExposedName(rec.Name),
		Return:  typeRefFor(rec.Return),
		File:    rec.File,
		Line:    rec.Line,
	}
	for _, p := range rec.Params {
		fn.Params = append(fn.Params, Param{Name: p.Name, Type: typeRefFor(p.Type)})
	}
	if rec.Receiver != "" {
		reg, ok := b.reg.LookupIn(b.module.Name, rec.Receiver)
		if !ok {
			return nil, b.errf(rec, "receiver type %s is not an annotated class", rec.Receiver)
		}
		fn.Receiver = reg.Class
		if rec.ReceiverPtr {
			reg.Class.ptrReceiver = true
		}
	}
	return fn, nil
}

func (b *Builder) addFunction(rec *scanner.Record) error {
	if err := b.ensureModule(rec); err != nil {
		return err
	}
	fn, err := b.buildFunction(rec)
	if err != nil {
		return err
	}
	for _, arg := range rec.Args {
		switch {
		case arg.Name == "name":
			fn.Exposed = arg.Value
		case arg.Name != "" && strings.HasPrefix(arg.Name, "default:"):
			pname := strings.TrimPrefix(arg.Name, "default:")
			if !setDefault(fn, pname, arg.Value) {
				return b.errf(rec, "function tag: default for unknown parameter %q", pname)
			}
		default:
			return b.errf(rec, "function tag: unrecognized option %q", argText(arg))
		}
	}
	if err := checkDefaults(fn); err != nil {
		return b.errf(rec, "%v", err)
	}
	if fn.Receiver != nil {
		if err := b.collide(fn.Receiver.Name, fn.Exposed, rec); err != nil {
			return err
		}
		fn.Receiver.Methods = append(fn.Receiver.Methods, fn)
		return nil
	}
	if err := b.collide("module", fn.Exposed, rec); err != nil {
		return err
	}
	b.module.Functions = append(b.module.Functions, fn)
	return nil
}

func (b *Builder) addOperator(rec *scanner.Record) error {
	if err := b.ensureModule(rec); err != nil {
		return err
	}
	if len(rec.Args) != 1 || rec.Args[0].Name != "" {
		return b.errf(rec, "operator tag requires exactly one slot argument")
	}
	var kind OperatorKind
	switch rec.Args[0].Value {
	case "index":
		kind = OpSubscript
	case "eq":
		kind = OpEquals
	default:
		return b.errf(rec, "operator tag: unrecognized slot %q", rec.Args[0].Value)
	}
	fn, err := b.buildFunction(rec)
	if err != nil {
		return err
	}
	if fn.Receiver == nil {
		return b.errf(rec, "operator %s must be declared as a method", kind)
	}
	for _, op := range fn.Receiver.Operators {
		if op.Kind == kind && sameArity(op.Fn, fn) {
			return b.errf(rec, "operator %s already bound for %s", kind, fn.Receiver.Name)
		}
	}
	fn.Receiver.Operators = append(fn.Receiver.Operators, &Operator{Kind: kind, Fn: fn})
	return nil
}

// sameArity distinguishes a subscript getter (key only) from its
// setter (key and value); both may bind the same slot.
func sameArity(a, b *Function) bool { return len(a.Params) == len(b.Params) }

// collide enforces the one-exposed-name-per-scope rule. First
// occurrence wins is not the policy: the second occurrence is always
// reported.
func (b *Builder) collide(scope, exposed string, rec *scanner.Record) error {
	key := scope + "." + exposed
	if prev, ok := b.seen[key]; ok {
		return b.errf(rec, "name collision: %q already exposed in %s (previous at %s)", exposed, scope, prev)
	}
	b.seen[key] = fmt.Sprintf("%s:%d", rec.File, rec.Line)
	return nil
}

func (b *Builder) finish() (*Module, error) {
	if b.module == nil {
		return nil, &BuilderError{Msg: "no module tag found for target"}
	}
	for _, c := range b.module.Classes {
		c.Ownership = ResolveOwnership(c, b.fallback)
	}
	return b.module, nil
}

// typeRefFor derives the value form from the spelling's qualifiers.
// Classification into a category happens later, against the full
// registry, so forward references resolve.
func typeRefFor(spelling string) TypeRef {
	t := TypeRef{Spelling: spelling}
	if strings.HasPrefix(spelling, "*") {
		t.Form = FormPointer
	}
	return t
}

func setDefault(fn *Function, param, literal string) bool {
	for i := range fn.Params {
		if fn.Params[i].Name == param {
			fn.Params[i].Default = literal
			return true
		}
	}
	return false
}

// checkDefaults enforces that defaulted parameters are trailing, so
// the emitted thunk can fill missing arguments positionally.
func checkDefaults(fn *Function) error {
	seen := false
	for _, p := range fn.Params {
		if p.Default != "" {
			seen = true
		} else if seen {
			return fmt.Errorf("parameter %q without default follows a defaulted parameter", p.Name)
		}
	}
	return nil
}

func argText(a Arg) string {
	if a.Name != "" {
		return a.Name + "=" + a.Value
	}
	return a.Value
}

// Arg aliases the scanner's argument type for builder-side helpers.
type Arg = scanner.Arg
