// Package emit lowers a resolved binding model into generated Go
// glue: one declarations file carrying the protocol-table symbols and
// one implementation file carrying the thunks and the registration
// entry point. Output is a pure function of the model, so re-running
// over unchanged input reproduces the files byte for byte.
package emit

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"
	"text/template"

	"github.com/heliolang/heliobind/bind"
)

const fileHeader = "// Code generated by heliobind. DO NOT EDIT.\n\n"

// Options configures one generation run.
type Options struct {
	// Package is the package clause for both generated files. The
	// files are meant to live next to the annotated declarations.
	Package string
}

// Output holds the two formatted generated files.
type Output struct {
	Decls []byte
	Impl  []byte
}

// Generate lowers the module into source text. It fails before
// writing anything: EmissionError lists every unsupported binding
// site, MissingAllocatorError every transient construction site of a
// borrowed class without an allocator.
func Generate(m *bind.Module, opts Options) (*Output, error) {
	if opts.Package == "" {
		return nil, fmt.Errorf("emit: package name required")
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	g := &gen{m: m, pkg: opts.Package}
	decls, err := format.Source([]byte(g.declsFile()))
	if err != nil {
		return nil, fmt.Errorf("emit: formatting declarations for %s: %w", m.Name, err)
	}
	impl, err := format.Source([]byte(g.implFile()))
	if err != nil {
		return nil, fmt.Errorf("emit: formatting implementation for %s: %w", m.Name, err)
	}
	return &Output{Decls: decls, Impl: impl}, nil
}

// validate collects every blocker before any text is produced, so a
// failed run reports the complete list.
func validate(m *bind.Module) error {
	var bad []Offender
	var alloc []Offender

	site := func(file string, line int, where, reason string) {
		bad = append(bad, Offender{File: file, Line: line, Where: where, Reason: reason})
	}
	typeOK := func(t bind.TypeRef, file string, line int, where string) {
		if !t.IsVoid() && t.Category == bind.CategoryUnsupported {
			site(file, line, where, fmt.Sprintf("unsupported type %q", t.Spelling))
		}
	}
	fnSites := func(fn *bind.Function, where string) {
		for _, p := range fn.Params {
			pw := where + ", parameter " + p.Name
			typeOK(p.Type, fn.File, fn.Line, pw)
			if p.Default == "" {
				continue
			}
			if p.Type.Category == bind.CategoryWrapped {
				site(fn.File, fn.Line, pw, "defaults are only supported on primitive parameters")
			} else if !defaultFits(p.Type.Category, p.Default) {
				site(fn.File, fn.Line, pw,
					fmt.Sprintf("default %q is not a valid %s literal", p.Default, p.Type.Category))
			}
		}
		typeOK(fn.Return, fn.File, fn.Line, where+", return")
		if transientConstruction(fn.Return) {
			alloc = append(alloc, Offender{
				File: fn.File, Line: fn.Line, Where: where,
				Reason: fmt.Sprintf("returns %s by value but class %s is Borrowed without an allocator",
					fn.Return.Spelling, fn.Return.Class.Exposed),
			})
		}
	}

	for _, p := range m.Properties {
		typeOK(p.Type, p.File, p.Line, "module property "+p.Exposed)
	}
	for _, fn := range m.Functions {
		fnSites(fn, "function "+fn.Exposed)
	}
	for _, c := range m.Classes {
		cw := "class " + c.Exposed
		if c.Ownership == bind.OwnershipUnresolved {
			site(c.File, c.Line, cw, "ownership mode unresolved")
		}
		for _, p := range c.Properties {
			typeOK(p.Type, p.File, p.Line, cw+", property "+p.Exposed)
		}
		for _, fn := range c.Methods {
			fnSites(fn, cw+", method "+fn.Exposed)
		}
		for _, op := range c.Operators {
			ow := cw + ", operator " + op.Kind.String()
			fnSites(op.Fn, ow)
			switch op.Kind {
			case bind.OpSubscript:
				if n := len(op.Fn.Params); n != 1 && n != 2 {
					site(op.Fn.File, op.Fn.Line, ow, "subscript methods take a key or a key and a value")
				}
				if len(op.Fn.Params) == 1 && op.Fn.Return.IsVoid() {
					site(op.Fn.File, op.Fn.Line, ow, "subscript read must return the element")
				}
			case bind.OpEquals:
				if len(op.Fn.Params) != 1 {
					site(op.Fn.File, op.Fn.Line, ow, "equality methods take exactly one operand")
				} else if t := op.Fn.Params[0].Type; t.Category != bind.CategoryWrapped || t.Class != c {
					site(op.Fn.File, op.Fn.Line, ow,
						fmt.Sprintf("equality operand must be %s, not %s", c.Name, t.Spelling))
				}
				if op.Fn.Return.Category != bind.CategoryBoolean {
					site(op.Fn.File, op.Fn.Line, ow, "equality methods must return a boolean")
				}
			}
		}
	}

	if len(bad) > 0 {
		return &EmissionError{Module: m.Name, Offenders: bad}
	}
	if len(alloc) > 0 {
		return &MissingAllocatorError{Module: m.Name, Sites: alloc}
	}
	return nil
}

// defaultFits reports whether a default literal can be converted to
// the parameter's spelling as a Go constant. Text literals always fit
// because they are quoted at emission.
func defaultFits(cat bind.TypeCategory, lit string) bool {
	switch cat {
	case bind.CategoryIntegral:
		_, err := strconv.ParseInt(lit, 0, 64)
		return err == nil
	case bind.CategoryFloating:
		_, err := strconv.ParseFloat(lit, 64)
		return err == nil
	case bind.CategoryBoolean:
		return lit == "true" || lit == "false"
	}
	return true
}

type gen struct {
	m        *bind.Module
	pkg      string
	needsFmt bool
}

// declsTemplate is the scaffold for the declarations file: the proto
// symbols the implementation file and other targets link against.
var declsTemplate = template.Must(template.New("decls").Parse(`// Code generated by heliobind. DO NOT EDIT.

package {{.Pkg}}
{{if .Classes}}
import "github.com/heliolang/heliobind/helio"
{{end}}{{range .Classes}}
// {{.ProtoSymbol}} is the protocol table for {{$.Module}}.{{.Exposed}}, installed by Register.
var {{.ProtoSymbol}} = &helio.TypeProto{Name: {{printf "%q" .Exposed}}}
{{end}}`))

func (g *gen) declsFile() string {
	var sb strings.Builder
	err := declsTemplate.Execute(&sb, struct {
		Pkg     string
		Module  string
		Classes []*bind.Class
	}{g.pkg, g.m.Name, g.m.Classes})
	if err != nil {
		panic(err) // static template, plain string fields
	}
	return sb.String()
}

func (g *gen) implFile() string {
	var body strings.Builder
	g.needsFmt = false

	if len(g.m.Classes) > 0 {
		g.wiring(&body)
	}
	for _, c := range g.m.Classes {
		for _, p := range c.Properties {
			g.getter(&body, c, p)
			if p.Access == bind.ReadWrite {
				g.setter(&body, c, p)
			}
		}
		for _, fn := range c.Methods {
			g.callThunk(&body, c, fn)
		}
		for _, op := range c.Operators {
			g.callThunk(&body, c, op.Fn)
		}
		g.slots(&body, c)
	}
	for _, fn := range g.m.Functions {
		g.callThunk(&body, nil, fn)
	}
	g.register(&body)

	var sb strings.Builder
	sb.WriteString(fileHeader)
	fmt.Fprintf(&sb, "package %s\n\n", g.pkg)
	if g.needsFmt {
		sb.WriteString("import (\n\t\"fmt\"\n\n\t\"github.com/heliolang/heliobind/helio\"\n)\n\n")
	} else {
		sb.WriteString("import \"github.com/heliolang/heliobind/helio\"\n\n")
	}
	sb.WriteString(body.String())
	return sb.String()
}

// wiring emits the init block attaching slots to the proto tables in
// declaration order.
func (g *gen) wiring(sb *strings.Builder) {
	sb.WriteString("func init() {\n")
	for _, c := range g.m.Classes {
		sym := c.ProtoSymbol()
		if len(c.Properties) > 0 {
			fmt.Fprintf(sb, "\t%s.Attrs = map[string]*helio.AttrSlot{\n", sym)
			for _, p := range c.Properties {
				if p.Access == bind.ReadWrite {
					fmt.Fprintf(sb, "\t\t%q: {Get: %s, Set: %s},\n",
						p.Exposed, getterName(c, p), setterName(c, p))
				} else {
					fmt.Fprintf(sb, "\t\t%q: {Get: %s},\n", p.Exposed, getterName(c, p))
				}
			}
			sb.WriteString("\t}\n")
		}
		if len(c.Methods) > 0 {
			fmt.Fprintf(sb, "\t%s.Methods = map[string]helio.MethodFunc{\n", sym)
			for _, fn := range c.Methods {
				fmt.Fprintf(sb, "\t\t%q: %s,\n", fn.Exposed, thunkName(c, fn))
			}
			sb.WriteString("\t}\n")
		}
		for _, op := range c.Operators {
			if op.Kind == bind.OpSubscript {
				fmt.Fprintf(sb, "\t%s.Subscript = %s\n", sym, subscriptName(c))
				break
			}
		}
		for _, op := range c.Operators {
			if op.Kind == bind.OpEquals {
				fmt.Fprintf(sb, "\t%s.Equals = %s\n", sym, equalsName(c))
				break
			}
		}
		if c.HasAllocator {
			fmt.Fprintf(sb, "\t%s.Alloc = func(v any) any { c := v.(%s); return &c }\n", sym, c.Name)
		}
	}
	sb.WriteString("}\n\n")
}

func (g *gen) getter(sb *strings.Builder, c *bind.Class, p *bind.Property) {
	fmt.Fprintf(sb, "func %s(self *helio.Wrapped) (helio.Object, error) {\n", getterName(c, p))
	fmt.Fprintf(sb, "\trecv := self.Value.(*%s)\n", c.Name)
	t := p.Type
	if t.Category == bind.CategoryWrapped {
		// aggregate access hands out an interior borrow tied to the
		// receiver's lifetime, never a copy
		field := "recv." + p.Name
		if t.Form == bind.FormValue {
			field = "&" + field
		}
		fmt.Fprintf(sb, "\treturn helio.Borrow(%s, %s), nil\n", t.Class.ProtoSymbol(), field)
	} else {
		fmt.Fprintf(sb, "\treturn %s, nil\n", constructExpr(t, "recv."+p.Name))
	}
	sb.WriteString("}\n\n")
}

func (g *gen) setter(sb *strings.Builder, c *bind.Class, p *bind.Property) {
	g.needsFmt = true
	t := p.Type
	fmt.Fprintf(sb, "func %s(self *helio.Wrapped, v helio.Object) error {\n", setterName(c, p))
	fmt.Fprintf(sb, "\tif !%s {\n", checkExpr(t, "v"))
	fmt.Fprintf(sb, "\t\treturn fmt.Errorf(\"%s.%s: want %s, got %%T\", v)\n",
		c.Exposed, p.Exposed, t.Category)
	sb.WriteString("\t}\n")
	fmt.Fprintf(sb, "\tself.Value.(*%s).%s = %s\n", c.Name, p.Name, extractExpr(t, "v"))
	sb.WriteString("\treturn nil\n}\n\n")
}

// callThunk emits the thunk for a method, an operator method or a
// free function: arity check, per-argument conversion with defaults,
// the native call, and the return conversion.
func (g *gen) callThunk(sb *strings.Builder, c *bind.Class, fn *bind.Function) {
	g.needsFmt = true
	label := fn.Exposed
	if c != nil {
		label = c.Exposed + "." + fn.Exposed
		fmt.Fprintf(sb, "func %s(self *helio.Wrapped, args ...helio.Object) (helio.Object, error) {\n",
			thunkName(c, fn))
		fmt.Fprintf(sb, "\trecv := self.Value.(*%s)\n", c.Name)
	} else {
		fmt.Fprintf(sb, "func %s(args ...helio.Object) (helio.Object, error) {\n", thunkName(nil, fn))
	}

	min, max := arity(fn)
	switch {
	case min == max:
		fmt.Fprintf(sb, "\tif len(args) != %d {\n", max)
		fmt.Fprintf(sb, "\t\treturn nil, fmt.Errorf(\"%s: want %d argument(s), got %%d\", len(args))\n",
			label, max)
	case min == 0:
		fmt.Fprintf(sb, "\tif len(args) > %d {\n", max)
		fmt.Fprintf(sb, "\t\treturn nil, fmt.Errorf(\"%s: want at most %d argument(s), got %%d\", len(args))\n",
			label, max)
	default:
		fmt.Fprintf(sb, "\tif len(args) < %d || len(args) > %d {\n", min, max)
		fmt.Fprintf(sb, "\t\treturn nil, fmt.Errorf(\"%s: want %d to %d arguments, got %%d\", len(args))\n",
			label, min, max)
	}
	sb.WriteString("\t}\n")

	for i, p := range fn.Params {
		arg := fmt.Sprintf("args[%d]", i)
		fail := fmt.Sprintf("\t\treturn nil, fmt.Errorf(\"%s: argument %s: want %s, got %%T\", %s)\n",
			label, p.Name, p.Type.Category, arg)
		if p.Default == "" {
			fmt.Fprintf(sb, "\tif !%s {\n%s\t}\n", checkExpr(p.Type, arg), fail)
			fmt.Fprintf(sb, "\ta%d := %s\n", i, extractExpr(p.Type, arg))
		} else {
			lit := p.Default
			// tag parsing strips the quotes off text literals
			if p.Type.Category == bind.CategoryText {
				lit = strconv.Quote(lit)
			}
			fmt.Fprintf(sb, "\ta%d := %s(%s)\n", i, p.Type.Spelling, lit)
			fmt.Fprintf(sb, "\tif len(args) > %d {\n", i)
			fmt.Fprintf(sb, "\t\tif !%s {\n\t%s\t\t}\n", checkExpr(p.Type, arg), fail)
			fmt.Fprintf(sb, "\t\ta%d = %s\n\t}\n", i, extractExpr(p.Type, arg))
		}
	}

	callArgs := make([]string, len(fn.Params))
	for i := range fn.Params {
		callArgs[i] = fmt.Sprintf("a%d", i)
	}
	call := fmt.Sprintf("%s(%s)", fn.Name, strings.Join(callArgs, ", "))
	if c != nil {
		call = "recv." + call
	}

	switch {
	case fn.Return.IsVoid():
		fmt.Fprintf(sb, "\t%s\n\treturn helio.None, nil\n", call)
	case fn.Return.Category == bind.CategoryWrapped:
		fmt.Fprintf(sb, "\tret := %s\n", call)
		g.wrappedReturn(sb, fn.Return)
	default:
		fmt.Fprintf(sb, "\treturn %s, nil\n", constructExpr(fn.Return, call))
	}
	sb.WriteString("}\n\n")
}

// wrappedReturn emits the ownership-specific construction of a
// wrapped handle from the native call result held in ret.
func (g *gen) wrappedReturn(sb *strings.Builder, t bind.TypeRef) {
	sym := t.Class.ProtoSymbol()
	switch {
	case t.Form == bind.FormPointer && t.Class.Ownership == bind.Borrowed:
		fmt.Fprintf(sb, "\treturn helio.Borrow(%s, ret), nil\n", sym)
	case t.Form == bind.FormPointer && t.Class.Ownership == bind.Owned:
		fmt.Fprintf(sb, "\treturn helio.Adopt(%s, ret), nil\n", sym)
	case t.Form == bind.FormPointer:
		fmt.Fprintf(sb, "\treturn helio.Copy(%s, *ret), nil\n", sym)
	case t.Class.Ownership == bind.Owned:
		fmt.Fprintf(sb, "\tretc := ret\n\treturn helio.Adopt(%s, &retc), nil\n", sym)
	case t.Class.Ownership == bind.Borrowed:
		// transient source, allocator presence proven by validate
		fmt.Fprintf(sb, "\treturn helio.FromTransient(%s, ret)\n", sym)
	default:
		fmt.Fprintf(sb, "\treturn helio.Copy(%s, ret), nil\n", sym)
	}
}

// slots emits the subscript dispatcher and the equality shim for a
// class, delegating to the operator thunks.
func (g *gen) slots(sb *strings.Builder, c *bind.Class) {
	var get, set *bind.Function
	var eq *bind.Function
	for _, op := range c.Operators {
		switch op.Kind {
		case bind.OpSubscript:
			if len(op.Fn.Params) == 1 {
				get = op.Fn
			} else {
				set = op.Fn
			}
		case bind.OpEquals:
			eq = op.Fn
		}
	}

	if get != nil || set != nil {
		g.needsFmt = true
		fmt.Fprintf(sb, "func %s(self *helio.Wrapped, key, value helio.Object) (helio.Object, error) {\n",
			subscriptName(c))
		sb.WriteString("\tif value == helio.Sentinel {\n")
		if get != nil {
			fmt.Fprintf(sb, "\t\treturn %s(self, key)\n", thunkName(c, get))
		} else {
			fmt.Fprintf(sb, "\t\treturn nil, fmt.Errorf(\"%s: subscript read is not bound\")\n", c.Exposed)
		}
		sb.WriteString("\t}\n")
		if set != nil {
			fmt.Fprintf(sb, "\tif _, err := %s(self, key, value); err != nil {\n", thunkName(c, set))
			sb.WriteString("\t\treturn nil, err\n\t}\n")
			sb.WriteString("\treturn helio.None, nil\n")
		} else {
			fmt.Fprintf(sb, "\treturn nil, fmt.Errorf(\"%s: subscript write is not bound\")\n", c.Exposed)
		}
		sb.WriteString("}\n\n")
	}

	if eq != nil {
		other := fmt.Sprintf("b.Value.(*%s)", c.Name)
		if eq.Params[0].Type.Form == bind.FormValue {
			other = "*" + other
		}
		fmt.Fprintf(sb, "func %s(a, b *helio.Wrapped) (bool, error) {\n", equalsName(c))
		fmt.Fprintf(sb, "\treturn a.Value.(*%s).%s(%s), nil\n}\n\n", c.Name, eq.Name, other)
	}
}

func (g *gen) register(sb *strings.Builder) {
	fmt.Fprintf(sb, "// Register installs the %s module into a Helio runtime.\n", g.m.Name)
	sb.WriteString("func Register(r helio.Registrar) {\n")
	for _, c := range g.m.Classes {
		fmt.Fprintf(sb, "\tr.RegisterType(%q, %s)\n", g.m.Name, c.ProtoSymbol())
	}
	for _, fn := range g.m.Functions {
		fmt.Fprintf(sb, "\tr.RegisterFunc(%q, %q, %s)\n", g.m.Name, fn.Exposed, thunkName(nil, fn))
	}
	for _, p := range g.m.Properties {
		var val string
		if p.Type.Category == bind.CategoryWrapped {
			// package variables outlive every wrapper, a static borrow
			// is always safe
			ref := p.Name
			if p.Type.Form == bind.FormValue {
				ref = "&" + ref
			}
			val = fmt.Sprintf("helio.Borrow(%s, %s)", p.Type.Class.ProtoSymbol(), ref)
		} else {
			val = constructExpr(p.Type, p.Name)
		}
		fmt.Fprintf(sb, "\tr.RegisterConst(%q, %q, %s)\n", g.m.Name, p.Exposed, val)
	}
	sb.WriteString("}\n")
}

func arity(fn *bind.Function) (min, max int) {
	max = len(fn.Params)
	for _, p := range fn.Params {
		if p.Default == "" {
			min++
		}
	}
	return min, max
}

func thunkName(c *bind.Class, fn *bind.Function) string {
	if c == nil {
		return "helio" + fn.Name
	}
	return "helio" + c.Name + fn.Name
}

func getterName(c *bind.Class, p *bind.Property) string {
	return "helio" + c.Name + "Get" + p.Name
}

func setterName(c *bind.Class, p *bind.Property) string {
	return "helio" + c.Name + "Set" + p.Name
}

func subscriptName(c *bind.Class) string { return "helio" + c.Name + "Subscript" }

func equalsName(c *bind.Class) string { return "helio" + c.Name + "Equals" }
