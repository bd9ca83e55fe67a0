package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/heliolang/heliobind/bind"
	"github.com/heliolang/heliobind/target"
)

// printReport writes the dry-run classification report for one target
// and returns the number of sites that would not bind.
func printReport(w io.Writer, t *target.Target, m *bind.Module, color bool) int {
	okC, badC, reset := "\033[32m", "\033[31m", "\033[0m"
	if !color {
		okC, badC, reset = "", "", ""
	}
	unsupported := 0

	bad := func(tr bind.TypeRef) bool {
		return !tr.IsVoid() && tr.Category == bind.CategoryUnsupported
	}
	mark := func(isBad bool) string {
		if isBad {
			return badC + "✗" + reset
		}
		return okC + "✓" + reset
	}
	propRow := func(indent string, p *bind.Property) {
		b := bad(p.Type)
		if b {
			unsupported++
		}
		fmt.Fprintf(w, "%s%s %-18s %-14s %s %s\n",
			indent, mark(b), p.Exposed, p.Type.Spelling, p.Type.Category, p.Access)
	}
	fnRow := func(indent, label string, fn *bind.Function) {
		b := false
		var parts []string
		for _, p := range fn.Params {
			if bad(p.Type) {
				unsupported++
				b = true
			}
			parts = append(parts, p.Name+" "+p.Type.Spelling)
		}
		if bad(fn.Return) {
			unsupported++
			b = true
		}
		sig := fn.Exposed + "(" + strings.Join(parts, ", ") + ")"
		if !fn.Return.IsVoid() {
			sig += " " + fn.Return.Spelling
		}
		fmt.Fprintf(w, "%s%s %s%s\n", indent, mark(b), label, sig)
	}

	fmt.Fprintf(w, "Target: %s (module %s)\n", t.Name, m.Name)
	for _, c := range m.Classes {
		fmt.Fprintf(w, "  class %s (%s)\n", c.Exposed, c.Ownership)
		for _, p := range c.Properties {
			propRow("    ", p)
		}
		for _, fn := range c.Methods {
			fnRow("    ", "", fn)
		}
		for _, op := range c.Operators {
			fnRow("    ", "operator "+op.Kind.String()+" ", op.Fn)
		}
	}
	for _, fn := range m.Functions {
		fnRow("  ", "", fn)
	}
	for _, p := range m.Properties {
		propRow("  ", p)
	}
	if unsupported > 0 {
		fmt.Fprintf(w, "  %s%d site(s) would not bind%s\n", badC, unsupported, reset)
	}
	fmt.Fprintln(w)
	return unsupported
}
