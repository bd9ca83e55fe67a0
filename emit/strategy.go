package emit

import (
	"fmt"

	"github.com/heliolang/heliobind/bind"
)

// conv is the adapter strategy for one type reference: source
// templates for the presence check, the native extraction and the
// handle construction. Each template takes the handle or native
// expression as its single verb.
type conv struct {
	check     string
	extract   string
	construct string
}

// primitiveConv selects the adapter strategy for a non-wrapped
// category. The cast through the native spelling keeps typed aliases
// (byte, rune, int32) working on both directions.
func primitiveConv(t bind.TypeRef) (conv, bool) {
	switch t.Category {
	case bind.CategoryIntegral:
		return conv{
			check:     "helio.IsInt(%s)",
			extract:   t.Spelling + "(helio.AsInt(%s))",
			construct: "helio.NewInt(int64(%s))",
		}, true
	case bind.CategoryFloating:
		return conv{
			check:     "helio.IsFloat(%s)",
			extract:   t.Spelling + "(helio.AsFloat(%s))",
			construct: "helio.NewFloat(float64(%s))",
		}, true
	case bind.CategoryBoolean:
		return conv{
			check:     "helio.IsBool(%s)",
			extract:   "helio.AsBool(%s)",
			construct: "helio.NewBool(%s)",
		}, true
	case bind.CategoryText:
		return conv{
			check:     "helio.IsStr(%s)",
			extract:   "helio.AsStr(%s)",
			construct: "helio.NewStr(%s)",
		}, true
	default:
		return conv{}, false
	}
}

// checkExpr renders the presence test for a handle expression.
func checkExpr(t bind.TypeRef, obj string) string {
	if t.Category == bind.CategoryWrapped {
		return fmt.Sprintf("helio.IsInstanceOf(%s, %s)", obj, t.Class.ProtoSymbol())
	}
	c, ok := primitiveConv(t)
	if !ok {
		return "false"
	}
	return fmt.Sprintf(c.check, obj)
}

// extractExpr renders the native extraction for a checked handle.
// Wrapped handles always store a pointer; the value form dereferences
// it into a copy.
func extractExpr(t bind.TypeRef, obj string) string {
	if t.Category == bind.CategoryWrapped {
		ptr := fmt.Sprintf("helio.AsWrapped(%s).Value.(*%s)", obj, t.Class.Name)
		if t.Form == bind.FormValue {
			return "*" + ptr
		}
		return ptr
	}
	c, _ := primitiveConv(t)
	return fmt.Sprintf(c.extract, obj)
}

// constructExpr renders the handle construction for a primitive
// native expression. Wrapped construction depends on ownership and is
// handled statement-wise by the generator.
func constructExpr(t bind.TypeRef, expr string) string {
	c, _ := primitiveConv(t)
	return fmt.Sprintf(c.construct, expr)
}

// transientConstruction reports whether returning t by value from a
// native call needs an allocator: the wrapper would otherwise borrow
// a value that dies with the call frame.
func transientConstruction(t bind.TypeRef) bool {
	return t.Category == bind.CategoryWrapped &&
		t.Form == bind.FormValue &&
		t.Class.Ownership == bind.Borrowed &&
		!t.Class.HasAllocator
}
