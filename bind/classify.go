package bind

// primitiveCategories is the static table of recognized primitive
// spellings. Classification is an exact match against this table, not
// heuristic parsing.
var primitiveCategories = map[string]TypeCategory{
	"int":     CategoryIntegral,
	"int8":    CategoryIntegral,
	"int16":   CategoryIntegral,
	"int32":   CategoryIntegral,
	"int64":   CategoryIntegral,
	"uint":    CategoryIntegral,
	"uint8":   CategoryIntegral,
	"uint16":  CategoryIntegral,
	"uint32":  CategoryIntegral,
	"uint64":  CategoryIntegral,
	"byte":    CategoryIntegral,
	"rune":    CategoryIntegral,
	"float32": CategoryFloating,
	"float64": CategoryFloating,
	"bool":    CategoryBoolean,
	"string":  CategoryText,
}

// Classifier resolves type references against the static primitive
// table and the run's registry.
type Classifier struct {
	reg *Registry
}

// NewClassifier creates a classifier over reg.
func NewClassifier(reg *Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify resolves one type reference in place. Unsupported spellings
// are not an error here: they are deferred to emission time so every
// missing type in a target reports together.
func (c *Classifier) Classify(t *TypeRef) {
	if t.IsVoid() {
		return
	}
	base := t.BaseSpelling()
	if cat, ok := primitiveCategories[base]; ok {
		// pointer spellings only bind to wrapped classes
		if t.Form == FormPointer {
			t.Category = CategoryUnsupported
			return
		}
		t.Category = cat
		return
	}
	if reg, ok := c.reg.Lookup(base); ok {
		t.Category = CategoryWrapped
		t.Class = reg.Class
		return
	}
	t.Category = CategoryUnsupported
}

// Resolve classifies every type reference reachable from the module's
// exposed members: class properties, methods and operators, free
// functions, and module properties.
func (c *Classifier) Resolve(m *Module) {
	for _, p := range m.Properties {
		c.Classify(&p.Type)
	}
	for _, fn := range m.Functions {
		c.resolveFunction(fn)
	}
	for _, cls := range m.Classes {
		for _, p := range cls.Properties {
			c.Classify(&p.Type)
		}
		for _, fn := range cls.Methods {
			c.resolveFunction(fn)
		}
		for _, op := range cls.Operators {
			c.resolveFunction(op.Fn)
		}
	}
}

func (c *Classifier) resolveFunction(fn *Function) {
	for i := range fn.Params {
		c.Classify(&fn.Params[i].Type)
	}
	c.Classify(&fn.Return)
}
