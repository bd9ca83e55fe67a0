package bind

import (
	"fmt"
	"sort"
	"strings"
)

// Registered records one wrapped class visible to the classifier: the
// class itself, the module that declared it, and the protocol-table
// symbol its glue exports.
type Registered struct {
	Class  *Class
	Module string
	Symbol string
}

// Registry maps native type names to their wrapped-class registrations
// for one generation run. It is constructed per run and shared
// read-only across targets after each target's build step, which is
// how cross-module references from previously generated targets
// resolve. There is no process-wide registration.
type Registry struct {
	types map[string]*Registered
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: map[string]*Registered{}}
}

// Add registers a class under its native type name. Two classes with
// the same native name, even across targets, are a conflict: the
// classifier matches names exactly and could not tell them apart.
func (r *Registry) Add(module string, c *Class) error {
	if prev, ok := r.types[c.Name]; ok {
		return fmt.Errorf("type %s already registered by module %s", c.Name, prev.Module)
	}
	r.types[c.Name] = &Registered{
		Class:  c,
		Module: module,
		Symbol: c.ProtoSymbol(),
	}
	return nil
}

// Lookup matches a native spelling, ignoring the pointer qualifier.
func (r *Registry) Lookup(spelling string) (*Registered, bool) {
	reg, ok := r.types[strings.TrimPrefix(spelling, "*")]
	return reg, ok
}

// LookupIn is Lookup restricted to classes declared by one module.
func (r *Registry) LookupIn(module, spelling string) (*Registered, bool) {
	reg, ok := r.Lookup(spelling)
	if !ok || reg.Module != module {
		return nil, false
	}
	return reg, true
}

// Names returns all registered native type names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
