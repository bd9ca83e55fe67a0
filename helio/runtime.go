package helio

import (
	"fmt"
	"sort"
)

// ModuleNS is one registered script-visible module: its wrapped types,
// free functions and constants, keyed by exposed name.
type ModuleNS struct {
	Name   string
	Types  map[string]*TypeProto
	Funcs  map[string]GlobalFunc
	Consts map[string]Object
}

// Call invokes a free function by exposed name.
func (ns *ModuleNS) Call(name string, args ...Object) (Object, error) {
	fn, ok := ns.Funcs[name]
	if !ok {
		return nil, fmt.Errorf("%s: no function %q", ns.Name, name)
	}
	return fn(args...)
}

// Const returns a registered constant by exposed name.
func (ns *ModuleNS) Const(name string) (Object, bool) {
	v, ok := ns.Consts[name]
	return v, ok
}

// ModuleSet is an in-memory Registrar. Hosts embedding the runtime can
// use it directly as the registration sink for generated Register
// functions; tests use it to drive generated bindings end to end.
type ModuleSet struct {
	modules map[string]*ModuleNS
}

// NewModuleSet creates an empty module set.
func NewModuleSet() *ModuleSet {
	return &ModuleSet{modules: map[string]*ModuleNS{}}
}

func (s *ModuleSet) ns(module string) *ModuleNS {
	m, ok := s.modules[module]
	if !ok {
		m = &ModuleNS{
			Name:   module,
			Types:  map[string]*TypeProto{},
			Funcs:  map[string]GlobalFunc{},
			Consts: map[string]Object{},
		}
		s.modules[module] = m
	}
	return m
}

// RegisterType implements Registrar.
func (s *ModuleSet) RegisterType(module string, proto *TypeProto) {
	s.ns(module).Types[proto.Name] = proto
}

// RegisterFunc implements Registrar.
func (s *ModuleSet) RegisterFunc(module, name string, fn GlobalFunc) {
	s.ns(module).Funcs[name] = fn
}

// RegisterConst implements Registrar.
func (s *ModuleSet) RegisterConst(module, name string, value Object) {
	s.ns(module).Consts[name] = value
}

// Module returns a registered module by name.
func (s *ModuleSet) Module(name string) (*ModuleNS, bool) {
	m, ok := s.modules[name]
	return m, ok
}

// Names returns the registered module names, sorted.
func (s *ModuleSet) Names() []string {
	names := make([]string, 0, len(s.modules))
	for n := range s.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
