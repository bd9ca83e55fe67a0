package helio

import "testing"

func TestModuleSet(t *testing.T) {
	var _ Registrar = (*ModuleSet)(nil)

	s := NewModuleSet()
	proto := &TypeProto{Name: "grid"}
	s.RegisterType("geom", proto)
	s.RegisterFunc("geom", "dot", func(args ...Object) (Object, error) {
		return NewFloat(AsFloat(args[0]) * AsFloat(args[1])), nil
	})
	s.RegisterConst("geom", "pi", NewFloat(3.14159))
	s.RegisterConst("util", "version", NewStr("1"))

	if got := s.Names(); len(got) != 2 || got[0] != "geom" || got[1] != "util" {
		t.Fatalf("Names() = %v", got)
	}

	ns, ok := s.Module("geom")
	if !ok {
		t.Fatal("geom module not registered")
	}
	if ns.Types["grid"] != proto {
		t.Fatal("proto lost on registration")
	}

	got, err := ns.Call("dot", NewFloat(2), NewFloat(3))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if AsFloat(got) != 6 {
		t.Fatalf("dot(2, 3) = %v, want 6", got)
	}
	if _, err := ns.Call("cross"); err == nil {
		t.Fatal("expected error for unregistered function")
	}

	pi, ok := ns.Const("pi")
	if !ok || AsFloat(pi) != 3.14159 {
		t.Fatalf("Const(pi) = %v, %v", pi, ok)
	}
}
