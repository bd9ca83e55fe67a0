package helio

import "testing"

// grid is a small native type exercising every protocol slot the
// generated glue can bind.
type grid struct {
	name  string
	cells []int64
}

func gridProto() *TypeProto {
	p := &TypeProto{Name: "grid"}
	p.Attrs = map[string]*AttrSlot{
		"name": {
			Get: func(self *Wrapped) (Object, error) {
				return NewStr(self.Value.(*grid).name), nil
			},
			Set: func(self *Wrapped, v Object) error {
				if !IsStr(v) {
					return typeErrf(p, "set", "name wants text, got %T", v)
				}
				self.Value.(*grid).name = AsStr(v)
				return nil
			},
		},
		"size": {
			Get: func(self *Wrapped) (Object, error) {
				return NewInt(int64(len(self.Value.(*grid).cells))), nil
			},
		},
	}
	p.Methods = map[string]MethodFunc{
		"fill": func(self *Wrapped, args ...Object) (Object, error) {
			if len(args) != 1 || !IsInt(args[0]) {
				return nil, typeErrf(p, "call", "fill wants one integral argument")
			}
			g := self.Value.(*grid)
			for i := range g.cells {
				g.cells[i] = AsInt(args[0])
			}
			return None, nil
		},
	}
	p.Subscript = func(self *Wrapped, key, value Object) (Object, error) {
		if !IsInt(key) {
			return nil, typeErrf(p, "subscript", "key wants integral, got %T", key)
		}
		g := self.Value.(*grid)
		i := AsInt(key)
		if i < 0 || i >= int64(len(g.cells)) {
			return nil, typeErrf(p, "subscript", "index %d out of range", i)
		}
		if value == Sentinel {
			return NewInt(g.cells[i]), nil
		}
		if !IsInt(value) {
			return nil, typeErrf(p, "subscript", "element wants integral, got %T", value)
		}
		g.cells[i] = AsInt(value)
		return None, nil
	}
	p.Equals = func(a, b *Wrapped) (bool, error) {
		ga, gb := a.Value.(*grid), b.Value.(*grid)
		if len(ga.cells) != len(gb.cells) {
			return false, nil
		}
		for i := range ga.cells {
			if ga.cells[i] != gb.cells[i] {
				return false, nil
			}
		}
		return true, nil
	}
	return p
}

func TestAttrDispatch(t *testing.T) {
	proto := gridProto()
	o := Object(Borrow(proto, &grid{name: "a", cells: make([]int64, 4)}))

	got, err := GetAttr(o, "name")
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if AsStr(got) != "a" {
		t.Fatalf("name = %q, want %q", AsStr(got), "a")
	}

	if err := SetAttr(o, "name", NewStr("b")); err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	got, _ = GetAttr(o, "name")
	if AsStr(got) != "b" {
		t.Fatal("write did not reach the native field")
	}

	if err := SetAttr(o, "size", NewInt(9)); err == nil {
		t.Fatal("expected read-only rejection for size")
	}
	if _, err := GetAttr(o, "ghost"); err == nil {
		t.Fatal("expected missing-attribute error")
	}
	if _, err := GetAttr(NewInt(1), "name"); err == nil {
		t.Fatal("expected error for attribute access on a primitive")
	}
}

func TestCallDispatch(t *testing.T) {
	proto := gridProto()
	g := &grid{cells: make([]int64, 3)}
	o := Object(Borrow(proto, g))

	if _, err := Call(o, "fill", NewInt(7)); err != nil {
		t.Fatalf("Call: %v", err)
	}
	for i, c := range g.cells {
		if c != 7 {
			t.Fatalf("cell %d = %d after fill(7)", i, c)
		}
	}

	if _, err := Call(o, "fill", NewStr("x")); err == nil {
		t.Fatal("expected argument conversion failure")
	}
	if _, err := Call(o, "drain"); err == nil {
		t.Fatal("expected missing-method error")
	}
}

func TestSubscriptTwoModes(t *testing.T) {
	proto := gridProto()
	o := Object(Borrow(proto, &grid{cells: make([]int64, 2)}))

	// writes share the entry point with reads; the last write wins
	if _, err := Subscript(o, NewInt(1), NewInt(10)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Subscript(o, NewInt(1), NewInt(20)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Subscript(o, NewInt(1), Sentinel)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if AsInt(got) != 20 {
		t.Fatalf("read after two writes = %d, want 20", AsInt(got))
	}

	if _, err := Subscript(o, NewInt(5), Sentinel); err == nil {
		t.Fatal("expected out-of-range error")
	}
	plain := Object(Borrow(&TypeProto{Name: "opaque"}, &grid{}))
	if _, err := Subscript(plain, NewInt(0), Sentinel); err == nil {
		t.Fatal("expected unsubscriptable error")
	}
}

func TestEqualDispatch(t *testing.T) {
	proto := gridProto()
	a := Object(Borrow(proto, &grid{cells: []int64{1, 2}}))
	b := Object(Borrow(proto, &grid{cells: []int64{1, 2}}))
	c := Object(Borrow(proto, &grid{cells: []int64{1, 3}}))

	if eq, _ := Equal(a, b); !eq {
		t.Fatal("equal cell contents must compare equal")
	}
	if eq, _ := Equal(a, c); eq {
		t.Fatal("diverging cell contents must compare unequal")
	}
	if eq, _ := Equal(a, NewInt(1)); eq {
		t.Fatal("wrapped vs primitive must compare unequal without error")
	}
	other := Object(Borrow(&TypeProto{Name: "opaque"}, &grid{cells: []int64{1, 2}}))
	if eq, _ := Equal(a, other); eq {
		t.Fatal("handles of distinct protos must compare unequal")
	}
}
