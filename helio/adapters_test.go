package helio

import "testing"

func TestPrimitiveRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
		is   func(Object) bool
		back func(Object) Object
	}{
		{"int", NewInt(42), IsInt, func(o Object) Object { return AsInt(o) }},
		{"float", NewFloat(2.5), IsFloat, func(o Object) Object { return AsFloat(o) }},
		{"bool", NewBool(true), IsBool, func(o Object) Object { return AsBool(o) }},
		{"str", NewStr("vec"), IsStr, func(o Object) Object { return AsStr(o) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.is(tt.obj) {
				t.Fatalf("constructed %s handle fails its own presence test", tt.name)
			}
			if got := tt.back(tt.obj); got != tt.obj {
				t.Fatalf("round trip: got %v, want %v", got, tt.obj)
			}
		})
	}
}

func TestFloatAcceptsIntegral(t *testing.T) {
	o := NewInt(3)
	if !IsFloat(o) {
		t.Fatal("integral handle should satisfy the floating presence test")
	}
	if got := AsFloat(o); got != 3.0 {
		t.Fatalf("AsFloat(int 3) = %v, want 3.0", got)
	}
	if IsInt(NewFloat(3.0)) {
		t.Fatal("floating handle must not satisfy the integral presence test")
	}
}

func TestPresenceTestsAreExclusive(t *testing.T) {
	objs := map[string]Object{
		"int":  NewInt(1),
		"bool": NewBool(false),
		"str":  NewStr("x"),
	}
	if IsBool(objs["int"]) || IsStr(objs["int"]) {
		t.Fatal("integral handle leaked into another category")
	}
	if IsInt(objs["bool"]) || IsFloat(objs["bool"]) {
		t.Fatal("boolean handle leaked into a numeric category")
	}
	if IsFloat(objs["str"]) || IsBool(objs["str"]) {
		t.Fatal("text handle leaked into another category")
	}
}

func TestWrappedRoundTrips(t *testing.T) {
	proto := &TypeProto{Name: "vec3"}
	type vec struct{ x, y, z float64 }

	t.Run("borrow", func(t *testing.T) {
		v := &vec{1, 2, 3}
		o := Object(Borrow(proto, v))
		if !IsInstanceOf(o, proto) {
			t.Fatal("borrowed handle fails presence test")
		}
		if AsWrapped(o).Value.(*vec) != v {
			t.Fatal("extraction must return the borrowed pointer identically")
		}
		if AsWrapped(o).Owned() {
			t.Fatal("borrowed wrapper must not own its value")
		}
	})

	t.Run("copy", func(t *testing.T) {
		v := vec{1, 2, 3}
		o := Object(Copy(proto, v))
		if !IsInstanceOf(o, proto) {
			t.Fatal("copied handle fails presence test")
		}
		// Value must hold a pointer so the extraction form glue uses
		// works for every ownership mode.
		got := *AsWrapped(o).Value.(*vec)
		if got != v {
			t.Fatalf("copied value diverged: %v != %v", got, v)
		}
		v.x = 99
		if AsWrapped(o).Value.(*vec).x == 99 {
			t.Fatal("mutating the source must not reach the copy")
		}
	})

	t.Run("other proto", func(t *testing.T) {
		other := &TypeProto{Name: "mat4"}
		if IsInstanceOf(Borrow(proto, &vec{}), other) {
			t.Fatal("presence test must discriminate on the proto identity")
		}
	})
}

func TestFromTransient(t *testing.T) {
	type vec struct{ x float64 }
	proto := &TypeProto{
		Name:  "vec3",
		Alloc: func(v any) any { c := v.(vec); return &c },
	}

	src := vec{x: 7}
	w, err := FromTransient(proto, src)
	if err != nil {
		t.Fatalf("FromTransient: %v", err)
	}
	if !w.Owned() {
		t.Fatal("allocator-backed wrapper must own its duplicate")
	}
	got := w.Value.(*vec)
	if got.x != 7 {
		t.Fatalf("duplicate lost state: %+v", got)
	}
	src.x = 0
	if got.x != 7 {
		t.Fatal("duplicate must be independent of the transient source")
	}

	bare := &TypeProto{Name: "vec3"}
	if _, err := FromTransient(bare, src); err == nil {
		t.Fatal("expected error when no allocator is registered")
	}
}

func TestRelease(t *testing.T) {
	dropped := 0
	proto := &TypeProto{Name: "res", Drop: func(any) { dropped++ }}

	w := Adopt(proto, &struct{}{})
	w.Release()
	w.Release()
	if dropped != 1 {
		t.Fatalf("owned value dropped %d times, want 1", dropped)
	}

	Borrow(proto, &struct{}{}).Release()
	if dropped != 1 {
		t.Fatal("releasing a borrowed wrapper must not drop the native value")
	}
}
