package value

import (
	"encoding/json"
	"testing"
)

func TestConstructorsAndPredicates(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"unit", Unit(), KindUnit},
		{"boolean", Boolean(true), KindBoolean},
		{"integer", Integer(42), KindInteger},
		{"number", Number(3.14), KindNumber},
		{"string", String("hi"), KindString},
		{"array", Array([]Value{Integer(1)}), KindArray},
		{"object", Object(map[string]Value{"a": Integer(1)}), KindObject},
	}
	for _, c := range cases {
		if c.v.Kind() != c.kind {
			t.Errorf("%s: kind = %v, want %v", c.name, c.v.Kind(), c.kind)
		}
	}
}

func TestSetRequiresObject(t *testing.T) {
	obj := Object(nil)
	updated, err := obj.Set("k", Integer(1))
	if err != nil {
		t.Fatalf("set on object failed: %v", err)
	}
	if got, ok := updated.GetInt64("k"); !ok || got != 1 {
		t.Fatalf("expected k=1, got %v ok=%v", got, ok)
	}
	// original must be unmodified (copy-on-write)
	if _, ok := obj.Get("k"); ok {
		t.Fatalf("original object was mutated")
	}

	notObj := Integer(5)
	if _, err := notObj.Set("k", Integer(1)); err == nil {
		t.Fatalf("expected error setting on non-object")
	}
}

func TestEqual(t *testing.T) {
	a := Object(map[string]Value{"x": Integer(1), "y": Array([]Value{String("a"), Boolean(true)})})
	b := Object(map[string]Value{"x": Integer(1), "y": Array([]Value{String("a"), Boolean(true)})})
	if !Equal(a, b) {
		t.Fatalf("expected equal values")
	}
	c := Object(map[string]Value{"x": Integer(2)})
	if Equal(a, c) {
		t.Fatalf("expected unequal values")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	values := []Value{
		Unit(),
		Boolean(true),
		Integer(42),
		Number(3.5),
		String("hello\nworld"),
		Array([]Value{Integer(1), String("two"), Boolean(true)}),
		Object(map[string]Value{"k1": String("v1"), "k2": Integer(2)}),
	}
	for _, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %v: %v", v, err)
		}
		roundtripped, err := FromJSONBytes(data)
		if err != nil {
			t.Fatalf("from json bytes: %v", err)
		}
		if !Equal(v, roundtripped) {
			t.Errorf("roundtrip mismatch: %v != %v (json=%s)", v, roundtripped, data)
		}
	}
}

func TestIntegerValuedNumberCanonicalizes(t *testing.T) {
	// A JSON float that happens to be integer-valued canonicalizes to Integer.
	v, err := FromJSONBytes([]byte("3.0"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !v.IsInteger() {
		t.Fatalf("expected integer-valued float to canonicalize, got kind=%v", v.Kind())
	}
	i, _ := v.AsInt64()
	if i != 3 {
		t.Fatalf("expected 3, got %d", i)
	}
}

func TestObjectJSONStableKeyOrder(t *testing.T) {
	v := Object(map[string]Value{"b": Integer(2), "a": Integer(1), "c": Integer(3)})
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":1,"b":2,"c":3}` {
		t.Fatalf("unexpected json: %s", data)
	}
}

func TestImageDataURLRoundTrip(t *testing.T) {
	img := NewImage(1, 1, []byte{10, 20, 30, 255})
	v := ImageValue(img)
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	roundtripped, err := FromJSONBytes(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if !roundtripped.IsImage() {
		t.Fatalf("expected image, got %v", roundtripped.Kind())
	}
	got, _ := roundtripped.AsImage()
	if got.Width != 1 || got.Height != 1 {
		t.Fatalf("unexpected image dims: %+v", got)
	}
}
