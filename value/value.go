// Package value implements AgentValue: a tagged, immutable union with
// copy-on-write containers and a total JSON bridge.
package value

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/amurg-ai/streamkit/internal/errs"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindUnit Kind = iota
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindImage
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindImage:
		return "image"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged immutable value. Zero value is Unit.
//
// Array and Object hold a pointer to their backing storage. The mutator
// Set never modifies storage reachable from another Value; it always
// allocates a fresh backing store and returns a new Value over it, which
// gives the same observable copy-on-write guarantee as a refcounted
// clone-on-write container without needing refcounting in Go.
type Value struct {
	kind Kind
	b    bool
	i    int64
	n    float64
	s    string
	img  *Image
	arr  *[]Value
	obj  *map[string]Value
}

// Unit returns the unit value.
func Unit() Value { return Value{kind: KindUnit} }

// Boolean returns a boolean value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Integer returns an integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Number returns a floating point value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ImageValue returns an image value.
func ImageValue(img Image) Value { return Value{kind: KindImage, img: &img} }

// Array returns an array value backed by a copy of items.
func Array(items []Value) Value {
	cp := append([]Value(nil), items...)
	return Value{kind: KindArray, arr: &cp}
}

// Object returns an object value backed by a copy of m.
func Object(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindObject, obj: &cp}
}

// Defaults mirroring the teacher's per-kind zero values.
func BooleanDefault() Value { return Boolean(false) }
func IntegerDefault() Value { return Integer(0) }
func NumberDefault() Value  { return Number(0) }
func StringDefault() Value  { return String("") }
func ArrayDefault() Value   { return Array(nil) }
func ObjectDefault() Value  { return Object(nil) }

// Kind-test predicates.
func (v Value) IsUnit() bool    { return v.kind == KindUnit }
func (v Value) IsBoolean() bool { return v.kind == KindBoolean }
func (v Value) IsInteger() bool { return v.kind == KindInteger }
func (v Value) IsNumber() bool  { return v.kind == KindNumber }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsImage() bool   { return v.kind == KindImage }
func (v Value) IsArray() bool   { return v.kind == KindArray }
func (v Value) IsObject() bool  { return v.kind == KindObject }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload, if present.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

// AsInt64 returns the value as an int64, truncating Number toward zero.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindInteger:
		return v.i, true
	case KindNumber:
		return int64(v.n), true
	default:
		return 0, false
	}
}

// AsFloat64 returns the value as a float64.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindNumber:
		return v.n, true
	default:
		return 0, false
	}
}

// AsString returns the string payload, if present.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsImage returns the image payload, if present.
func (v Value) AsImage() (Image, bool) {
	if v.kind != KindImage {
		return Image{}, false
	}
	return *v.img, true
}

// AsArray returns a read-only view of the array payload.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return *v.arr, true
}

// AsObject returns a read-only view of the object payload.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return *v.obj, true
}

// Get returns a field of an object value.
func (v Value) Get(key string) (Value, bool) {
	obj, ok := v.AsObject()
	if !ok {
		return Value{}, false
	}
	child, ok := obj[key]
	return child, ok
}

func (v Value) GetBool(key string) (bool, bool) {
	if c, ok := v.Get(key); ok {
		return c.AsBool()
	}
	return false, false
}

func (v Value) GetInt64(key string) (int64, bool) {
	if c, ok := v.Get(key); ok {
		return c.AsInt64()
	}
	return 0, false
}

func (v Value) GetFloat64(key string) (float64, bool) {
	if c, ok := v.Get(key); ok {
		return c.AsFloat64()
	}
	return 0, false
}

func (v Value) GetString(key string) (string, bool) {
	if c, ok := v.Get(key); ok {
		return c.AsString()
	}
	return "", false
}

func (v Value) GetArray(key string) ([]Value, bool) {
	if c, ok := v.Get(key); ok {
		return c.AsArray()
	}
	return nil, false
}

func (v Value) GetObject(key string) (map[string]Value, bool) {
	if c, ok := v.Get(key); ok {
		return c.AsObject()
	}
	return nil, false
}

// Set returns a new object value with key bound to val, copy-on-write.
// Called on a non-object value it returns InvalidValue.
func (v Value) Set(key string, val Value) (Value, error) {
	if v.kind != KindObject {
		return Value{}, errs.New(errs.InvalidValue, "set called on non-object value %s", v.kind)
	}
	cp := make(map[string]Value, len(*v.obj)+1)
	for k, existing := range *v.obj {
		cp[k] = existing
	}
	cp[key] = val
	return Value{kind: KindObject, obj: &cp}, nil
}

// Equal reports structural equality. Images compare by dimensions and pixels.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUnit:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindInteger:
		return a.i == b.i
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindImage:
		return a.img.Width == b.img.Width && a.img.Height == b.img.Height && bytesEqual(a.img.Pixels, b.img.Pixels)
	case KindArray:
		aa, bb := *a.arr, *b.arr
		if len(aa) != len(bb) {
			return false
		}
		for i := range aa {
			if !Equal(aa[i], bb[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := *a.obj, *b.obj
		if len(ao) != len(bo) {
			return false
		}
		for k, av := range ao {
			bv, ok := bo[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ToJSON converts v to a generic JSON-compatible tree (map[string]any,
// []any, string, float64/int64, bool, nil), suitable for json.Marshal.
func (v Value) ToJSON() any {
	switch v.kind {
	case KindUnit:
		return nil
	case KindBoolean:
		return v.b
	case KindInteger:
		return v.i
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindImage:
		return v.img.toDataURL()
	case KindArray:
		out := make([]any, len(*v.arr))
		for i, e := range *v.arr {
			out[i] = e.ToJSON()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(*v.obj))
		for k, e := range *v.obj {
			out[k] = e.ToJSON()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler with stable key ordering.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindUnit:
		return []byte("null"), nil
	case KindBoolean:
		return json.Marshal(v.b)
	case KindInteger:
		return json.Marshal(v.i)
	case KindNumber:
		return json.Marshal(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindImage:
		return json.Marshal(v.img.toDataURL())
	case KindArray:
		return json.Marshal(*v.arr)
	case KindObject:
		keys := make([]string, 0, len(*v.obj))
		for k := range *v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf []byte
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := json.Marshal((*v.obj)[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler by decoding with
// encoding/json and converting the tree with FromJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromJSON(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// FromJSONBytes parses a JSON document directly into a Value.
func FromJSONBytes(data []byte) (Value, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Value{}, errs.Wrap(errs.JSONParseError, err, "decode json")
	}
	return FromJSON(raw)
}

// FromJSON converts a generic JSON tree (as produced by encoding/json,
// ideally decoded with UseNumber for integer fidelity) into a Value.
// JSON numbers with an exact integer representation become Integer,
// otherwise Number. Strings with the image data-URL prefix decode to
// Image.
func FromJSON(raw any) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Unit(), nil
	case bool:
		return Boolean(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Integer(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, errs.New(errs.InvalidValue, "invalid numeric value %q", string(t))
		}
		if float64(int64(f)) == f {
			return Integer(int64(f)), nil
		}
		return Number(f), nil
	case float64:
		if float64(int64(t)) == t {
			return Integer(int64(t)), nil
		}
		return Number(t), nil
	case string:
		if img, ok := decodeImageDataURL(t); ok {
			return ImageValue(img), nil
		}
		return String(t), nil
	case []any:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Array(items), nil
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := FromJSON(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = v
		}
		return Object(m), nil
	default:
		return Value{}, errs.New(errs.InvalidValue, "unsupported json type %T", raw)
	}
}

