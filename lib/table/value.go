package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Value Kind
// --------------------------------------------------------------------------

// ValueKind is the dynamic kind carried by a Value
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindObject
	KindArray
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Value
// --------------------------------------------------------------------------

// Value is a dynamically typed row value. The zero Value is null.
//
// Null and Array values are never accepted for a declared column, they only exist
// so that undeclared keys of a row survive a round trip unchanged.
type Value struct {
	kind ValueKind
	str  string
	num  int64
	flt  float64
	b    bool
	obj  map[string]Value
	arr  []Value
}

func NullValue() Value { return Value{} }
func StringValue(s string) Value { return Value{kind: KindString, str: s} }
func IntValue(i int64) Value { return Value{kind: KindInteger, num: i} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, flt: f} }
func BoolValue(b bool) Value { return Value{kind: KindBoolean, b: b} }
func ArrayValue(a []Value) Value { return Value{kind: KindArray, arr: a} }
func ObjectValue(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindObject, obj: m}
}

// Kind returns the dynamic kind of the value
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Int returns the integer payload
func (v Value) Int() (int64, bool) { return v.num, v.kind == KindInteger }

// Float returns the float payload. Integers are not converted, see Number.
func (v Value) Float() (float64, bool) { return v.flt, v.kind == KindFloat }

// Bool returns the boolean payload
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBoolean }

// Object returns the object payload. The map must not be modified.
func (v Value) Object() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// Array returns the array payload. The slice must not be modified.
func (v Value) Array() ([]Value, bool) { return v.arr, v.kind == KindArray }

// Number returns the value as float64 if it is an integer or a float
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.num), true
	case KindFloat:
		return v.flt, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy of the value
func (v Value) Clone() Value {
	switch v.kind {
	case KindObject:
		m := make(map[string]Value, len(v.obj))
		for k, e := range v.obj {
			m[k] = e.Clone()
		}
		return Value{kind: KindObject, obj: m}
	case KindArray:
		a := make([]Value, len(v.arr))
		for i, e := range v.arr {
			a[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: a}
	default:
		return v
	}
}

// Equal reports whether both values have the same kind and the same payload.
// An integer never equals a float. NaN floats are equal to each other.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindInteger:
		return v.num == o.num
	case KindFloat:
		return v.flt == o.flt || (math.IsNaN(v.flt) && math.IsNaN(o.flt))
	case KindBoolean:
		return v.b == o.b
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, e := range v.obj {
			oe, ok := o.obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer using the JSON form of the value
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s %v>", v.kind, err)
	}
	return string(b)
}

// Interface converts the value into plain Go types
// (nil, string, int64, float64, bool, map[string]any, []any)
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindFloat:
		return v.flt
	case KindBoolean:
		return v.b
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			m[k] = e.Interface()
		}
		return m
	case KindArray:
		a := make([]any, len(v.arr))
		for i, e := range v.arr {
			a[i] = e.Interface()
		}
		return a
	default:
		return nil
	}
}

// FromAny converts plain Go values into a Value
func FromAny(in any) (Value, error) {
	switch x := in.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return x, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int8:
		return IntValue(int64(x)), nil
	case int16:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case uint8:
		return IntValue(int64(x)), nil
	case uint16:
		return IntValue(int64(x)), nil
	case uint32:
		return IntValue(int64(x)), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return FloatValue(float64(x)), nil
		}
		return IntValue(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return FloatValue(float64(x)), nil
		}
		return IntValue(int64(x)), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case json.Number:
		return parseNumber(string(x))
	case []Value:
		return ArrayValue(x), nil
	case map[string]Value:
		return ObjectValue(x), nil
	case []any:
		a := make([]Value, len(x))
		for i, e := range x {
			val, err := FromAny(e)
			if err != nil {
				return Value{}, err
			}
			a[i] = val
		}
		return ArrayValue(a), nil
	case map[string]any:
		m := make(map[string]Value, len(x))
		for k, e := range x {
			val, err := FromAny(e)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			m[k] = val
		}
		return ObjectValue(m), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", in)
	}
}

// MustFromAny is like FromAny but panics on error. Intended for literals in tests and examples.
func MustFromAny(in any) Value {
	v, err := FromAny(in)
	if err != nil {
		panic(err)
	}
	return v
}

// parseNumber decodes a JSON number literal. Literals with a fraction or exponent
// become floats, other literals become integers unless they overflow int64.
func parseNumber(s string) (Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntValue(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return FloatValue(f), nil
}

// formatFloat formats a float so that it is never read back as an integer
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") { // nN: NaN and Inf
		s += ".0"
	}
	return s
}

// sortedKeys returns the keys of an object in ascending order
func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// --------------------------------------------------------------------------
// JSON
// --------------------------------------------------------------------------

// MarshalJSON writes the value as plain JSON. Integral floats get a trailing ".0".
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindInteger:
		buf.WriteString(strconv.FormatInt(v.num, 10))
	case KindFloat:
		if math.IsNaN(v.flt) || math.IsInf(v.flt, 0) {
			return fmt.Errorf("json: unsupported float value %v", v.flt)
		}
		buf.WriteString(formatFloat(v.flt))
	case KindBoolean:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindObject:
		buf.WriteByte('{')
		for i, k := range sortedKeys(v.obj) {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.obj[k].appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("json: unknown value kind %d", v.kind)
	}
	return nil
}

// UnmarshalJSON reads any JSON value. See parseNumber for how numbers are typed.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	val, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}
