package table

import (
	"encoding/json"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValueJSON(t *testing.T) {
	tests := []struct {
		in   string
		kind ValueKind
		out  string
	}{
		{`5`, KindInteger, `5`},
		{`-42`, KindInteger, `-42`},
		{`5.0`, KindFloat, `5.0`},
		{`5.5`, KindFloat, `5.5`},
		{`1e3`, KindFloat, `1000.0`},
		{`9223372036854775808`, KindFloat, `9.223372036854776e+18`},
		{`"hello"`, KindString, `"hello"`},
		{`true`, KindBoolean, `true`},
		{`null`, KindNull, `null`},
		{`[1,2.5,"x"]`, KindArray, `[1,2.5,"x"]`},
		{`{"b":1,"a":{"c":false}}`, KindObject, `{"a":{"c":false},"b":1}`},
	}

	for _, tt := range tests {
		var v Value
		if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tt.in, err)
			continue
		}
		if v.Kind() != tt.kind {
			t.Errorf("Unmarshal(%s): expected kind %s, got %s", tt.in, tt.kind, v.Kind())
		}
		out, err := json.Marshal(v)
		if err != nil {
			t.Errorf("Marshal(%s) failed: %v", tt.in, err)
			continue
		}
		if string(out) != tt.out {
			t.Errorf("Marshal(%s): expected %s, got %s", tt.in, tt.out, out)
		}
	}
}

func TestValueJSONRejectsNaN(t *testing.T) {
	if _, err := json.Marshal(FloatValue(math.NaN())); err == nil {
		t.Errorf("Expected error when marshalling NaN")
	}
	if _, err := json.Marshal(FloatValue(math.Inf(-1))); err == nil {
		t.Errorf("Expected error when marshalling -Inf")
	}
}

func TestValueEqual(t *testing.T) {
	if IntValue(1).Equal(FloatValue(1)) {
		t.Errorf("Integer 1 must not equal Float 1.0")
	}
	if !FloatValue(math.NaN()).Equal(FloatValue(math.NaN())) {
		t.Errorf("NaN must equal NaN")
	}
	a := MustFromAny(map[string]any{"x": []any{1, "y"}, "z": nil})
	b := MustFromAny(map[string]any{"z": nil, "x": []any{1, "y"}})
	if !a.Equal(b) {
		t.Errorf("Expected %s to equal %s", a, b)
	}
	c := MustFromAny(map[string]any{"x": []any{1, "z"}, "z": nil})
	if a.Equal(c) {
		t.Errorf("Expected %s to differ from %s", a, c)
	}
	if NullValue().Equal(StringValue("")) {
		t.Errorf("Null must not equal the empty string")
	}
}

func TestValueClone(t *testing.T) {
	orig := MustFromAny(map[string]any{"inner": map[string]any{"n": 1}, "list": []any{1, 2}})
	clone := orig.Clone()

	obj, _ := clone.Object()
	inner, _ := obj["inner"].Object()
	inner["n"] = IntValue(99)
	list, _ := obj["list"].Array()
	list[0] = StringValue("changed")

	origObj, _ := orig.Object()
	origInner, _ := origObj["inner"].Object()
	if n, _ := origInner["n"].Int(); n != 1 {
		t.Errorf("Modifying a clone changed the original object: n=%d", n)
	}
	origList, _ := origObj["list"].Array()
	if n, ok := origList[0].Int(); !ok || n != 1 {
		t.Errorf("Modifying a clone changed the original array: %s", origList[0])
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		in   any
		kind ValueKind
	}{
		{nil, KindNull},
		{"s", KindString},
		{true, KindBoolean},
		{7, KindInteger},
		{int32(-7), KindInteger},
		{uint64(7), KindInteger},
		{uint64(math.MaxUint64), KindFloat},
		{float32(1.5), KindFloat},
		{3.0, KindFloat},
		{json.Number("12"), KindInteger},
		{json.Number("12.0"), KindFloat},
		{[]any{1}, KindArray},
		{map[string]any{"a": 1}, KindObject},
		{IntValue(3), KindInteger},
	}
	for _, tt := range tests {
		v, err := FromAny(tt.in)
		if err != nil {
			t.Errorf("FromAny(%v) failed: %v", tt.in, err)
			continue
		}
		if v.Kind() != tt.kind {
			t.Errorf("FromAny(%v): expected kind %s, got %s", tt.in, tt.kind, v.Kind())
		}
	}

	if _, err := FromAny(struct{}{}); err == nil {
		t.Errorf("Expected error for unsupported type")
	}
	if _, err := FromAny(map[string]any{"bad": make(chan int)}); err == nil {
		t.Errorf("Expected error for nested unsupported type")
	}
}

func TestValueYAML(t *testing.T) {
	row := Row{
		"str":     StringValue("123"),
		"int":     IntValue(5),
		"float":   FloatValue(5),
		"nan":     FloatValue(math.NaN()),
		"inf":     FloatValue(math.Inf(1)),
		"bool":    BoolValue(false),
		"null":    NullValue(),
		"list":    ArrayValue([]Value{IntValue(1), FloatValue(2.5)}),
		"object":  MustFromAny(map[string]any{"nested": "yes"}),
		"bignum":  IntValue(math.MinInt64),
		"boolstr": StringValue("true"),
	}

	out, err := yaml.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Row
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v\n%s", err, out)
	}

	if !row.Equal(decoded) {
		t.Errorf("YAML round trip changed the row:\n%s", out)
	}
	if decoded["float"].Kind() != KindFloat {
		t.Errorf("Expected float to stay a float, got %s", decoded["float"].Kind())
	}
	if decoded["str"].Kind() != KindString {
		t.Errorf("Expected quoted number to stay a string, got %s", decoded["str"].Kind())
	}
}
