package table

import (
	"bytes"
	"errors"
	"testing"
)

// nestedArrays encodes depth arrays, each holding the next one, around a null
func nestedArrays(depth int) []byte {
	b := bytes.Repeat([]byte{byte(KindArray), 1}, depth)
	return append(b, byte(KindNull))
}

func TestBinaryNestingLimit(t *testing.T) {
	r := NewBinaryReader(nestedArrays(MaxNestingDepth))
	v := r.Value()
	if r.Err() != nil {
		t.Fatalf("Expected %d levels to decode, got %v", MaxNestingDepth, r.Err())
	}
	if v.Kind() != KindArray {
		t.Errorf("Expected an array, got %s", v.Kind())
	}

	// far deeper than any stack could hold without the limit
	r = NewBinaryReader(nestedArrays(5_000_000))
	r.Value()
	if !errors.Is(r.Err(), ErrTooDeep) {
		t.Errorf("Expected ErrTooDeep, got %v", r.Err())
	}

	// the same payload inside a row and through gob
	w := NewBinaryWriter(16)
	w.Uvarint(1)
	w.Str("deep")
	w.Raw(nestedArrays(MaxNestingDepth + 1))
	r = NewBinaryReader(w.Bytes())
	r.Row()
	if !errors.Is(r.Err(), ErrTooDeep) {
		t.Errorf("Expected ErrTooDeep for a row, got %v", r.Err())
	}

	var v2 Value
	if err := v2.GobDecode(nestedArrays(MaxNestingDepth + 1)); !errors.Is(err, ErrTooDeep) {
		t.Errorf("Expected ErrTooDeep from GobDecode, got %v", err)
	}
}

func TestCheckEncoding(t *testing.T) {
	if err := sampleRow().CheckEncoding(); err != nil {
		t.Errorf("Expected sample row to pass, got %v", err)
	}

	invalid := []Row{
		{"s": StringValue("ok\xff")},
		{"k\xfe": IntValue(1)},
		{"o": ObjectValue(map[string]Value{"x\xff": NullValue()})},
		{"a": ArrayValue([]Value{StringValue("\xc3")})},
	}
	for i, row := range invalid {
		if err := row.CheckEncoding(); !errors.Is(err, ErrInvalidUTF8) {
			t.Errorf("Row %d: expected ErrInvalidUTF8, got %v", i, err)
		}
	}

	deep := NullValue()
	for i := 0; i < MaxNestingDepth; i++ {
		deep = ObjectValue(map[string]Value{"n": deep})
	}
	if err := (Row{"d": deep}).CheckEncoding(); err != nil {
		t.Errorf("Expected %d levels to pass, got %v", MaxNestingDepth, err)
	}
	deep = ArrayValue([]Value{deep})
	if err := (Row{"d": deep}).CheckEncoding(); !errors.Is(err, ErrTooDeep) {
		t.Errorf("Expected ErrTooDeep, got %v", err)
	}
}

func TestTableCheckRejectsInvalidUTF8(t *testing.T) {
	tbl := New("users", []Column{{Name: "name", Kind: ColumnKindString}})
	tbl.Rows = append(tbl.Rows, Row{"name": StringValue("\xff")})
	if err := tbl.Check(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}

	tbl = New("bad\xff", nil)
	if err := tbl.Check(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8 for the name, got %v", err)
	}

	if err := (Schema{{Name: "c\xff", Kind: ColumnKindString}}).Check(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8 for a column name, got %v", err)
	}
}
