package table

import (
	"bytes"
	"encoding/gob"
	"errors"
	"math"
	"testing"
)

func sampleRow() Row {
	return Row{
		"name":   StringValue("alice"),
		"age":    IntValue(-31),
		"score":  FloatValue(98.5),
		"whole":  FloatValue(3),
		"nan":    FloatValue(math.NaN()),
		"active": BoolValue(true),
		"meta":   MustFromAny(map[string]any{"tags": []any{"a", "b"}, "level": 2}),
		"empty":  ObjectValue(nil),
		"none":   NullValue(),
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	row := sampleRow()
	cols := []Column{{Name: "name", Kind: ColumnKindString}, {Name: "age", Kind: ColumnKindInteger}}

	w := NewBinaryWriter(64)
	w.Row(row)
	w.Columns(cols)
	w.Str("trailer")

	r := NewBinaryReader(w.Bytes())
	gotRow := r.Row()
	gotCols := r.Columns()
	trailer := r.Str()

	if r.Err() != nil {
		t.Fatalf("Unexpected error: %v", r.Err())
	}
	if r.Remaining() != 0 {
		t.Errorf("Expected all input to be consumed, %d bytes left", r.Remaining())
	}
	if !row.Equal(gotRow) {
		t.Errorf("Row changed during round trip: %v vs %v", row, gotRow)
	}
	if len(gotCols) != 2 || gotCols[0] != cols[0] || gotCols[1] != cols[1] {
		t.Errorf("Columns changed during round trip: %v", gotCols)
	}
	if trailer != "trailer" {
		t.Errorf("Expected trailer, got %q", trailer)
	}
}

func TestBinaryDeterministic(t *testing.T) {
	a := NewBinaryWriter(0)
	a.Row(sampleRow())
	b := NewBinaryWriter(0)
	b.Row(sampleRow())
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Errorf("Equal rows produced different encodings")
	}
}

func TestBinaryTruncated(t *testing.T) {
	w := NewBinaryWriter(0)
	w.Row(sampleRow())
	data := w.Bytes()

	for _, n := range []int{0, 1, len(data) / 2, len(data) - 1} {
		r := NewBinaryReader(data[:n])
		r.Row()
		if r.Err() == nil {
			t.Errorf("Expected error when reading %d of %d bytes", n, len(data))
		}
	}
}

func TestBinaryInvalidInput(t *testing.T) {
	r := NewBinaryReader([]byte{0xEE})
	r.Value()
	if r.Err() == nil {
		t.Errorf("Expected error for unknown value kind")
	}

	w := NewBinaryWriter(0)
	w.Uvarint(1)
	w.Str("col")
	w.Byte(42)
	r = NewBinaryReader(w.Bytes())
	r.Columns()
	if r.Err() == nil {
		t.Errorf("Expected error for invalid column kind")
	}

	// length prefix larger than the input
	w = NewBinaryWriter(0)
	w.Uvarint(1 << 40)
	r = NewBinaryReader(w.Bytes())
	r.Str()
	if r.Err() == nil {
		t.Errorf("Expected error for oversized length prefix")
	}

	// errors are sticky
	r = NewBinaryReader(nil)
	r.Byte()
	if !errors.Is(r.Err(), ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer, got %v", r.Err())
	}
	if r.Uvarint() != 0 || r.Str() != "" {
		t.Errorf("Expected zero values after an error")
	}
}

func TestValueGob(t *testing.T) {
	row := sampleRow()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(row); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var decoded Row
	if err := gob.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !row.Equal(decoded) {
		t.Errorf("Row changed during gob round trip")
	}
}
