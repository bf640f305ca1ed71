package table

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer is returned by BinaryReader when the input ends in the middle of a value
var ErrShortBuffer = errors.New("binary: unexpected end of data")

// maxPrealloc caps allocations driven by length prefixes read from untrusted input
const maxPrealloc = 1 << 16


// --------------------------------------------------------------------------
// Binary Writer
// --------------------------------------------------------------------------

// BinaryWriter appends values in a compact binary form.
// Lengths and integers are varint encoded, floats are stored as IEEE 754 bits.
// Object keys are written in sorted order so equal values produce equal bytes.
type BinaryWriter struct {
	buf []byte
}

// NewBinaryWriter creates a writer with the given initial capacity
func NewBinaryWriter(capacity int) *BinaryWriter {
	return &BinaryWriter{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written data
func (w *BinaryWriter) Bytes() []byte { return w.buf }

// Len returns the number of written bytes
func (w *BinaryWriter) Len() int { return len(w.buf) }

func (w *BinaryWriter) Byte(b byte) { w.buf = append(w.buf, b) }

func (w *BinaryWriter) Raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *BinaryWriter) Uvarint(u uint64) { w.buf = binary.AppendUvarint(w.buf, u) }

func (w *BinaryWriter) Varint(i int64) { w.buf = binary.AppendVarint(w.buf, i) }

func (w *BinaryWriter) Uint64(u uint64) { w.buf = binary.BigEndian.AppendUint64(w.buf, u) }

func (w *BinaryWriter) Bool(b bool) {
	if b {
		w.Byte(1)
	} else {
		w.Byte(0)
	}
}

// Str writes a length prefixed string
func (w *BinaryWriter) Str(s string) {
	w.Uvarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// Value writes a kind tag followed by the payload
func (w *BinaryWriter) Value(v Value) {
	w.Byte(byte(v.kind))
	switch v.kind {
	case KindString:
		w.Str(v.str)
	case KindInteger:
		w.Varint(v.num)
	case KindFloat:
		w.Uint64(math.Float64bits(v.flt))
	case KindBoolean:
		w.Bool(v.b)
	case KindObject:
		w.Uvarint(uint64(len(v.obj)))
		for _, k := range sortedKeys(v.obj) {
			w.Str(k)
			w.Value(v.obj[k])
		}
	case KindArray:
		w.Uvarint(uint64(len(v.arr)))
		for _, e := range v.arr {
			w.Value(e)
		}
	}
}

// Row writes a row as an object without the kind tag
func (w *BinaryWriter) Row(r Row) {
	w.Uvarint(uint64(len(r)))
	for _, k := range sortedKeys(r) {
		w.Str(k)
		w.Value(r[k])
	}
}

// Columns writes a column list in declaration order
func (w *BinaryWriter) Columns(cols []Column) {
	w.Uvarint(uint64(len(cols)))
	for _, c := range cols {
		w.Str(c.Name)
		w.Byte(byte(c.Kind))
	}
}

// --------------------------------------------------------------------------
// Binary Reader
// --------------------------------------------------------------------------

// BinaryReader reads data written by BinaryWriter.
// The first error is sticky: all following reads return zero values and Err reports it.
type BinaryReader struct {
	data  []byte
	pos   int
	err   error
	depth int
}

// NewBinaryReader creates a reader over data
func NewBinaryReader(data []byte) *BinaryReader {
	return &BinaryReader{data: data}
}

// Err returns the first error encountered
func (r *BinaryReader) Err() error { return r.err }

// Remaining returns the number of unread bytes
func (r *BinaryReader) Remaining() int { return len(r.data) - r.pos }

func (r *BinaryReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *BinaryReader) Byte() byte {
	if r.err != nil {
		return 0
	}
	if r.pos >= len(r.data) {
		r.fail(ErrShortBuffer)
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

// Raw reads exactly n bytes. The returned slice aliases the input.
func (r *BinaryReader) Raw(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.fail(ErrShortBuffer)
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *BinaryReader) Uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	u, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		r.fail(ErrShortBuffer)
		return 0
	}
	r.pos += n
	return u
}

func (r *BinaryReader) Varint() int64 {
	if r.err != nil {
		return 0
	}
	i, n := binary.Varint(r.data[r.pos:])
	if n <= 0 {
		r.fail(ErrShortBuffer)
		return 0
	}
	r.pos += n
	return i
}

func (r *BinaryReader) Uint64() uint64 {
	b := r.Raw(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *BinaryReader) Bool() bool {
	return r.Byte() != 0
}

// length reads a length prefix and checks it against the remaining input
func (r *BinaryReader) length() int {
	n := r.Uvarint()
	if r.err != nil {
		return 0
	}
	if n > uint64(r.Remaining()) {
		r.fail(fmt.Errorf("binary: length %d exceeds remaining %d bytes", n, r.Remaining()))
		return 0
	}
	return int(n)
}

func (r *BinaryReader) Str() string {
	n := r.length()
	return string(r.Raw(n))
}

func (r *BinaryReader) Value() Value {
	kind := ValueKind(r.Byte())
	if r.err != nil {
		return Value{}
	}
	switch kind {
	case KindNull:
		return NullValue()
	case KindString:
		return StringValue(r.Str())
	case KindInteger:
		return IntValue(r.Varint())
	case KindFloat:
		return FloatValue(math.Float64frombits(r.Uint64()))
	case KindBoolean:
		return BoolValue(r.Bool())
	case KindObject:
		if !r.enter() {
			return Value{}
		}
		defer r.leave()
		n := r.length()
		m := make(map[string]Value, min(n, maxPrealloc))
		for i := 0; i < n && r.err == nil; i++ {
			k := r.Str()
			m[k] = r.Value()
		}
		return ObjectValue(m)
	case KindArray:
		if !r.enter() {
			return Value{}
		}
		defer r.leave()
		n := r.length()
		a := make([]Value, 0, min(n, maxPrealloc))
		for i := 0; i < n && r.err == nil; i++ {
			a = append(a, r.Value())
		}
		return ArrayValue(a)
	default:
		r.fail(fmt.Errorf("binary: unknown value kind %d", kind))
		return Value{}
	}
}

// enter descends into an object or array and fails once MaxNestingDepth is exceeded
func (r *BinaryReader) enter() bool {
	r.depth++
	if r.depth > MaxNestingDepth {
		r.depth--
		r.fail(ErrTooDeep)
		return false
	}
	return true
}

func (r *BinaryReader) leave() { r.depth-- }

func (r *BinaryReader) Row() Row {
	n := r.length()
	row := make(Row, min(n, maxPrealloc))
	for i := 0; i < n && r.err == nil; i++ {
		k := r.Str()
		row[k] = r.Value()
	}
	return row
}

func (r *BinaryReader) Columns() []Column {
	n := r.length()
	cols := make([]Column, 0, min(n, maxPrealloc))
	for i := 0; i < n && r.err == nil; i++ {
		name := r.Str()
		kind := ColumnKind(r.Byte())
		if r.err == nil && !kind.Valid() {
			r.fail(fmt.Errorf("binary: invalid column kind %d for column %q", kind, name))
		}
		cols = append(cols, Column{Name: name, Kind: kind})
	}
	return cols
}

// --------------------------------------------------------------------------
// gob support
// --------------------------------------------------------------------------

// GobEncode implements gob.GobEncoder using the binary form
func (v Value) GobEncode() ([]byte, error) {
	w := NewBinaryWriter(16)
	w.Value(v)
	return w.Bytes(), nil
}

// GobDecode implements gob.GobDecoder
func (v *Value) GobDecode(data []byte) error {
	r := NewBinaryReader(data)
	val := r.Value()
	if r.Err() != nil {
		return r.Err()
	}
	*v = val
	return nil
}
