package snapshot

import (
	"bytes"
	"fmt"

	"github.com/ValentinKolb/tStore/lib/table"
)

// binaryMagic starts every binary snapshot, followed by one version byte
var binaryMagic = []byte("TSTORE\x00")

type binaryCodec struct{}

// NewBinaryCodec returns the compact codec. Layout:
//
//	magic | version | table count | { id | name | columns | row count | rows... }
func NewBinaryCodec() ICodec {
	return &binaryCodec{}
}

func (c *binaryCodec) Name() string { return "binary" }

func (c *binaryCodec) Encode(tables map[string]*table.Table) ([]byte, error) {
	w := table.NewBinaryWriter(1024)
	w.Raw(binaryMagic)
	w.Byte(documentVersion)
	w.Uvarint(uint64(len(tables)))
	for _, t := range sortedTables(tables) {
		w.Str(t.ID)
		w.Str(t.Name)
		w.Columns(t.Columns)
		w.Uvarint(uint64(len(t.Rows)))
		for _, row := range t.Rows {
			w.Row(row)
		}
	}
	return w.Bytes(), nil
}

func (c *binaryCodec) Decode(data []byte) (map[string]*table.Table, error) {
	if !bytes.HasPrefix(data, binaryMagic) {
		return nil, fmt.Errorf("not a binary snapshot (bad magic)")
	}
	r := table.NewBinaryReader(data[len(binaryMagic):])
	version := int(r.Byte())

	count := r.Uvarint()
	var list []*table.Table
	for i := uint64(0); i < count && r.Err() == nil; i++ {
		t := &table.Table{
			ID:   r.Str(),
			Name: r.Str(),
		}
		t.Columns = r.Columns()
		rows := r.Uvarint()
		t.Rows = make([]table.Row, 0, min(rows, uint64(r.Remaining())))
		for j := uint64(0); j < rows && r.Err() == nil; j++ {
			t.Rows = append(t.Rows, r.Row())
		}
		list = append(list, t)
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after snapshot", r.Remaining())
	}
	return fromList(version, list)
}
