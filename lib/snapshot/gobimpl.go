package snapshot

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/tStore/lib/table"
)

type gobCodec struct{}

// NewGOBCodec returns a codec using encoding/gob. Row values are written in the
// binary form of the table package.
func NewGOBCodec() ICodec {
	return &gobCodec{}
}

func (c *gobCodec) Name() string { return "gob" }

func (c *gobCodec) Encode(tables map[string]*table.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toDocument(tables)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *gobCodec) Decode(data []byte) (map[string]*table.Table, error) {
	var doc document
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, err
	}
	return fromList(doc.Version, doc.Tables)
}
