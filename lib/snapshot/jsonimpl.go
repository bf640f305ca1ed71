package snapshot

import (
	"bytes"
	"encoding/json"

	"github.com/ValentinKolb/tStore/lib/table"
)

type jsonCodec struct{}

// NewJSONCodec returns the default codec. The output is indented so the file stays
// readable and diffable.
func NewJSONCodec() ICodec {
	return &jsonCodec{}
}

func (c *jsonCodec) Name() string { return "json" }

func (c *jsonCodec) Encode(tables map[string]*table.Table) ([]byte, error) {
	return json.MarshalIndent(toDocument(tables), "", "  ")
}

func (c *jsonCodec) Decode(data []byte) (map[string]*table.Table, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return fromList(doc.Version, doc.Tables)
}
