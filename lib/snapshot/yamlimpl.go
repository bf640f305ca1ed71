package snapshot

import (
	"github.com/ValentinKolb/tStore/lib/table"
	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

// NewYAMLCodec returns a codec writing YAML documents.
// Unlike JSON it can hold NaN and infinite floats of undeclared row keys.
func NewYAMLCodec() ICodec {
	return &yamlCodec{}
}

func (c *yamlCodec) Name() string { return "yaml" }

func (c *yamlCodec) Encode(tables map[string]*table.Table) ([]byte, error) {
	return yaml.Marshal(toDocument(tables))
}

func (c *yamlCodec) Decode(data []byte) (map[string]*table.Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromList(doc.Version, doc.Tables)
}
