package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ValentinKolb/tStore/lib/table"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ICodec converts the full table map to bytes and back.
// Decode must reject input that does not describe a consistent set of tables.
type ICodec interface {
	// Name returns the format name (e.g. "json")
	Name() string
	// Encode serializes all tables into one document
	Encode(tables map[string]*table.Table) ([]byte, error)
	// Decode reads a document written by Encode
	Decode(data []byte) (map[string]*table.Table, error)
}

// Formats lists the names accepted by NewCodec
var Formats = []string{"json", "yaml", "gob", "binary"}

// NewCodec returns the codec for the given format name
func NewCodec(format string) (ICodec, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "gob":
		return NewGOBCodec(), nil
	case "binary", "bin":
		return NewBinaryCodec(), nil
	default:
		return nil, fmt.Errorf("unknown snapshot format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

// --------------------------------------------------------------------------
// Document
// --------------------------------------------------------------------------

// documentVersion is written into every snapshot document
const documentVersion = 1

// document is the layout shared by the text codecs.
// Tables are ordered by name so equal stores produce equal files.
type document struct {
	Version int            `json:"version" yaml:"version"`
	Tables  []*table.Table `json:"tables" yaml:"tables"`
}

// sortedTables returns the tables of the map ordered by name
func sortedTables(tables map[string]*table.Table) []*table.Table {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]*table.Table, 0, len(names))
	for _, name := range names {
		list = append(list, tables[name])
	}
	return list
}

// toDocument builds the document for the given tables
func toDocument(tables map[string]*table.Table) document {
	return document{Version: documentVersion, Tables: sortedTables(tables)}
}

// fromList checks every table and indexes them by name
func fromList(version int, list []*table.Table) (map[string]*table.Table, error) {
	if version != documentVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}
	tables := make(map[string]*table.Table, len(list))
	for i, t := range list {
		if t == nil {
			return nil, fmt.Errorf("table entry %d is empty", i)
		}
		if t.Rows == nil {
			t.Rows = []table.Row{}
		}
		if err := t.Check(); err != nil {
			return nil, err
		}
		if _, dup := tables[t.Name]; dup {
			return nil, fmt.Errorf("duplicate table '%s'", t.Name)
		}
		tables[t.Name] = t
	}
	return tables, nil
}
