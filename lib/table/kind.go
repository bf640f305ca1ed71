package table

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// --------------------------------------------------------------------------
// Column Kind
// --------------------------------------------------------------------------

// ColumnKind is the declared kind of a column. It is fixed at table creation.
type ColumnKind uint8

const (
	ColumnKindUnknown ColumnKind = iota
	ColumnKindString
	ColumnKindInteger
	ColumnKindFloat
	ColumnKindBoolean
	ColumnKindObject
)

// String returns the enum name of the kind (e.g. "Integer")
func (k ColumnKind) String() string {
	switch k {
	case ColumnKindString:
		return "String"
	case ColumnKindInteger:
		return "Integer"
	case ColumnKindFloat:
		return "Float"
	case ColumnKindBoolean:
		return "Boolean"
	case ColumnKindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is one of the declarable kinds
func (k ColumnKind) Valid() bool {
	return k >= ColumnKindString && k <= ColumnKindObject
}

// ParseColumnKind converts the enum name of a kind into a ColumnKind.
// The comparison is case-insensitive.
func ParseColumnKind(s string) (ColumnKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return ColumnKindString, nil
	case "integer", "int":
		return ColumnKindInteger, nil
	case "float":
		return ColumnKindFloat, nil
	case "boolean", "bool":
		return ColumnKindBoolean, nil
	case "object":
		return ColumnKindObject, nil
	default:
		return ColumnKindUnknown, fmt.Errorf("unknown column kind: %q", s)
	}
}

// MarshalJSON writes the kind as its enum name
func (k ColumnKind) MarshalJSON() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid column kind %d", k)
	}
	return json.Marshal(k.String())
}

// UnmarshalJSON reads the kind from its enum name
func (k *ColumnKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColumnKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML writes the kind as its enum name
func (k ColumnKind) MarshalYAML() (interface{}, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid column kind %d", k)
	}
	return k.String(), nil
}

// UnmarshalYAML reads the kind from its enum name
func (k *ColumnKind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColumnKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
