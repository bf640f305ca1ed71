package table

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML builds an explicitly tagged node so integers and floats keep their kind.
// Unlike JSON, YAML can represent NaN and infinities.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.yamlNode(), nil
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.str}
	case KindInteger:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.num, 10)}
	case KindFloat:
		var s string
		switch {
		case math.IsNaN(v.flt):
			s = ".nan"
		case math.IsInf(v.flt, 1):
			s = ".inf"
		case math.IsInf(v.flt, -1):
			s = "-.inf"
		default:
			s = formatFloat(v.flt)
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
	case KindBoolean:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range sortedKeys(v.obj) {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				v.obj[k].yamlNode(),
			)
		}
		return n
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.arr {
			n.Content = append(n.Content, e.yamlNode())
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// UnmarshalYAML reads any YAML node into a Value
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	val, err := valueFromYAML(node)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func valueFromYAML(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NullValue(), nil
		}
		return valueFromYAML(node.Content[0])
	case yaml.AliasNode:
		return valueFromYAML(node.Alias)
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return NullValue(), nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return Value{}, err
			}
			return BoolValue(b), nil
		case "!!int":
			var i int64
			if err := node.Decode(&i); err == nil {
				return IntValue(i), nil
			}
			// out of int64 range
			var f float64
			if err := node.Decode(&f); err != nil {
				return Value{}, err
			}
			return FloatValue(f), nil
		case "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return Value{}, err
			}
			return FloatValue(f), nil
		default:
			return StringValue(node.Value), nil
		}
	case yaml.MappingNode:
		m := make(map[string]Value, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			val, err := valueFromYAML(node.Content[i+1])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			m[key] = val
		}
		return ObjectValue(m), nil
	case yaml.SequenceNode:
		a := make([]Value, 0, len(node.Content))
		for _, c := range node.Content {
			val, err := valueFromYAML(c)
			if err != nil {
				return Value{}, err
			}
			a = append(a, val)
		}
		return ArrayValue(a), nil
	default:
		return Value{}, fmt.Errorf("yaml: unsupported node kind %d", node.Kind)
	}
}
