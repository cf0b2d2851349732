package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Pair is one entry of an ordered mapping
type Pair struct {
	Key   string
	Value interface{}
}

// Mapping is a string-keyed mapping that keeps declaration order.
// Manifests decode into it so serialized fragments list keys the way
// the caller wrote them; nested mappings decode into nested Mappings.
type Mapping []Pair

// Get returns the value stored under key
func (m Mapping) Get(key string) (interface{}, bool) {
	for _, p := range m {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present
func (m Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set replaces the value under key, or appends the pair when the key
// is new.
func (m *Mapping) Set(key string, value interface{}) {
	for i, p := range *m {
		if p.Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Pair{Key: key, Value: value})
}

// Keys lists the keys in declaration order
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, p := range m {
		keys = append(keys, p.Key)
	}
	return keys
}

// MappingFromMap builds a Mapping from a plain map. Go maps carry no
// order, so the keys are sorted to keep the result stable.
func MappingFromMap(in map[string]interface{}) Mapping {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Mapping, 0, len(in))
	for _, k := range keys {
		out = append(out, Pair{Key: k, Value: in[k]})
	}
	return out
}

// ToMap converts the mapping and everything nested in it back into
// plain maps, for encoders without an ordered-mapping representation.
func (m Mapping) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for _, p := range m {
		out[p.Key] = plainValue(p.Value)
	}
	return out
}

func plainValue(v interface{}) interface{} {
	switch x := v.(type) {
	case Mapping:
		return x.ToMap()
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = plainValue(e)
		}
		return out
	default:
		return x
	}
}

// UnmarshalYAML decodes a YAML mapping node, keeping key order
func (m *Mapping) UnmarshalYAML(value *yaml.Node) error {
	node := value
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("cannot unmarshal %s into a mapping", node.Tag)
	}

	out := make(Mapping, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := decodeNode(node.Content[i+1])
		if err != nil {
			return err
		}
		out = append(out, Pair{Key: node.Content[i].Value, Value: v})
	}
	*m = out
	return nil
}

func decodeNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	case yaml.DocumentNode:
		if len(node.Content) == 1 {
			return decodeNode(node.Content[0])
		}
		return nil, fmt.Errorf("cannot decode a multi-document node")
	case yaml.MappingNode:
		var m Mapping
		if err := m.UnmarshalYAML(node); err != nil {
			return nil, err
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]interface{}, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// MarshalYAML emits the mapping as a YAML node in declaration order
func (m Mapping) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, p := range m {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key}
		value := &yaml.Node{}
		if err := value.Encode(p.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

// MarshalJSON emits the keys in declaration order
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
