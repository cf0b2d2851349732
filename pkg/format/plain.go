package format

import (
	"gopkg.in/yaml.v3"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/types"
)

// asMapping normalizes writer input into an ordered mapping: a
// types.Mapping passes through, a *yaml.Node keeps its document
// order, and plain Go maps are taken in sorted key order since they
// carry none of their own.
func asMapping(data interface{}) (types.Mapping, error) {
	switch m := data.(type) {
	case nil:
		return nil, nil
	case types.Mapping:
		return m, nil
	case *yaml.Node:
		if m == nil {
			return nil, nil
		}
		node := m
		if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
			node = node.Content[0]
		}
		var out types.Mapping
		if err := out.UnmarshalYAML(node); err != nil {
			return nil, errors.Wrap(err, errors.ErrSerialize, "could not decode yaml node")
		}
		return out, nil
	case map[string]interface{}:
		return types.MappingFromMap(m), nil
	case map[string]string:
		generic := make(map[string]interface{}, len(m))
		for k, v := range m {
			generic[k] = v
		}
		return types.MappingFromMap(generic), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "expected a mapping, got %T", data)
	}
}
