package containers

import (
	"sort"

	"github.com/confrag/confrag/pkg/errors"
)

// Args carries the optional parameters of a registry operation
type Args struct {
	States []string
	Field  string
	Values []string
}

// Operation is one registered list transform
type Operation func(List, Args) (interface{}, error)

// registry maps operation names to their implementation. Built once,
// no runtime discovery.
var registry = map[string]Operation{
	"with_states": func(list List, args Args) (interface{}, error) {
		return WithStates(list, args.States...), nil
	},
	"ignore_states": func(list List, args Args) (interface{}, error) {
		return IgnoreStates(list, args.States...), nil
	},
	"filter_by": func(list List, args Args) (interface{}, error) {
		return FilterBy(list, args.Field, args.Values), nil
	},
	"names": func(list List, _ Args) (interface{}, error) {
		return Names(list), nil
	},
	"images": func(list List, args Args) (interface{}, error) {
		state := "started"
		if len(args.States) > 0 {
			state = args.States[0]
		}
		return Images(list, state), nil
	},
	"mark_recreate": func(list List, args Args) (interface{}, error) {
		return MarkRecreate(list, args.Values), nil
	},
	"remove_keys": func(list List, args Args) (interface{}, error) {
		return RemoveKeys(list, args.Values...), nil
	},
}

// Apply runs a registered operation by name
func Apply(name string, list List, args Args) (interface{}, error) {
	op, ok := registry[name]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "unknown container operation %q", name)
	}
	return op(list, args)
}

// Operations lists the registered operation names, sorted
func Operations() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
