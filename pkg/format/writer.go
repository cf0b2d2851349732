// Package format provides the serializers that turn a configuration
// mapping into its on-disk textual representation. Every writer is a
// pure function over its input; the fragment writer decides whether
// the serialized bytes actually reach the target file.
package format

import (
	"sort"
	"strings"

	"github.com/confrag/confrag/pkg/errors"
)

// Writer serializes a configuration mapping into one target format
type Writer interface {
	// Dump serializes data. Accepted inputs are plain Go values
	// (map[string]interface{}, slices, scalars) or a *yaml.Node for
	// callers that need declaration order preserved.
	Dump(data interface{}) ([]byte, error)

	// Ext returns the canonical file extension of the format
	Ext() string
}

// The registry is a fixed table assembled here once. Formats are never
// discovered at runtime; an unknown name is a configuration error.
var writers = map[string]Writer{
	"yaml":       YAMLWriter{},
	"json":       JSONWriter{},
	"toml":       TOMLWriter{},
	"ini":        INIWriter{},
	"xml":        XMLWriter{},
	"env":        EnvWriter{},
	"properties": PropertiesWriter{},
}

// Resolve returns the writer for the given format name.
// "yml" is accepted as an alias for "yaml".
func Resolve(name string) (Writer, error) {
	t := strings.ToLower(strings.TrimSpace(name))
	if t == "yml" {
		t = "yaml"
	}

	w, ok := writers[t]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownFormat,
			"unknown configuration type %q, allowed: %s", name, strings.Join(Available(), "|"))
	}
	return w, nil
}

// Available returns the names of all registered formats, sorted
func Available() []string {
	names := make([]string, 0, len(writers))
	for name := range writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
