package format

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/confrag/confrag/pkg/errors"
)

// YAMLWriter emits block-style YAML with two-space indentation.
// A *yaml.Node input is encoded as-is, which keeps the key order of
// the manifest it was parsed from.
type YAMLWriter struct{}

func (YAMLWriter) Dump(data interface{}) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(data); err != nil {
		_ = enc.Close()
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not serialize yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not finalize yaml document")
	}

	return buf.Bytes(), nil
}

func (YAMLWriter) Ext() string {
	return "yaml"
}
