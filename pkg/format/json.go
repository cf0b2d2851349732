package format

import (
	"bytes"
	"encoding/json"

	"github.com/confrag/confrag/pkg/errors"
)

// JSONWriter emits two-space indented JSON in declaration order.
// Non-ASCII characters are written unescaped.
type JSONWriter struct{}

func (JSONWriter) Dump(data interface{}) ([]byte, error) {
	m, err := asMapping(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not serialize json")
	}

	return buf.Bytes(), nil
}

func (JSONWriter) Ext() string {
	return "json"
}
