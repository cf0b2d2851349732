package format

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/confrag/confrag/pkg/errors"
)

// TOMLWriter emits standard TOML. Nested mappings become tables.
type TOMLWriter struct{}

func (TOMLWriter) Dump(data interface{}) ([]byte, error) {
	m, err := asMapping(data)
	if err != nil {
		return nil, err
	}

	out, err := toml.Marshal(m.ToMap())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not serialize toml")
	}
	return out, nil
}

func (TOMLWriter) Ext() string {
	return "toml"
}
