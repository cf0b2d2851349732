package format

import (
	"bytes"

	"gopkg.in/ini.v1"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/types"
)

// INIWriter turns top-level mapping values into named sections and
// collects top-level scalars into the default section. Values without
// a native INI representation (lists) are written as JSON literals.
type INIWriter struct{}

func init() {
	// stable "key = value" rows instead of per-section alignment
	ini.PrettyFormat = false
	ini.PrettyEqual = true
}

func (INIWriter) Dump(data interface{}) ([]byte, error) {
	m, err := asMapping(data)
	if err != nil {
		return nil, err
	}

	file := ini.Empty()

	for _, entry := range m {
		if section, err := asMapping(entry.Value); err == nil && section != nil {
			sec, err := file.NewSection(entry.Key)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrSerialize, "could not create ini section %q", entry.Key)
			}
			if err := fillSection(sec, section); err != nil {
				return nil, err
			}
			continue
		}

		value, err := scalarString(entry.Value)
		if err != nil {
			return nil, err
		}
		if _, err := file.Section(ini.DefaultSection).NewKey(entry.Key, value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrSerialize, "could not write ini key %q", entry.Key)
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not serialize ini")
	}
	return buf.Bytes(), nil
}

func (INIWriter) Ext() string {
	return "ini"
}

func fillSection(sec *ini.Section, values types.Mapping) error {
	for _, entry := range values {
		value, err := scalarString(entry.Value)
		if err != nil {
			return err
		}
		if _, err := sec.NewKey(entry.Key, value); err != nil {
			return errors.Wrapf(err, errors.ErrSerialize, "could not write ini key %q", entry.Key)
		}
	}
	return nil
}
