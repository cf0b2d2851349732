package format

import (
	"bytes"
	"fmt"
)

const generatedHeader = "# generated by confrag\n\n"

// EnvWriter emits one KEY=value line per entry, in the order the
// mapping declares them.
type EnvWriter struct{}

func (EnvWriter) Dump(data interface{}) ([]byte, error) {
	entries, err := asMapping(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(generatedHeader)

	for _, entry := range entries {
		value, err := scalarString(entry.Value)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%s=%s\n", entry.Key, value)
	}

	return buf.Bytes(), nil
}

func (EnvWriter) Ext() string {
	return "env"
}

// PropertiesWriter emits java-style properties, keys left-padded to
// 30 columns.
type PropertiesWriter struct{}

func (PropertiesWriter) Dump(data interface{}) ([]byte, error) {
	entries, err := asMapping(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(generatedHeader)

	for _, entry := range entries {
		value, err := scalarString(entry.Value)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%-30s = %s\n", entry.Key, value)
	}

	return buf.Bytes(), nil
}

func (PropertiesWriter) Ext() string {
	return "properties"
}
