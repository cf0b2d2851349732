package format

import (
	"github.com/beevik/etree"

	"github.com/confrag/confrag/pkg/errors"
	"github.com/confrag/confrag/pkg/types"
)

// XMLWriter renders a mapping as an XML document rooted at
// <configuration>. Nested mappings become child elements, lists repeat
// their parent element once per item.
type XMLWriter struct{}

func (XMLWriter) Dump(data interface{}) ([]byte, error) {
	m, err := asMapping(data)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("configuration")
	if err := fillElement(root, m); err != nil {
		return nil, err
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSerialize, "could not serialize xml")
	}
	return out, nil
}

func (XMLWriter) Ext() string {
	return "xml"
}

func fillElement(parent *etree.Element, values types.Mapping) error {
	for _, entry := range values {
		if err := appendValue(parent, entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

func appendValue(parent *etree.Element, key string, value interface{}) error {
	switch v := value.(type) {
	case types.Mapping:
		return fillElement(parent.CreateElement(key), v)
	case map[string]interface{}:
		return fillElement(parent.CreateElement(key), types.MappingFromMap(v))
	case []interface{}:
		for _, item := range v {
			if err := appendValue(parent, key, item); err != nil {
				return err
			}
		}
		return nil
	case nil:
		parent.CreateElement(key)
		return nil
	default:
		text, err := scalarString(v)
		if err != nil {
			return err
		}
		parent.CreateElement(key).SetText(text)
		return nil
	}
}
