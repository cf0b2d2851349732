package format

import (
	"encoding/json"
	"fmt"

	"github.com/confrag/confrag/pkg/errors"
)

// scalarString renders a single value for line-oriented formats
// (ini, env, properties). Booleans become the lowercase literals
// true/false, nil becomes the empty string, and anything non-primitive
// is serialized as a JSON literal since these formats have no native
// syntax for complex values.
func scalarString(v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrSerialize, "could not serialize value %v", v)
		}
		return string(b), nil
	}
}
