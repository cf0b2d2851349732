package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confrag/confrag/pkg/types"
)

func TestJSONWriterKeepsDeclarationOrder(t *testing.T) {
	out, err := JSONWriter{}.Dump(types.Mapping{
		{Key: "zeta", Value: 1},
		{Key: "alpha", Value: types.Mapping{{Key: "nested", Value: true}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"zeta\": 1,\n  \"alpha\": {\n    \"nested\": true\n  }\n}\n", string(out))
}

func TestJSONWriterRejectsScalars(t *testing.T) {
	_, err := JSONWriter{}.Dump(42)
	require.Error(t, err)
}
