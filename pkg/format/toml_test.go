package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOMLWriter(t *testing.T) {
	out, err := TOMLWriter{}.Dump(map[string]interface{}{
		"title": "settings",
		"db": map[string]interface{}{
			"host": "localhost",
			"port": 3306,
		},
	})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "[db]")
	assert.Contains(t, text, "host = ")
	assert.Contains(t, text, "port = 3306")
	assert.Contains(t, text, "title = ")
}

func TestTOMLWriterRejectsScalars(t *testing.T) {
	_, err := TOMLWriter{}.Dump("just a string")
	require.Error(t, err)
}
