package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEnvWriter(t *testing.T) {
	t.Run("sorted map output", func(t *testing.T) {
		out, err := EnvWriter{}.Dump(map[string]interface{}{
			"LOG_LEVEL": "info",
			"APP_ENV":   "production",
		})
		require.NoError(t, err)

		assert.Equal(t,
			"# generated by confrag\n\nAPP_ENV=production\nLOG_LEVEL=info\n",
			string(out))
	})

	t.Run("yaml node keeps declaration order", func(t *testing.T) {
		var node yaml.Node
		require.NoError(t, yaml.Unmarshal([]byte("LOG_LEVEL: info\nAPP_ENV: production\n"), &node))

		out, err := EnvWriter{}.Dump(&node)
		require.NoError(t, err)

		assert.Equal(t,
			"# generated by confrag\n\nLOG_LEVEL=info\nAPP_ENV=production\n",
			string(out))
	})

	t.Run("booleans render lowercase", func(t *testing.T) {
		out, err := EnvWriter{}.Dump(map[string]interface{}{"DEBUG": false, "VERBOSE": true})
		require.NoError(t, err)
		assert.Contains(t, string(out), "DEBUG=false\n")
		assert.Contains(t, string(out), "VERBOSE=true\n")
	})

	t.Run("nil renders empty", func(t *testing.T) {
		out, err := EnvWriter{}.Dump(map[string]interface{}{"EMPTY": nil})
		require.NoError(t, err)
		assert.Contains(t, string(out), "EMPTY=\n")
	})
}

func TestPropertiesWriter(t *testing.T) {
	t.Run("keys padded to 30 columns", func(t *testing.T) {
		out, err := PropertiesWriter{}.Dump(map[string]interface{}{
			"db.url": "jdbc:mysql://db.internal:3306/web",
		})
		require.NoError(t, err)

		assert.Equal(t,
			"# generated by confrag\n\ndb.url                         = jdbc:mysql://db.internal:3306/web\n",
			string(out))
	})

	t.Run("long keys are not truncated", func(t *testing.T) {
		key := "a.very.long.property.key.that.exceeds.thirty.columns"
		out, err := PropertiesWriter{}.Dump(map[string]interface{}{key: "v"})
		require.NoError(t, err)
		assert.Contains(t, string(out), key+" = v\n")
	})
}
