package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confrag/confrag/pkg/filesystem"
	"github.com/confrag/confrag/pkg/types"
)

func newReconciler(t *testing.T, configFile string) *Reconciler {
	t.Helper()

	r, err := NewReconciler(filesystem.NewOS(), configFile)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func get(t *testing.T, doc types.Mapping, key string) interface{} {
	t.Helper()

	v, ok := doc.Get(key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestBuild(t *testing.T) {
	t.Run("snake case becomes kebab case", func(t *testing.T) {
		doc, err := Build(Options{
			"data_root":  "/var/lib/docker",
			"log_driver": "json-file",
			"dns":        []string{"9.9.9.9"},
		})
		require.NoError(t, err)

		assert.Equal(t, "/var/lib/docker", get(t, doc, "data-root"))
		assert.Equal(t, "json-file", get(t, doc, "log-driver"))
		assert.Equal(t, []string{"9.9.9.9"}, get(t, doc, "dns"))
	})

	t.Run("keys appear in canonical daemon order", func(t *testing.T) {
		doc, err := Build(Options{
			"registry_mirrors": []string{"https://mirror.gcr.io"},
			"log_driver":       "json-file",
			"data_root":        "/var/lib/docker",
			"storage_driver":   "overlay2",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"data-root", "log-driver", "storage-driver", "registry-mirrors"}, doc.Keys())
	})

	t.Run("falsy values are dropped", func(t *testing.T) {
		doc, err := Build(Options{
			"data_root": "",
			"debug":     false,
			"log_opts":  map[string]interface{}{},
			"dns":       []interface{}{},
		})
		require.NoError(t, err)
		assert.Empty(t, doc)
	})

	t.Run("unknown parameter", func(t *testing.T) {
		_, err := Build(Options{"cluster_store": "etcd://"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown parameter")
	})

	t.Run("invalid log driver", func(t *testing.T) {
		_, err := Build(Options{"log_driver": "gelf"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid value")
	})

	t.Run("plugin log driver with version suffix", func(t *testing.T) {
		doc, err := Build(Options{"log_driver": "loki:2.9.1"})
		require.NoError(t, err)
		assert.Equal(t, "loki:2.9.1", get(t, doc, "log-driver"))
	})

	t.Run("invalid storage driver", func(t *testing.T) {
		_, err := Build(Options{"storage_driver": "overlay3"})
		require.Error(t, err)
	})

	t.Run("metrics address enables experimental mode", func(t *testing.T) {
		doc, err := Build(Options{"metrics_addr": "127.0.0.1:9323"})
		require.NoError(t, err)
		assert.Equal(t, true, get(t, doc, "experimental"))
	})

	t.Run("log opts values become strings", func(t *testing.T) {
		doc, err := Build(Options{
			"log_driver": "json-file",
			"log_opts":   map[string]interface{}{"max-size": "10m", "max-file": 3, "compress": true},
		})
		require.NoError(t, err)

		assert.Equal(t, types.Mapping{
			{Key: "compress", Value: "true"},
			{Key: "max-file", Value: "3"},
			{Key: "max-size", Value: "10m"},
		}, get(t, doc, "log-opts"))
	})
}

func TestReconcileLifecycle(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "daemon.json")
	r := newReconciler(t, configFile)

	opts := Options{
		"log_driver": "json-file",
		"log_opts":   map[string]interface{}{"max-size": "10m"},
	}

	rec := r.Reconcile(opts, types.StatePresent)
	assert.True(t, rec.Changed)
	assert.Equal(t, "The configuration was successfully created.", rec.Message)

	data, err := os.ReadFile(configFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"log-driver":"json-file","log-opts":{"max-size":"10m"}}`, string(data))

	rec = r.Reconcile(opts, types.StatePresent)
	assert.False(t, rec.Changed)
	assert.Equal(t, "The configuration has not been changed.", rec.Message)

	opts["log_level"] = "warn"
	rec = r.Reconcile(opts, types.StatePresent)
	assert.True(t, rec.Changed)
	assert.Equal(t, "The configuration has been successfully updated.", rec.Message)

	rec = r.Reconcile(nil, types.StateAbsent)
	assert.True(t, rec.Changed)
	assert.NoFileExists(t, configFile)

	rec = r.Reconcile(nil, types.StateAbsent)
	assert.False(t, rec.Changed)
}

func TestReconcileUnknownState(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "daemon.json")
	r := newReconciler(t, configFile)

	rec := r.Reconcile(Options{"data_root": "/var/lib/docker"}, "absnet")
	assert.True(t, rec.Failed)
	assert.False(t, rec.Changed)
	assert.Contains(t, rec.Message, "wrong state \"absnet\"")
	assert.NoFileExists(t, configFile)
}

func TestReconcileInvalidOptions(t *testing.T) {
	r := newReconciler(t, filepath.Join(t.TempDir(), "daemon.json"))

	rec := r.Reconcile(Options{"log_level": "chatty"}, types.StatePresent)
	assert.True(t, rec.Failed)
	assert.False(t, rec.Changed)
}

func TestPreview(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "daemon.json")
	r := newReconciler(t, configFile)

	opts := Options{"data_root": "/var/lib/docker"}

	preview, err := r.Preview(opts)
	require.NoError(t, err)
	assert.Contains(t, preview, "/var/lib/docker")

	rec := r.Reconcile(opts, types.StatePresent)
	require.False(t, rec.Failed)

	preview, err = r.Preview(opts)
	require.NoError(t, err)
	assert.Empty(t, preview)

	opts["data_root"] = "/srv/docker"
	preview, err = r.Preview(opts)
	require.NoError(t, err)
	assert.Contains(t, preview, "/srv/docker")
}
