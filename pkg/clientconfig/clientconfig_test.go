package clientconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confrag/confrag/pkg/filesystem"
	"github.com/confrag/confrag/pkg/types"
)

func newReconciler(t *testing.T) *Reconciler {
	t.Helper()

	r, err := NewReconciler(filesystem.NewOS(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func boolPtr(b bool) *bool { return &b }

func TestRender(t *testing.T) {
	content, err := Render(Config{
		Auths: map[string]Auth{
			"registry.gitlab.com": {Username: "jenkins", Password: "secret"},
		},
		Formats: map[string][]string{
			"ps": {".ID", ".Names", ".Status"},
		},
	})
	require.NoError(t, err)

	expected := `{
  "auths": {
    "registry.gitlab.com": {
      "auth": "amVua2luczpzZWNyZXQ="
    }
  },
  "psFormat": "table {{.ID}}\t{{.Names}}\t{{.Status}}"
}
`
	assert.Equal(t, expected, string(content))
}

func TestRenderReadyToken(t *testing.T) {
	content, err := Render(Config{
		Auths: map[string]Auth{
			"registry.example.org": {Auth: "amVua2luczpzZWNyZXQ="},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(content), `"auth": "amVua2luczpzZWNyZXQ="`)
}

func TestReconcileLifecycle(t *testing.T) {
	r := newReconciler(t)
	location := filepath.Join(t.TempDir(), ".docker", "config.json")

	configs := []Config{
		{
			Location: location,
			Auths: map[string]Auth{
				"registry.example.org": {Username: "bob", Password: "hunter2"},
			},
		},
	}

	t.Run("first run creates the file", func(t *testing.T) {
		summary := r.Reconcile(configs)

		assert.True(t, summary.Changed)
		require.Len(t, summary.Records, 1)
		assert.Equal(t, "The Docker Client configuration was successfully created.", summary.Records[0].Message)
		assert.FileExists(t, location)
	})

	t.Run("second run is idempotent", func(t *testing.T) {
		summary := r.Reconcile(configs)

		assert.False(t, summary.Changed)
		assert.Equal(t, "The Docker Client configuration has not been changed.", summary.Records[0].Message)
	})

	t.Run("changed credentials update the file", func(t *testing.T) {
		changed := []Config{
			{
				Location: location,
				Auths: map[string]Auth{
					"registry.example.org": {Username: "bob", Password: "rotated"},
				},
			},
		}
		summary := r.Reconcile(changed)

		assert.True(t, summary.Changed)
		assert.Equal(t, "The Docker Client configuration was successfully updated.", summary.Records[0].Message)
	})

	t.Run("absent removes the file", func(t *testing.T) {
		summary := r.Reconcile([]Config{{Location: location, State: types.StateAbsent}})

		assert.True(t, summary.Changed)
		assert.Equal(t, "The Docker Client configuration has been removed.", summary.Records[0].Message)
		assert.NoFileExists(t, location)

		summary = r.Reconcile([]Config{{Location: location, State: types.StateAbsent}})
		assert.False(t, summary.Changed)
		assert.Equal(t, "The Docker Client configuration does not exist.", summary.Records[0].Message)
	})
}

func TestReconcileDisabled(t *testing.T) {
	r := newReconciler(t)
	location := filepath.Join(t.TempDir(), "config.json")

	summary := r.Reconcile([]Config{{Location: location, Enabled: boolPtr(false)}})
	assert.False(t, summary.Changed)
	assert.Equal(t, "The creation of the Docker Client configuration has been deactivated.", summary.Records[0].Message)

	require.NoError(t, os.WriteFile(location, []byte("{}"), 0644))

	summary = r.Reconcile([]Config{{Location: location, Enabled: boolPtr(false)}})
	assert.Contains(t, summary.Records[0].Message, "a configuration file already exists")
}

func TestReconcileInvalidInput(t *testing.T) {
	r := newReconciler(t)

	t.Run("missing location", func(t *testing.T) {
		summary := r.Reconcile([]Config{{}})
		assert.True(t, summary.Failed)
	})

	t.Run("unknown state", func(t *testing.T) {
		summary := r.Reconcile([]Config{{Location: "/tmp/x", State: "latest"}})
		assert.True(t, summary.Failed)
		assert.Contains(t, summary.Records[0].Message, "wrong state")
	})
}

func TestValidateAuth(t *testing.T) {
	tests := []struct {
		name  string
		creds Auth
		valid bool
	}{
		{"no credentials", Auth{}, true},
		{"ready token", Auth{Auth: "dXNlcjpwYXNz"}, true},
		{"username and password", Auth{Username: "user", Password: "pass"}, true},
		{"token plus pair", Auth{Auth: "dXNlcjpwYXNz", Username: "user", Password: "pass"}, false},
		{"username only", Auth{Username: "user"}, false},
		{"password only", Auth{Password: "pass"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := validateAuth(tt.creds)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestReconcileInvalidAuthFailsEntryOnly(t *testing.T) {
	r := newReconciler(t)
	dir := t.TempDir()

	summary := r.Reconcile([]Config{
		{
			Location: filepath.Join(dir, "bad.json"),
			Auths:    map[string]Auth{"registry.example.org": {Username: "user"}},
		},
		{
			Location: filepath.Join(dir, "good.json"),
			Auths:    map[string]Auth{"registry.example.org": {Username: "user", Password: "pass"}},
		},
	})

	assert.True(t, summary.Failed)
	assert.True(t, summary.Changed)
	require.Len(t, summary.Records, 2)
	assert.True(t, summary.Records[0].Failed)
	assert.Contains(t, summary.Records[0].Message, "both 'username' and 'password' must be set")
	assert.NoFileExists(t, filepath.Join(dir, "bad.json"))
	assert.True(t, summary.Records[1].Changed)
}
