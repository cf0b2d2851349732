package fragment

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confrag/confrag/pkg/filesystem"
	"github.com/confrag/confrag/pkg/paths"
	"github.com/confrag/confrag/pkg/types"
)

func newWriter(t *testing.T) *Writer {
	t.Helper()

	w, err := New(filesystem.NewOS(), "writer_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestReconcile(t *testing.T) {
	w := newWriter(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "web.conf")

	t.Run("first write creates the target", func(t *testing.T) {
		changed, err := w.Reconcile(target, []byte("services:\n  web:\n    image: nginx:latest\n"))
		require.NoError(t, err)
		assert.True(t, changed)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "services:\n  web:\n    image: nginx:latest\n", string(data))
	})

	t.Run("identical content reports unchanged", func(t *testing.T) {
		changed, err := w.Reconcile(target, []byte("services:\n  web:\n    image: nginx:latest\n"))
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("different content replaces the target", func(t *testing.T) {
		changed, err := w.Reconcile(target, []byte("services:\n  web:\n    image: nginx:1.25\n"))
		require.NoError(t, err)
		assert.True(t, changed)

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(data), "nginx:1.25")
	})

	t.Run("no candidate temp files survive", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "web.conf", entries[0].Name())
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		nested := filepath.Join(dir, "webapp", "settings.yaml")
		changed, err := w.Reconcile(nested, []byte("version: 1\n"))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.FileExists(t, nested)
	})
}

func TestReconcileRemovesStaleSidecar(t *testing.T) {
	w := newWriter(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "cache.conf")
	sidecar := paths.ChecksumSidecar(target)

	require.NoError(t, os.WriteFile(sidecar, []byte("sha256:deadbeef"), 0644))

	_, err := w.Reconcile(target, []byte("volumes:\n  cache: {}\n"))
	require.NoError(t, err)
	assert.NoFileExists(t, sidecar)
}

// renameFailFS fails every Rename, simulating a full or read-only
// target filesystem at the final replacement step.
type renameFailFS struct {
	types.FS
}

func (renameFailFS) Rename(oldpath, newpath string) error {
	return fmt.Errorf("rename %s %s: no space left on device", oldpath, newpath)
}

func TestReconcileFailureLeavesTargetIntact(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "web.conf")
	require.NoError(t, os.WriteFile(target, []byte("services:\n  web:\n    image: nginx:1.24\n"), 0644))

	// leftovers from an interrupted earlier run must not change the outcome
	stale := filepath.Join(dir, ".web.conf.confrag-deadbeef")
	require.NoError(t, os.WriteFile(stale, []byte("garbage"), 0644))

	w, err := New(renameFailFS{filesystem.NewOS()}, "rename_fail_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	changed, err := w.Reconcile(target, []byte("services:\n  web:\n    image: nginx:1.25\n"))
	require.Error(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "services:\n  web:\n    image: nginx:1.24\n", string(data), "a failed replacement must not touch the target")

	// the failed candidate is cleaned up, only the planted leftover remains
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"web.conf", ".web.conf.confrag-deadbeef"}, names)
}

func TestRemove(t *testing.T) {
	w := newWriter(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "old.conf")

	t.Run("missing target reports unchanged", func(t *testing.T) {
		changed, err := w.Remove(target)
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("existing target is removed", func(t *testing.T) {
		require.NoError(t, os.WriteFile(target, []byte("networks: {}\n"), 0644))

		changed, err := w.Remove(target)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.NoFileExists(t, target)
	})
}

func TestCloseRemovesScratch(t *testing.T) {
	w, err := New(filesystem.NewOS(), "close_test")
	require.NoError(t, err)

	require.DirExists(t, w.scratch)
	require.NoError(t, w.Close())
	assert.NoDirExists(t, w.scratch)
}
