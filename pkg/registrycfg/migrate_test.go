package registrycfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrate(t *testing.T) {
	t.Run("addr becomes addrs at or above 3.0", func(t *testing.T) {
		got := Migrate(map[string]interface{}{"addr": "redis:6379"}, "3.1")

		assert.Equal(t, map[string]interface{}{"addrs": []string{"redis:6379"}}, got)
	})

	t.Run("below threshold passes through", func(t *testing.T) {
		in := map[string]interface{}{"addr": "redis:6379"}
		got := Migrate(in, "2.9")

		assert.Equal(t, in, got)
	})

	t.Run("existing addrs wins, addr is still dropped", func(t *testing.T) {
		got := Migrate(map[string]interface{}{
			"addr":  "redis:6379",
			"addrs": []string{"redis-a:6379", "redis-b:6379"},
		}, "3.0")

		assert.NotContains(t, got, "addr")
		assert.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, got["addrs"])
	})

	t.Run("migration is idempotent", func(t *testing.T) {
		once := Migrate(map[string]interface{}{"addr": "redis:6379"}, "3.1")
		twice := Migrate(once, "3.1")

		assert.Equal(t, once, twice)
	})

	t.Run("unparseable version means no migration", func(t *testing.T) {
		in := map[string]interface{}{"addr": "redis:6379"}
		got := Migrate(in, "not-a-version")

		assert.Equal(t, in, got)
	})

	t.Run("empty version means no migration", func(t *testing.T) {
		in := map[string]interface{}{"addr": "redis:6379"}
		assert.Equal(t, in, Migrate(in, ""))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		in := map[string]interface{}{"addr": "redis:6379"}
		_ = Migrate(in, "3.1")
		assert.Equal(t, "redis:6379", in["addr"])
	})
}
