package registrycfg

import (
	version "github.com/hashicorp/go-version"

	"github.com/confrag/confrag/pkg/logging"
)

// migrationThreshold is the registry release that replaced the
// singular redis `addr` key with the `addrs` list.
// https://github.com/distribution/distribution/commit/fcb2deac
const migrationThreshold = "3.0"

// Migrate rewrites the legacy `addr` key to `addrs = [addr]` for
// target versions at or above 3.0. Below the threshold, with `addrs`
// already present, or with an unparseable version the input passes
// through unchanged. The input map is never mutated; running Migrate
// twice is a no-op.
func Migrate(config map[string]interface{}, targetVersion string) map[string]interface{} {
	result := make(map[string]interface{}, len(config))
	for k, v := range config {
		result[k] = v
	}

	if !atLeast(targetVersion, migrationThreshold) {
		return result
	}

	addr, hasAddr := config["addr"].(string)
	if !hasAddr || addr == "" {
		return result
	}

	delete(result, "addr")
	if _, hasAddrs := config["addrs"]; !hasAddrs {
		result["addrs"] = []string{addr}
	}
	return result
}

// atLeast reports whether target >= threshold as semantic versions.
// An unparseable version means the migration does not apply.
func atLeast(target, threshold string) bool {
	if target == "" {
		return false
	}

	tv, err := version.NewVersion(target)
	if err != nil {
		logger := logging.GetLogger("registrycfg")
		logger.Debug().
			Err(err).Str("version", target).
			Msg("unparseable target version, skipping migration")
		return false
	}

	min, err := version.NewVersion(threshold)
	if err != nil {
		return false
	}

	return tv.GreaterThanOrEqual(min)
}
