// Package registrycfg merges user-supplied registry configuration
// onto defaults and migrates legacy keys between schema versions.
package registrycfg

// MergeOne overlays override onto a fresh copy of defaults and strips
// entries whose merged value is nil, an empty string, false, or an
// empty collection.
func MergeOne(defaults, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(override))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}

	result := make(map[string]interface{}, len(merged))
	for k, v := range merged {
		if isFalsy(v) {
			continue
		}
		result[k] = v
	}
	return result
}

// MergeAll applies MergeOne independently to every override. Each
// merge starts from its own copy of defaults, so overrides never leak
// into one another.
func MergeAll(defaults map[string]interface{}, overrides []map[string]interface{}) []map[string]interface{} {
	result := make([]map[string]interface{}, 0, len(overrides))
	for _, override := range overrides {
		result = append(result, MergeOne(defaults, override))
	}
	return result
}

func isFalsy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case map[string]interface{}:
		return len(x) == 0
	case []interface{}:
		return len(x) == 0
	case []string:
		return len(x) == 0
	default:
		return false
	}
}
