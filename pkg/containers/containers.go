// Package containers provides list helpers for declarative container
// definitions: state filtering, name and image extraction, recreate
// marking. Every helper returns a fresh list and leaves its input
// untouched.
package containers

import (
	"sort"
	"strings"
)

// DefaultState is assumed for containers that declare no state
const DefaultState = "started"

// List is an ordered set of container definitions
type List []map[string]interface{}

// StateOf returns the container's declared state, falling back to
// the default.
func StateOf(container map[string]interface{}) string {
	if s, ok := container["state"].(string); ok && s != "" {
		return s
	}
	return DefaultState
}

// WithStates keeps the containers whose state is in states
func WithStates(list List, states ...string) List {
	result := make(List, 0, len(list))
	for _, c := range list {
		if containsString(states, StateOf(c)) {
			result = append(result, copyContainer(c))
		}
	}
	return result
}

// IgnoreStates drops the containers whose state is in states
func IgnoreStates(list List, states ...string) List {
	result := make(List, 0, len(list))
	for _, c := range list {
		if !containsString(states, StateOf(c)) {
			result = append(result, copyContainer(c))
		}
	}
	return result
}

// FilterBy keeps the containers whose field value is in values.
// Only name, hostname and image are filterable; any other field
// returns the list unchanged.
func FilterBy(list List, field string, values []string) List {
	switch field {
	case "name", "hostname", "image":
	default:
		return copyList(list)
	}

	result := make(List, 0, len(list))
	for _, c := range list {
		if v, ok := c[field].(string); ok && containsString(values, v) {
			result = append(result, copyContainer(c))
		}
	}
	return result
}

// Names collects the name of every container, in input order
func Names(list List) []string {
	result := make([]string, 0, len(list))
	for _, c := range list {
		if name, ok := c["name"].(string); ok && name != "" {
			result = append(result, name)
		}
	}
	return result
}

// Images collects the images of containers in the same state family
// as state: started/present or stopped/absent. The result is
// deduplicated and sorted.
func Images(list List, state string) []string {
	family := []string{"stopped", "absent"}
	if state == "started" || state == "present" {
		family = []string{"started", "present"}
	}

	seen := map[string]struct{}{}
	for _, c := range list {
		if !containsString(family, StateOf(c)) {
			continue
		}
		if image, ok := c["image"].(string); ok && image != "" {
			seen[image] = struct{}{}
		}
	}

	result := make([]string, 0, len(seen))
	for image := range seen {
		result = append(result, image)
	}
	sort.Strings(result)
	return result
}

// MarkRecreate returns a copy of the list with recreate set on every
// container whose name or image appears in changed.
func MarkRecreate(list List, changed []string) List {
	result := make(List, 0, len(list))
	for _, c := range list {
		out := copyContainer(c)

		name, _ := c["name"].(string)
		image, _ := c["image"].(string)
		if containsString(changed, name) || containsString(changed, image) {
			out["recreate"] = true
		}
		result = append(result, out)
	}
	return result
}

// StripCustomFields cuts the |{custom=fields} suffix from volume
// strings, keeping only the local:remote:mode part.
func StripCustomFields(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		base, _, _ := strings.Cut(v, "|")
		result = append(result, base)
	}
	return result
}

// RemoveKeys drops the given keys from every container
func RemoveKeys(list List, keys ...string) List {
	result := make(List, 0, len(list))
	for _, c := range list {
		out := copyContainer(c)
		for _, key := range keys {
			delete(out, key)
		}
		result = append(result, out)
	}
	return result
}

func copyContainer(c map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func copyList(list List) List {
	result := make(List, 0, len(list))
	for _, c := range list {
		result = append(result, copyContainer(c))
	}
	return result
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
