package runner

import (
	"strings"

	"github.com/tidwall/gjson"
)

// lookupBinding finds a value for an attribute name in the binding table.
// Matching is exact first, then case-insensitive, then the path-parameter
// suffix rule: "itemId" falls back to a bound "id".
func lookupBinding(bindings map[string]string, name string) (string, bool) {
	if v, ok := bindings[name]; ok {
		return v, true
	}

	lower := strings.ToLower(name)
	for k, v := range bindings {
		if strings.ToLower(k) == lower {
			return v, true
		}
	}

	if strings.HasSuffix(lower, "id") && lower != "id" {
		if v, ok := lookupBinding(bindings, "id"); ok {
			return v, true
		}
	}

	return "", false
}

// mergeBindings scans a JSON response body and merges every top-level (and
// one level of nested) attribute into the binding table. Later merges
// overwrite earlier values on name collision. Non-JSON bodies are ignored.
func mergeBindings(bindings map[string]string, body string) {
	parsed := gjson.Parse(body)

	// A top-level array binds through its first element
	if parsed.IsArray() {
		elements := parsed.Array()
		if len(elements) == 0 {
			return
		}
		parsed = elements[0]
	}

	if !parsed.IsObject() {
		return
	}

	parsed.ForEach(func(key, value gjson.Result) bool {
		mergeValue(bindings, key.String(), value, true)
		return true
	})
}

// mergeValue binds one attribute; objects and arrays descend one more level
func mergeValue(bindings map[string]string, key string, value gjson.Result, descend bool) {
	switch {
	case value.IsObject():
		if !descend {
			return
		}
		value.ForEach(func(k, v gjson.Result) bool {
			mergeValue(bindings, k.String(), v, false)
			return true
		})
	case value.IsArray():
		if !descend {
			return
		}
		elements := value.Array()
		if len(elements) > 0 && elements[0].IsObject() {
			elements[0].ForEach(func(k, v gjson.Result) bool {
				mergeValue(bindings, k.String(), v, false)
				return true
			})
		}
	case value.Type != gjson.Null:
		bindings[key] = value.String()
	}
}

// copyBindings clones a binding table so concurrent sequence executions
// never share mutable state.
func copyBindings(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
