package validation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FormData is the nested field map extracted by the backend, addressed by
// dotted paths such as "client.cpf" or "usedVehicle.chassi".
// A FormData is never mutated in place; With returns an updated copy.
type FormData map[string]any

// Get returns the string form of the value at path, or "" when absent
func (f FormData) Get(path string) string {
	var cur any = map[string]any(f)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}
	return stringify(cur)
}

// Has reports whether a top-level section (e.g. "third") is present and non-null
func (f FormData) Has(section string) bool {
	v, ok := f[section]
	return ok && v != nil
}

// With returns a copy of f with path set to value, creating intermediate
// objects as needed. Sibling sections are shared with f; every map on the
// path to the changed leaf is copied.
func (f FormData) With(path string, value any) FormData {
	parts := strings.Split(path, ".")
	return FormData(setPath(map[string]any(f), parts, value))
}

func setPath(m map[string]any, parts []string, value any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if len(parts) == 1 {
		out[parts[0]] = value
		return out
	}
	child, _ := asMap(m[parts[0]])
	out[parts[0]] = setPath(child, parts[1:], value)
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case FormData:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
