package render

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// HiddenField is one <input type="hidden"> written before the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden formats value with fmt.Sprint.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken is the hidden field the site's double-submit check reads back on
// POST; name is the site's CSRF field name.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields layers fields over a copy of base. Blank names are
// dropped and the last field of a name wins. It returns nil when nothing
// remains.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for name, value := range base {
		if name = strings.TrimSpace(name); name != "" {
			out[name] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders fields by name so the rendered markup is stable.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := MergeHiddenFields(fields)
	if clean == nil {
		return nil
	}
	result := make([]HiddenField, 0, len(clean))
	for _, name := range slices.Sorted(maps.Keys(clean)) {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
