package vanilla

import (
	"html"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Attributes the templates write themselves; widget attrs cannot override them.
var reservedAttrs = map[string]struct{}{
	"type": {}, "name": {}, "id": {}, "value": {}, "checked": {}, "selected": {},
}

// attrString renders widget attributes as ` key="value"` pairs in key order.
func attrString(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, reserved := reservedAttrs[strings.ToLower(key)]; reserved {
			continue
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var builder strings.Builder
	for _, key := range keys {
		builder.WriteByte(' ')
		builder.WriteString(html.EscapeString(key))
		builder.WriteString(`="`)
		builder.WriteString(html.EscapeString(attrs[key]))
		builder.WriteByte('"')
	}
	return builder.String()
}

// helpPolicy allows the inline markup help text commonly carries (links,
// emphasis) and strips everything else.
var helpPolicy = bluemonday.UGCPolicy()

func sanitizeHelp(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return strings.TrimSpace(helpPolicy.Sanitize(text))
}
