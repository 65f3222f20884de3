package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formsite/pkg/model"
)

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widget components for fields that do not name one
// explicitly. Higher priority wins; ties fall back to registration order. An
// empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence. The latest registration wins on duplicate
// names only through priority/order, so callers should avoid duplicates.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. An explicit Field.Widget or
// metadata["widget"] is honoured before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator, filling in Field.Widget for every field
// that has none.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	for idx, field := range form.Fields {
		if strings.TrimSpace(field.Widget) != "" {
			continue
		}
		if widget, ok := r.Resolve(field); ok {
			form.Fields[idx].Widget = widget
		}
	}
	return nil
}

func explicitWidget(field model.Field) string {
	if widget := strings.TrimSpace(field.Widget); widget != "" {
		return widget
	}
	if field.Metadata != nil {
		if widget := strings.TrimSpace(field.Metadata["widget"]); widget != "" {
			return widget
		}
	}
	return ""
}

func (r *Registry) registerBuiltins() {
	r.Register(model.WidgetHidden, 100, func(field model.Field) bool {
		return field.InputType == "hidden"
	})

	r.Register(model.WidgetRadio, 90, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean && len(field.Choices) == 2
	})

	r.Register(model.WidgetCheckbox, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean && len(field.Choices) == 0
	})

	r.Register(model.WidgetSelect, 70, func(field model.Field) bool {
		return len(field.Choices) > 0
	})

	r.Register(model.WidgetText, 0, func(model.Field) bool {
		return true
	})
}
