package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-adminkit/pkg/schema"
)

// Kind is the closed set of input renderers. Resolution never fails: an
// unrecognized schema falls back to KindText so an externally supplied
// schema can never break rendering.
type Kind string

const (
	KindText           Kind = "text"
	KindTextarea       Kind = "textarea"
	KindNumber         Kind = "number"
	KindCheckbox       Kind = "checkbox"
	KindSelect         Kind = "select"
	KindMultiSelect    Kind = "multi-select"
	KindRelationSelect Kind = "relation-select"
	KindDate           Kind = "date"
	KindDateTime       Kind = "datetime"
	KindPassword       Kind = "password"
	KindHidden         Kind = "hidden"
	KindJSONEditor     Kind = "json-editor"
)

// hintKinds maps explicit widget hints to renderers. Hints absent from the
// table resolve to KindText.
var hintKinds = map[string]Kind{
	"text":     KindText,
	"email":    KindText,
	"url":      KindText,
	"slug":     KindText,
	"textarea": KindTextarea,
	"number":   KindNumber,
	"decimal":  KindNumber,
	"checkbox": KindCheckbox,
	"select":   KindSelect,
	"date":     KindDate,
	"datetime": KindDateTime,
	"time":     KindDateTime,
	"password": KindPassword,
	"hidden":   KindHidden,
	"json":     KindJSONEditor,
}

// typeKinds resolves fields that carry no widget hint at all. Schemas from
// older backends omit the widget property entirely.
var typeKinds = map[string]Kind{
	"boolean":  KindCheckbox,
	"date":     KindDate,
	"datetime": KindDateTime,
	"integer":  KindNumber,
	"number":   KindNumber,
	"decimal":  KindNumber,
}

// Matcher decides whether a widget kind should handle the supplied field.
type Matcher func(field schema.Field) bool

type rule struct {
	kind     Kind
	priority int
	match    Matcher
	order    int
}

// Registry selects widget kinds for fields via priority-ordered matchers.
// Higher priority wins; ties fall back to registration order. Resolution is
// total: when no matcher fires, the hint table decides, then KindText.
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

// Register adds a matcher for the given kind. Higher priority values take
// precedence over lower ones.
func (r *Registry) Register(kind Kind, priority int, matcher Matcher) {
	if r == nil || matcher == nil || kind == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		kind:     kind,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget kind for a field. It never fails.
func (r *Registry) Resolve(field schema.Field) Kind {
	if r != nil {
		r.mu.RLock()
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
				return entry.kind
			}
		}
	}
	return hintKind(field)
}

func hintKind(field schema.Field) Kind {
	hint := strings.ToLower(strings.TrimSpace(field.Widget))
	if kind, ok := hintKinds[hint]; ok {
		return kind
	}
	if kind, ok := typeKinds[strings.ToLower(field.Type)]; ok {
		return kind
	}
	return KindText
}

func (r *Registry) registerBuiltins() {
	r.Register(KindMultiSelect, 90, func(field schema.Field) bool {
		return field.Relation.Many()
	})

	r.Register(KindRelationSelect, 80, func(field schema.Field) bool {
		return field.Relation != nil
	})

	r.Register(KindSelect, 70, func(field schema.Field) bool {
		return len(field.Choices) > 0
	})

	r.Register(KindJSONEditor, 60, func(field schema.Field) bool {
		return strings.EqualFold(field.Widget, "json") || field.Type == "object"
	})
}

var defaultRegistry = NewRegistry()

// Resolve maps a field to its widget kind using the default registry.
func Resolve(field schema.Field) Kind {
	return defaultRegistry.Resolve(field)
}
