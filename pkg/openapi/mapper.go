// Package openapi derives admin model schemas from an OpenAPI 3 document.
// Backends that publish a spec instead of the admin schema endpoint can
// still drive the console: component schemas become models, properties
// become fields, and x- extensions carry the admin-only metadata the
// OpenAPI vocabulary has no words for.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-adminkit/pkg/schema"
)

// Extension keys understood on component schemas and properties.
const (
	extAppLabel      = "x-app-label"
	extListDisplay   = "x-list-display"
	extListFilter    = "x-list-filter"
	extSearchFields  = "x-search-fields"
	extDateHierarchy = "x-date-hierarchy"
	extOrdering      = "x-ordering"
	extWidget        = "x-widget"
	extRelation      = "x-relation"
	extPrimaryKey    = "x-primary-key"
)

const defaultAppLabel = "api"

// Load reads and validates an OpenAPI document, then maps it to models.
func Load(ctx context.Context, path string) ([]schema.Model, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: load %s: %w", path, err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: validate %s: %w", path, err)
	}
	return Models(doc)
}

// Models maps every object-typed component schema to an admin model.
// Component order in the map is not stable, so output is sorted by name.
func Models(doc *openapi3.T) ([]schema.Model, error) {
	if doc == nil || doc.Components == nil {
		return nil, nil
	}

	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var models []schema.Model
	for _, name := range names {
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil || !ref.Value.Type.Is(openapi3.TypeObject) {
			continue
		}
		model, err := mapModel(name, ref.Value)
		if err != nil {
			return nil, fmt.Errorf("openapi: schema %s: %w", name, err)
		}
		models = append(models, model)
	}
	return models, nil
}

func mapModel(name string, src *openapi3.Schema) (schema.Model, error) {
	appLabel := stringExt(src.Extensions, extAppLabel)
	if appLabel == "" {
		appLabel = defaultAppLabel
	}
	modelName := strings.ToLower(name)

	model := schema.Model{
		Info: schema.Info{
			Name:              name,
			AppLabel:          appLabel,
			ModelName:         modelName,
			VerboseName:       schema.Labelize(modelName),
			VerboseNamePlural: schema.Labelize(modelName) + "s",
		},
		SearchFields:  stringSliceExt(src.Extensions, extSearchFields),
		ListFilter:    stringSliceExt(src.Extensions, extListFilter),
		Ordering:      stringSliceExt(src.Extensions, extOrdering),
		DateHierarchy: stringExt(src.Extensions, extDateHierarchy),
	}

	for _, col := range stringSliceExt(src.Extensions, extListDisplay) {
		model.ListDisplay = append(model.ListDisplay, schema.Column{
			Name: col, Label: schema.Labelize(col), Sortable: true,
		})
	}

	required := make(map[string]bool, len(src.Required))
	for _, name := range src.Required {
		required[name] = true
	}

	propNames := make([]string, 0, len(src.Properties))
	for propName := range src.Properties {
		propNames = append(propNames, propName)
	}
	sort.Strings(propNames)

	for _, propName := range propNames {
		ref := src.Properties[propName]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, err := mapField(propName, ref.Value, required[propName])
		if err != nil {
			return schema.Model{}, fmt.Errorf("property %s: %w", propName, err)
		}
		model.Fields = append(model.Fields, field)
	}

	if len(model.ListDisplay) == 0 && len(model.Fields) > 0 {
		first := model.Fields[0]
		model.ListDisplay = []schema.Column{{Name: first.Name, Label: first.Label()}}
	}
	return model, nil
}

func mapField(name string, src *openapi3.Schema, required bool) (schema.Field, error) {
	field := schema.Field{
		Name:     name,
		Required: required,
		Nullable: src.Nullable,
		Editable: !src.ReadOnly,
		ReadOnly: src.ReadOnly,
		Type:     fieldType(src),
		Format:   src.Format,
		Widget:   stringExt(src.Extensions, extWidget),
	}
	if field.Widget == "" {
		field.Widget = widgetForFormat(src.Format)
	}
	if boolExt(src.Extensions, extPrimaryKey) || name == "id" {
		field.PrimaryKey = true
		field.Editable = false
	}
	if src.MaxLength != nil {
		max := int(*src.MaxLength)
		field.MaxLength = &max
	}
	if src.Min != nil {
		min := *src.Min
		field.Minimum = &min
	}
	if src.Default != nil {
		field.Default = src.Default
		field.HasDefault = true
	}
	for _, value := range src.Enum {
		field.Choices = append(field.Choices, schema.Choice{
			Value: value,
			Label: schema.Labelize(fmt.Sprint(value)),
		})
	}
	if raw, ok := src.Extensions[extRelation]; ok {
		rel, err := mapRelation(raw)
		if err != nil {
			return schema.Field{}, err
		}
		field.Relation = rel
	}
	return field, nil
}

func mapRelation(raw any) (*schema.Relation, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s extension: %w", extRelation, err)
	}
	var rel schema.Relation
	if err := json.Unmarshal(encoded, &rel); err != nil {
		return nil, fmt.Errorf("invalid %s extension: %w", extRelation, err)
	}
	if rel.Kind == "" {
		rel.Kind = schema.RelationForeignKey
	}
	return &rel, nil
}

func fieldType(src *openapi3.Schema) string {
	switch {
	case src.Type.Is(openapi3.TypeBoolean):
		return "boolean"
	case src.Type.Is(openapi3.TypeInteger):
		return "integer"
	case src.Type.Is(openapi3.TypeNumber):
		return "number"
	case src.Type.Is(openapi3.TypeArray):
		return "array"
	case src.Type.Is(openapi3.TypeObject):
		return "object"
	case src.Type.Is(openapi3.TypeString) && src.Format == "date":
		return "date"
	case src.Type.Is(openapi3.TypeString) && src.Format == "date-time":
		return "datetime"
	default:
		return "string"
	}
}

func widgetForFormat(format string) string {
	switch format {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "password":
		return "password"
	case "date":
		return "date"
	case "date-time":
		return "datetime"
	default:
		return ""
	}
}

func stringExt(ext map[string]any, key string) string {
	if s, ok := ext[key].(string); ok {
		return s
	}
	return ""
}

func boolExt(ext map[string]any, key string) bool {
	b, ok := ext[key].(bool)
	return ok && b
}

func stringSliceExt(ext map[string]any, key string) []string {
	raw, ok := ext[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
