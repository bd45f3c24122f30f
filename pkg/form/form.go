// Package form assembles the edit surface for one record: which fields are
// shown, how they are grouped, what widget each gets and which validation
// rules apply. The output is a renderer-agnostic model; html.go provides the
// default markup.
package form

import (
	"github.com/goliatone/go-adminkit/pkg/schema"
	"github.com/goliatone/go-adminkit/pkg/serialize"
	"github.com/goliatone/go-adminkit/pkg/validation"
	"github.com/goliatone/go-adminkit/pkg/widgets"
)

// FieldView is one rendered input: the schema field plus everything resolved
// at build time.
type FieldView struct {
	Field    schema.Field
	Kind     widgets.Kind
	Rules    validation.RuleSet
	Value    any
	Disabled bool
	Errors   []string
}

// Row groups fields rendered side by side.
type Row []FieldView

// Section is one fieldset: a titled group of rows.
type Section struct {
	Title       string
	Description string
	Classes     []string
	Rows        []Row
}

// Form is the full edit surface for one record.
type Form struct {
	Model    *schema.Model
	Mode     serialize.Mode
	Sections []Section
	// Errors holds form-level messages that belong to no single field.
	Errors []string
}

// Build assembles the form for model. record may be nil for a create form;
// its values seed the inputs on edit. Fields the schema marks as
// non-editable or as the primary key never appear; read-only fields render
// disabled on edit so the stored value stays visible.
func Build(model *schema.Model, record schema.Record, mode serialize.Mode) Form {
	f := Form{Model: model, Mode: mode}
	if model == nil {
		return f
	}

	if len(model.Fieldsets) > 0 {
		for _, fs := range model.Fieldsets {
			section := Section{
				Title:       fs.Title,
				Description: fs.Description,
				Classes:     fs.Classes,
			}
			for _, row := range fs.Rows {
				var r Row
				for _, name := range row {
					field, ok := model.Field(name)
					if !ok || !visible(field) {
						continue
					}
					r = append(r, buildField(field, record, mode))
				}
				if len(r) > 0 {
					section.Rows = append(section.Rows, r)
				}
			}
			if len(section.Rows) > 0 {
				f.Sections = append(f.Sections, section)
			}
		}
		return f
	}

	// No fieldsets declared: one field per row, schema order.
	var section Section
	for _, field := range model.Fields {
		if !visible(field) {
			continue
		}
		section.Rows = append(section.Rows, Row{buildField(field, record, mode)})
	}
	if len(section.Rows) > 0 {
		f.Sections = append(f.Sections, section)
	}
	return f
}

func visible(field schema.Field) bool {
	return field.Editable && !field.PrimaryKey && field.Widget != "hidden"
}

func buildField(field schema.Field, record schema.Record, mode serialize.Mode) FieldView {
	return FieldView{
		Field:    field,
		Kind:     widgets.Resolve(field),
		Rules:    validation.Derive(field),
		Value:    initialValue(field, record),
		Disabled: field.ReadOnly && mode == serialize.ModeEdit,
	}
}

// initialValue picks the input's starting value: the record's stored value,
// then the schema default, then a per-widget zero.
func initialValue(field schema.Field, record schema.Record) any {
	if record != nil {
		if v, ok := record[field.Name]; ok {
			return v
		}
	}
	if field.HasDefault {
		return field.Default
	}
	switch widgets.Resolve(field) {
	case widgets.KindCheckbox:
		return false
	case widgets.KindMultiSelect:
		return []any{}
	default:
		return nil
	}
}

// Fields flattens the form into build order, mostly for tests and draft
// seeding.
func (f Form) Fields() []FieldView {
	var out []FieldView
	for _, section := range f.Sections {
		for _, row := range section.Rows {
			out = append(out, row...)
		}
	}
	return out
}

// Draft seeds a serialize.Draft with the form's initial values so an edit
// submission starts from what the server sent.
func (f Form) Draft() *serialize.Draft {
	draft := serialize.NewDraft()
	for _, fv := range f.Fields() {
		if fv.Value != nil {
			draft.Set(fv.Field.Name, fv.Value)
		}
	}
	return draft
}
