package form

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-adminkit/pkg/widgets"
)

// RenderHTML emits the form as markup. Each input is named after its schema
// field so a submission maps straight back onto a serialize.Draft. Rows with
// several fields become grid columns.
func RenderHTML(f Form) string {
	var b strings.Builder
	b.Grow(1024)

	b.WriteString("<form class=\"adminkit-form\" method=\"post\">\n")
	for _, msg := range f.Errors {
		b.WriteString("  <p class=\"adminkit-form-error\" role=\"alert\">")
		b.WriteString(html.EscapeString(msg))
		b.WriteString("</p>\n")
	}

	for _, section := range f.Sections {
		b.WriteString("  <fieldset")
		if len(section.Classes) > 0 {
			b.WriteString(" class=\"")
			b.WriteString(html.EscapeString(strings.Join(section.Classes, " ")))
			b.WriteString("\"")
		}
		b.WriteString(">\n")
		if section.Title != "" {
			b.WriteString("    <legend>")
			b.WriteString(html.EscapeString(section.Title))
			b.WriteString("</legend>\n")
		}
		if section.Description != "" {
			b.WriteString("    <p class=\"adminkit-fieldset-description\">")
			b.WriteString(html.EscapeString(section.Description))
			b.WriteString("</p>\n")
		}
		for _, row := range section.Rows {
			fmt.Fprintf(&b, "    <div class=\"adminkit-row\" data-columns=\"%d\">\n", len(row))
			for _, fv := range row {
				writeField(&b, fv)
			}
			b.WriteString("    </div>\n")
		}
		b.WriteString("  </fieldset>\n")
	}

	b.WriteString("  <button type=\"submit\">Save</button>\n")
	b.WriteString("</form>\n")
	return b.String()
}

func writeField(b *strings.Builder, fv FieldView) {
	name := html.EscapeString(fv.Field.Name)
	b.WriteString("      <div class=\"adminkit-field\" data-field=\"")
	b.WriteString(name)
	b.WriteString("\">\n")

	if fv.Kind != widgets.KindCheckbox && fv.Kind != widgets.KindHidden {
		writeLabel(b, fv)
	}

	switch fv.Kind {
	case widgets.KindTextarea:
		fmt.Fprintf(b, "        <textarea id=\"field-%s\" name=\"%s\"%s>%s</textarea>\n",
			name, name, attrs(fv), html.EscapeString(stringValue(fv.Value)))
	case widgets.KindCheckbox:
		checked := ""
		if v, ok := fv.Value.(bool); ok && v {
			checked = " checked"
		}
		fmt.Fprintf(b, "        <label><input type=\"checkbox\" id=\"field-%s\" name=\"%s\"%s%s> %s</label>\n",
			name, name, attrs(fv), checked, html.EscapeString(fv.Field.Label()))
	case widgets.KindSelect:
		writeSelect(b, fv, false)
	case widgets.KindMultiSelect:
		writeSelect(b, fv, true)
	case widgets.KindRelationSelect:
		writeRelationSelect(b, fv)
	case widgets.KindJSONEditor:
		fmt.Fprintf(b, "        <textarea id=\"field-%s\" name=\"%s\" data-editor=\"json\"%s>%s</textarea>\n",
			name, name, attrs(fv), html.EscapeString(jsonValue(fv.Value)))
	case widgets.KindHidden:
		fmt.Fprintf(b, "        <input type=\"hidden\" name=\"%s\" value=\"%s\">\n",
			name, html.EscapeString(stringValue(fv.Value)))
	default:
		fmt.Fprintf(b, "        <input type=\"%s\" id=\"field-%s\" name=\"%s\" value=\"%s\"%s>\n",
			inputType(fv.Kind), name, name, html.EscapeString(stringValue(fv.Value)), attrs(fv))
	}

	if fv.Field.HelpText != "" {
		b.WriteString("        <p class=\"adminkit-help\">")
		b.WriteString(html.EscapeString(fv.Field.HelpText))
		b.WriteString("</p>\n")
	}
	for _, msg := range fv.Errors {
		b.WriteString("        <p class=\"adminkit-field-error\" role=\"alert\">")
		b.WriteString(html.EscapeString(msg))
		b.WriteString("</p>\n")
	}
	b.WriteString("      </div>\n")
}

func writeLabel(b *strings.Builder, fv FieldView) {
	fmt.Fprintf(b, "        <label for=\"field-%s\">%s",
		html.EscapeString(fv.Field.Name), html.EscapeString(fv.Field.Label()))
	if fv.Rules.Required {
		b.WriteString(" <span class=\"adminkit-required\">*</span>")
	}
	b.WriteString("</label>\n")
}

func writeSelect(b *strings.Builder, fv FieldView, multiple bool) {
	name := html.EscapeString(fv.Field.Name)
	b.WriteString("        <select id=\"field-")
	b.WriteString(name)
	b.WriteString("\" name=\"")
	b.WriteString(name)
	b.WriteString("\"")
	if multiple {
		b.WriteString(" multiple")
	}
	b.WriteString(attrs(fv))
	b.WriteString(">\n")
	if !multiple && !fv.Rules.Required {
		b.WriteString("          <option value=\"\">---------</option>\n")
	}
	selected := selectedValues(fv.Value)
	for _, choice := range fv.Field.Choices {
		value := fmt.Sprint(choice.Value)
		b.WriteString("          <option value=\"")
		b.WriteString(html.EscapeString(value))
		b.WriteString("\"")
		if selected[value] {
			b.WriteString(" selected")
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(choice.Label))
		b.WriteString("</option>\n")
	}
	b.WriteString("        </select>\n")
}

// writeRelationSelect emits the mount point the relation picker component
// hydrates. Options arrive over the wire, not inline.
func writeRelationSelect(b *strings.Builder, fv FieldView) {
	rel := fv.Field.Relation
	name := html.EscapeString(fv.Field.Name)
	fmt.Fprintf(b, "        <select id=\"field-%s\" name=\"%s\" data-relation-app=\"%s\" data-relation-model=\"%s\"%s%s></select>\n",
		name, name,
		html.EscapeString(rel.AppLabel), html.EscapeString(rel.ModelName),
		multipleAttr(rel.Many()), attrs(fv))
}

func multipleAttr(many bool) string {
	if many {
		return " multiple"
	}
	return ""
}

func attrs(fv FieldView) string {
	var b strings.Builder
	if fv.Rules.Required {
		b.WriteString(" required")
	}
	if fv.Disabled {
		b.WriteString(" disabled")
	}
	if fv.Rules.MaxLength != nil {
		fmt.Fprintf(&b, " maxlength=\"%d\"", *fv.Rules.MaxLength)
	}
	if fv.Rules.Minimum != nil {
		fmt.Fprintf(&b, " min=\"%v\"", *fv.Rules.Minimum)
	}
	return b.String()
}

func inputType(kind widgets.Kind) string {
	switch kind {
	case widgets.KindNumber:
		return "number"
	case widgets.KindDate:
		return "date"
	case widgets.KindDateTime:
		return "datetime-local"
	case widgets.KindPassword:
		return "password"
	default:
		return "text"
	}
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func jsonValue(v any) string {
	if v == nil {
		return ""
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func selectedValues(v any) map[string]bool {
	out := map[string]bool{}
	switch vv := v.(type) {
	case nil:
	case []any:
		for _, item := range vv {
			out[fmt.Sprint(unwrap(item))] = true
		}
	default:
		out[fmt.Sprint(unwrap(vv))] = true
	}
	return out
}

// unwrap reduces an expanded relation object to its id for comparison with
// option values.
func unwrap(v any) any {
	if m, ok := v.(map[string]any); ok {
		if id, ok := m["id"]; ok {
			return id
		}
	}
	return v
}
