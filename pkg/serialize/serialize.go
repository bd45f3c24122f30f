// Package serialize converts edited form values back into API-compatible
// payloads. It is the single point enforcing "send identifiers, not objects"
// for relation fields: the backend rejects nested display objects as invalid
// identifiers, so every relation value is collapsed to its bare id here,
// including elements of many-to-many arrays.
package serialize

import (
	"github.com/goliatone/go-adminkit/pkg/schema"
)

// Mode selects the payload rules that depend on whether the record already
// exists.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Value converts one drafted value into its wire form for the given field.
// Relation objects are unwrapped to their identifiers; bare identifiers and
// non-relation values pass through unchanged.
func Value(field schema.Field, value any) any {
	if value == nil {
		return nil
	}
	if field.Relation == nil {
		return value
	}

	if field.Relation.Many() {
		items, ok := value.([]any)
		if !ok {
			return value
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, unwrapID(item))
		}
		return out
	}

	return unwrapID(value)
}

// unwrapID extracts the id from an {id, ...} object. Anything else is
// already a bare identifier and passes through.
func unwrapID(value any) any {
	obj, ok := value.(map[string]any)
	if !ok {
		return value
	}
	if id, ok := obj["id"]; ok {
		return id
	}
	return value
}

// Payload assembles the outgoing body for a create or edit submission.
// Untouched fields are omitted; cleared fields are sent as explicit nulls.
// Primary key, hidden, and non-editable fields never appear. Read-only
// fields are excluded in edit mode; in create mode they are excluded only
// when also not editable.
func Payload(model *schema.Model, draft *Draft, mode Mode) map[string]any {
	payload := make(map[string]any)
	if model == nil || draft == nil {
		return payload
	}

	for _, field := range model.Fields {
		if !Submittable(field, mode) {
			continue
		}
		value, touched := draft.Get(field.Name)
		if !touched {
			continue
		}
		if value == nil {
			payload[field.Name] = nil
			continue
		}
		payload[field.Name] = Value(field, value)
	}

	return payload
}

// Submittable reports whether a field participates in the outgoing payload
// for the given mode.
func Submittable(field schema.Field, mode Mode) bool {
	if field.PrimaryKey || !field.Editable || field.Widget == "hidden" {
		return false
	}
	// Create mode keeps readonly fields while they remain editable; the
	// Editable check above already rejected the rest.
	if field.ReadOnly && mode == ModeEdit {
		return false
	}
	return true
}
