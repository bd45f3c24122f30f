package serialize_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adminkit/pkg/schema"
	"github.com/goliatone/go-adminkit/pkg/serialize"
)

var (
	fkField = schema.Field{
		Name:     "author",
		Editable: true,
		Relation: &schema.Relation{Kind: schema.RelationForeignKey, ModelName: "author"},
	}
	m2mField = schema.Field{
		Name:     "tags",
		Editable: true,
		Relation: &schema.Relation{Kind: schema.RelationManyToMany, ModelName: "tag"},
	}
)

func TestValueUnwrapsRelationObjects(t *testing.T) {
	got := serialize.Value(fkField, map[string]any{"id": float64(7), "_display": "Jane"})
	if got != float64(7) {
		t.Fatalf("Value = %v, want 7", got)
	}

	// Bare identifiers are an identity transform.
	if got := serialize.Value(fkField, 7); got != 7 {
		t.Fatalf("Value = %v, want 7", got)
	}
	if got := serialize.Value(fkField, "abc-1"); got != "abc-1" {
		t.Fatalf("Value = %v, want abc-1", got)
	}
}

func TestValueUnwrapsManyToManyElements(t *testing.T) {
	input := []any{
		map[string]any{"id": 1, "text": "News"},
		2,
		map[string]any{"id": "x-3"},
	}
	want := []any{1, 2, "x-3"}

	got := serialize.Value(m2mField, input)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("m2m mismatch (-want +got):\n%s", diff)
	}
}

func TestValuePassesNonRelationThrough(t *testing.T) {
	field := schema.Field{Name: "meta", Editable: true, Type: "object"}
	value := map[string]any{"id": 9, "nested": true}

	got := serialize.Value(field, value)
	if diff := cmp.Diff(value, got); diff != "" {
		t.Fatalf("object should pass through for non-relation field (-want +got):\n%s", diff)
	}
}

func TestPayloadPresence(t *testing.T) {
	model := &schema.Model{Fields: []schema.Field{
		{Name: "id", PrimaryKey: true, Editable: false},
		{Name: "title", Editable: true},
		{Name: "subtitle", Editable: true},
		{Name: "notes", Editable: true},
		fkField,
	}}

	draft := serialize.NewDraft()
	draft.Set("title", "Hello")
	draft.Set("subtitle", "") // empty string clears
	draft.Clear("notes")
	draft.Set("author", map[string]any{"id": 4, "_display": "Jane"})
	// "id" untouched and primary key; never serialized.

	got := serialize.Payload(model, draft, serialize.ModeEdit)
	want := map[string]any{
		"title":    "Hello",
		"subtitle": nil,
		"notes":    nil,
		"author":   4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPayloadOmitsUntouchedFields(t *testing.T) {
	model := &schema.Model{Fields: []schema.Field{
		{Name: "title", Editable: true},
		{Name: "body", Editable: true},
	}}

	draft := serialize.NewDraft()
	draft.Set("title", "Only me")

	got := serialize.Payload(model, draft, serialize.ModeCreate)
	if _, present := got["body"]; present {
		t.Fatal("untouched field must be omitted from payload")
	}
	if got["title"] != "Only me" {
		t.Fatalf("title = %v", got["title"])
	}
}

func TestPayloadReadOnlyRules(t *testing.T) {
	model := &schema.Model{Fields: []schema.Field{
		{Name: "slug", Editable: true, ReadOnly: true},
		{Name: "frozen", Editable: false, ReadOnly: true},
	}}

	draft := serialize.NewDraft()
	draft.Set("slug", "hello-world")
	draft.Set("frozen", "nope")

	edit := serialize.Payload(model, draft, serialize.ModeEdit)
	if len(edit) != 0 {
		t.Fatalf("edit payload should exclude readonly fields, got %v", edit)
	}

	create := serialize.Payload(model, draft, serialize.ModeCreate)
	want := map[string]any{"slug": "hello-world"}
	if diff := cmp.Diff(want, create); diff != "" {
		t.Fatalf("create payload mismatch (-want +got):\n%s", diff)
	}
}
