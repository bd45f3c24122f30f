package filters_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/filters"
	"github.com/goliatone/go-adminkit/pkg/schema"
)

type fakeSource struct {
	autocompleteErr    error
	relationOptionsErr error
	autocompleteCalls  int
	relationCalls      int
	results            []client.OptionRef
}

func (f *fakeSource) Autocomplete(_ context.Context, _, _, _ string, _ int) (client.OptionSet, error) {
	f.autocompleteCalls++
	if f.autocompleteErr != nil {
		return client.OptionSet{}, f.autocompleteErr
	}
	return client.OptionSet{Results: f.results}, nil
}

func (f *fakeSource) RelationOptions(_ context.Context, _, _, _ string, _ int) (client.OptionSet, error) {
	f.relationCalls++
	if f.relationOptionsErr != nil {
		return client.OptionSet{}, f.relationOptionsErr
	}
	return client.OptionSet{Results: f.results}, nil
}

func articleModel() *schema.Model {
	return &schema.Model{
		Info: schema.Info{AppLabel: "news", ModelName: "article"},
		Fields: []schema.Field{
			{Name: "status", VerboseName: "Status", Choices: []schema.Choice{
				{Value: "draft", Label: "Draft"},
				{Value: "live", Label: "Live"},
			}},
			{Name: "published", Type: "boolean"},
			{Name: "category", Relation: &schema.Relation{
				AppLabel: "news", ModelName: "category", Kind: schema.RelationForeignKey,
			}},
		},
		ListFilter: []string{"status", "published", "category"},
	}
}

func TestResolveGroupKinds(t *testing.T) {
	source := &fakeSource{results: []client.OptionRef{{ID: 3, Text: "Technology"}}}
	resolver := filters.NewResolver(source)

	groups, err := resolver.Resolve(context.Background(), articleModel())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := []filters.Group{
		{Field: "status", Label: "Status", Kind: filters.KindChoice, Options: []filters.Option{
			{Value: "draft", Label: "Draft"},
			{Value: "live", Label: "Live"},
		}},
		{Field: "published", Label: "Published", Kind: filters.KindBoolean, Options: []filters.Option{
			{Value: "true", Label: "Yes"},
			{Value: "false", Label: "No"},
		}},
		{Field: "category", Label: "Category", Kind: filters.KindRelation, Options: []filters.Option{
			{Value: "3", Label: "Technology"},
		}},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestRelationFallsBackToRelationOptions(t *testing.T) {
	source := &fakeSource{
		autocompleteErr: errors.New("no autocomplete endpoint"),
		results:         []client.OptionRef{{ID: "a", Text: "Alpha"}},
	}
	resolver := filters.NewResolver(source)

	groups, err := resolver.Resolve(context.Background(), articleModel())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if source.relationCalls != 1 {
		t.Fatalf("relation-options called %d times, want 1", source.relationCalls)
	}
	category := groups[2]
	if len(category.Options) != 1 || category.Options[0].Label != "Alpha" {
		t.Fatalf("category options = %+v", category.Options)
	}
}

func TestRelationFailureYieldsEmptyGroup(t *testing.T) {
	source := &fakeSource{
		autocompleteErr:    errors.New("down"),
		relationOptionsErr: errors.New("down"),
	}
	resolver := filters.NewResolver(source)

	groups, err := resolver.Resolve(context.Background(), articleModel())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	category := groups[2]
	if category.Kind != filters.KindRelation || len(category.Options) != 0 {
		t.Fatalf("category group = %+v, want empty relation group", category)
	}
}

func TestRelationOptionsCachedPerTarget(t *testing.T) {
	source := &fakeSource{results: []client.OptionRef{{ID: 1, Text: "One"}}}
	resolver := filters.NewResolver(source)

	if _, err := resolver.Resolve(context.Background(), articleModel()); err != nil {
		t.Fatalf("first Resolve() error: %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), articleModel()); err != nil {
		t.Fatalf("second Resolve() error: %v", err)
	}
	if source.autocompleteCalls != 1 {
		t.Fatalf("autocomplete called %d times, want 1 (second resolve cached)", source.autocompleteCalls)
	}

	// A different model filtering on the same target rides the same entry.
	comment := &schema.Model{
		Info: schema.Info{AppLabel: "news", ModelName: "comment"},
		Fields: []schema.Field{
			{Name: "category", Relation: &schema.Relation{
				AppLabel: "news", ModelName: "category", Kind: schema.RelationForeignKey,
			}},
		},
		ListFilter: []string{"category"},
	}
	if _, err := resolver.Resolve(context.Background(), comment); err != nil {
		t.Fatalf("comment Resolve() error: %v", err)
	}
	if source.autocompleteCalls != 1 {
		t.Fatalf("autocomplete called %d times, want 1 (target shared across models)", source.autocompleteCalls)
	}

	resolver.Invalidate(context.Background(), "news", "category")
	if _, err := resolver.Resolve(context.Background(), articleModel()); err != nil {
		t.Fatalf("post-invalidate Resolve() error: %v", err)
	}
	if source.autocompleteCalls != 2 {
		t.Fatalf("autocomplete called %d times after invalidate, want 2", source.autocompleteCalls)
	}
}

func TestRelationFailureIsNotCached(t *testing.T) {
	source := &fakeSource{
		autocompleteErr:    errors.New("down"),
		relationOptionsErr: errors.New("down"),
		results:            []client.OptionRef{{ID: 1, Text: "One"}},
	}
	resolver := filters.NewResolver(source)

	if _, err := resolver.Resolve(context.Background(), articleModel()); err != nil {
		t.Fatalf("failing Resolve() error: %v", err)
	}

	source.autocompleteErr = nil
	groups, err := resolver.Resolve(context.Background(), articleModel())
	if err != nil {
		t.Fatalf("recovered Resolve() error: %v", err)
	}
	if len(groups[2].Options) != 1 {
		t.Fatalf("category options = %+v, want the recovered fetch", groups[2].Options)
	}
	if source.autocompleteCalls != 2 {
		t.Fatalf("autocomplete called %d times, want 2 (failure must not stick)", source.autocompleteCalls)
	}
}

func TestUnknownFilterFieldBecomesTextGroup(t *testing.T) {
	resolver := filters.NewResolver(&fakeSource{})
	model := &schema.Model{
		Info:       schema.Info{AppLabel: "news", ModelName: "article"},
		ListFilter: []string{"created_at"},
	}
	groups, err := resolver.Resolve(context.Background(), model)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []filters.Group{{Field: "created_at", Label: "Created At", Kind: filters.KindText}}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}
