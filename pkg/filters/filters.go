// Package filters turns a model's list_filter declaration into concrete
// option groups the list page can render. Choice and boolean fields resolve
// locally; relation fields cost a network round trip per target resource, so
// relation lookups run concurrently and each target's option list is cached
// on its own for a few minutes. Two models filtering on the same target
// share one cached fetch.
package filters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-adminkit/pkg/cache"
	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/schema"
)

// DefaultTTL bounds how stale a relation target's cached option list may get
// before the next list render re-fetches it.
const DefaultTTL = 5 * time.Minute

const relationPageSize = 50

// Kind tells the list page what control to render for a group.
type Kind string

const (
	KindChoice   Kind = "choice"
	KindBoolean  Kind = "boolean"
	KindRelation Kind = "relation"
	KindText     Kind = "text"
)

// Option is one selectable filter value. Value is the query-string
// representation, not the display one.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Group is the resolved option set for one list_filter field.
type Group struct {
	Field   string   `json:"field"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Options []Option `json:"options,omitempty"`
}

// OptionSource fetches relation targets. *client.Client satisfies it.
type OptionSource interface {
	Autocomplete(ctx context.Context, app, model, query string, pageSize int) (client.OptionSet, error)
	RelationOptions(ctx context.Context, app, model, query string, pageSize int) (client.OptionSet, error)
}

// Resolver resolves and caches filter option groups.
type Resolver struct {
	source OptionSource
	store  cache.Cache
	ttl    time.Duration
	log    *zap.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTTL overrides the cache lifetime for resolved groups.
func WithTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithCache replaces the default in-memory store.
func WithCache(store cache.Cache) ResolverOption {
	return func(r *Resolver) {
		if store != nil {
			r.store = store
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver creates a Resolver backed by source.
func NewResolver(source OptionSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		source: source,
		store:  cache.NewMemory(),
		ttl:    DefaultTTL,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve builds the option groups for every field in model.ListFilter.
// Choice and boolean groups come straight from the schema; relation groups
// are assembled from the per-target option cache. A relation lookup that
// fails yields a group with no options rather than failing the whole list
// page.
func (r *Resolver) Resolve(ctx context.Context, model *schema.Model) ([]Group, error) {
	if model == nil || len(model.ListFilter) == 0 {
		return nil, nil
	}

	groups := make([]Group, len(model.ListFilter))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range model.ListFilter {
		g.Go(func() error {
			groups[i] = r.resolveField(gctx, model, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("filters: resolve %s.%s: %w", model.Info.AppLabel, model.Info.ModelName, err)
	}
	return groups, nil
}

func relationKey(appLabel, modelName string) string {
	return fmt.Sprintf("filters:relation:%s:%s", appLabel, modelName)
}

// Invalidate forgets the cached option list for one relation target, so the
// next filter sidebar naming it re-fetches.
func (r *Resolver) Invalidate(ctx context.Context, appLabel, modelName string) {
	_ = r.store.Delete(ctx, relationKey(appLabel, modelName))
}

func (r *Resolver) resolveField(ctx context.Context, model *schema.Model, name string) Group {
	field, ok := model.Field(name)
	if !ok {
		return Group{Field: name, Label: schema.Labelize(name), Kind: KindText}
	}
	group := Group{Field: name, Label: field.Label()}

	switch {
	case len(field.Choices) > 0:
		group.Kind = KindChoice
		for _, c := range field.Choices {
			group.Options = append(group.Options, Option{
				Value: fmt.Sprint(c.Value),
				Label: c.Label,
			})
		}
	case field.Boolean():
		group.Kind = KindBoolean
		group.Options = []Option{
			{Value: "true", Label: "Yes"},
			{Value: "false", Label: "No"},
		}
	case field.Relation != nil:
		group.Kind = KindRelation
		group.Options = r.relationOptions(ctx, field.Relation)
	default:
		group.Kind = KindText
	}
	return group
}

// relationOptions serves a target's option list from the per-target cache,
// fetching on a miss. Fetches prefer the relation's autocomplete endpoint
// and fall back to the always-available relation-options one. Both failing
// leaves the filter empty and uncached; the list page still renders.
func (r *Resolver) relationOptions(ctx context.Context, rel *schema.Relation) []Option {
	key := relationKey(rel.AppLabel, rel.ModelName)
	if raw, err := r.store.Get(ctx, key); err == nil {
		var options []Option
		if err := json.Unmarshal(raw, &options); err == nil {
			return options
		}
	}

	set, err := r.source.Autocomplete(ctx, rel.AppLabel, rel.ModelName, "", relationPageSize)
	if err != nil {
		set, err = r.source.RelationOptions(ctx, rel.AppLabel, rel.ModelName, "", relationPageSize)
	}
	if err != nil {
		r.log.Debug("relation filter options unavailable",
			zap.String("app", rel.AppLabel),
			zap.String("model", rel.ModelName),
			zap.Error(err))
		return nil
	}
	options := make([]Option, 0, len(set.Results))
	for _, ref := range set.Results {
		options = append(options, Option{Value: fmt.Sprint(ref.ID), Label: ref.Text})
	}
	if raw, err := json.Marshal(options); err == nil {
		_ = r.store.Set(ctx, key, raw, r.ttl)
	}
	return options
}
