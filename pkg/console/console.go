// Package console ties the client, schema cache and filter resolver into one
// session-scoped facade. Schemas and list pages are cached with independent
// TTLs; every mutation drops the affected model's cached pages so the next
// list render reflects it, and logout flushes everything the session saw.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-adminkit/pkg/cache"
	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/filters"
	"github.com/goliatone/go-adminkit/pkg/form"
	"github.com/goliatone/go-adminkit/pkg/schema"
	"github.com/goliatone/go-adminkit/pkg/serialize"
	"github.com/goliatone/go-adminkit/pkg/table"
)

const (
	defaultSchemaTTL = 5 * time.Minute
	defaultListTTL   = 30 * time.Second
)

// Console is the session facade. Safe for concurrent use.
type Console struct {
	client    *client.Client
	store     cache.Cache
	filters   *filters.Resolver
	log       *zap.Logger
	schemaTTL time.Duration
	listTTL   time.Duration
}

// Option configures a Console.
type Option func(*Console)

// WithCache replaces the default in-memory store. Pass a cache.Redis to
// share schemas across processes.
func WithCache(store cache.Cache) Option {
	return func(c *Console) {
		if store != nil {
			c.store = store
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSchemaTTL overrides how long model schemas stay cached.
func WithSchemaTTL(ttl time.Duration) Option {
	return func(c *Console) {
		if ttl > 0 {
			c.schemaTTL = ttl
		}
	}
}

// WithListTTL overrides how long list pages stay cached.
func WithListTTL(ttl time.Duration) Option {
	return func(c *Console) {
		if ttl > 0 {
			c.listTTL = ttl
		}
	}
}

// New creates a Console around an authenticated client.
func New(cl *client.Client, opts ...Option) *Console {
	c := &Console{
		client:    cl,
		store:     cache.NewMemory(),
		log:       zap.NewNop(),
		schemaTTL: defaultSchemaTTL,
		listTTL:   defaultListTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	// The filter resolver shares the console store so logout flushes its
	// entries too.
	c.filters = filters.NewResolver(cl, filters.WithCache(c.store), filters.WithLogger(c.log))
	return c
}

// Client exposes the underlying API client for calls the facade does not
// cover.
func (c *Console) Client() *client.Client { return c.client }

func (c *Console) cached(ctx context.Context, key string, out any) bool {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Debug("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = c.store.Delete(ctx, key)
		return false
	}
	return true
}

func (c *Console) put(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, key, raw, ttl)
}

// Global fetches the admin site schema, cached for the schema TTL.
func (c *Console) Global(ctx context.Context) (schema.Global, error) {
	var global schema.Global
	if c.cached(ctx, "schema:global", &global) {
		return global, nil
	}
	global, err := c.client.GlobalSchema(ctx)
	if err != nil {
		return schema.Global{}, err
	}
	c.put(ctx, "schema:global", global, c.schemaTTL)
	return global, nil
}

// Model fetches one model's schema, cached for the schema TTL.
func (c *Console) Model(ctx context.Context, app, model string) (*schema.Model, error) {
	key := fmt.Sprintf("schema:model:%s:%s", app, model)
	var m schema.Model
	if c.cached(ctx, key, &m) {
		return &m, nil
	}
	m, err := c.client.ModelSchema(ctx, app, model)
	if err != nil {
		return nil, err
	}
	c.put(ctx, key, m, c.schemaTTL)
	return &m, nil
}

func listPrefix(app, model string) string {
	return fmt.Sprintf("list:%s:%s:", app, model)
}

// List fetches one page of records. Pages are cached by their normalized
// query string, so two callers asking for the same page share one round
// trip until the TTL lapses or a mutation invalidates the model.
func (c *Console) List(ctx context.Context, app, model string, q ListQuery) (schema.Page, error) {
	m, err := c.Model(ctx, app, model)
	if err != nil {
		return schema.Page{}, err
	}
	params := q.Values(m.DateHierarchy)
	key := listPrefix(app, model) + params.Encode()

	var page schema.Page
	if c.cached(ctx, key, &page) {
		return page, nil
	}
	page, err = c.client.List(ctx, app, model, params)
	if err != nil {
		return schema.Page{}, err
	}
	c.put(ctx, key, page, c.listTTL)
	return page, nil
}

// Record fetches one record. Detail views always hit the server; only list
// pages and schemas are cached.
func (c *Console) Record(ctx context.Context, app, model, id string) (schema.Record, error) {
	return c.client.Get(ctx, app, model, id)
}

// invalidate drops every cached page of one model.
func (c *Console) invalidate(ctx context.Context, app, model string) {
	if err := c.store.DeletePrefix(ctx, listPrefix(app, model)); err != nil {
		c.log.Debug("list invalidation failed", zap.String("app", app), zap.String("model", model), zap.Error(err))
	}
}

// Create adds a record and invalidates the model's cached pages.
func (c *Console) Create(ctx context.Context, app, model string, payload map[string]any) (schema.Record, error) {
	record, err := c.client.Create(ctx, app, model, payload)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, app, model)
	return record, nil
}

// Update replaces a record and invalidates the model's cached pages.
func (c *Console) Update(ctx context.Context, app, model, id string, payload map[string]any) (schema.Record, error) {
	record, err := c.client.Update(ctx, app, model, id, payload)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, app, model)
	return record, nil
}

// PartialUpdate patches a record and invalidates the model's cached pages.
func (c *Console) PartialUpdate(ctx context.Context, app, model, id string, payload map[string]any) (schema.Record, error) {
	record, err := c.client.PartialUpdate(ctx, app, model, id, payload)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, app, model)
	return record, nil
}

// Delete removes a record and invalidates the model's cached pages.
func (c *Console) Delete(ctx context.Context, app, model, id string) error {
	if err := c.client.Delete(ctx, app, model, id); err != nil {
		return err
	}
	c.invalidate(ctx, app, model)
	return nil
}

// RunAction executes a bulk action and invalidates the model's cached pages.
func (c *Console) RunAction(ctx context.Context, app, model, action string, ids []string) (client.ActionResult, error) {
	result, err := c.client.RunAction(ctx, app, model, action, ids)
	if err != nil {
		return client.ActionResult{}, err
	}
	c.invalidate(ctx, app, model)
	return result, nil
}

// BulkUpdate saves inline edits and invalidates the model's cached pages.
func (c *Console) BulkUpdate(ctx context.Context, app, model string, updates []map[string]any) (client.BulkUpdateResult, error) {
	result, err := c.client.BulkUpdate(ctx, app, model, updates)
	if err != nil {
		return client.BulkUpdateResult{}, err
	}
	c.invalidate(ctx, app, model)
	return result, nil
}

// Table fetches a page and builds its table model in one call.
func (c *Console) Table(ctx context.Context, app, model string, q ListQuery, opts table.Options) (table.Table, error) {
	m, err := c.Model(ctx, app, model)
	if err != nil {
		return table.Table{}, err
	}
	page, err := c.List(ctx, app, model, q)
	if err != nil {
		return table.Table{}, err
	}
	if opts.BasePath == "" {
		opts.BasePath = fmt.Sprintf("/%s/%s", app, model)
	}
	return table.Build(m, page, opts), nil
}

// Form fetches a record and builds its edit form. An empty id yields a
// create form.
func (c *Console) Form(ctx context.Context, app, model, id string) (form.Form, error) {
	m, err := c.Model(ctx, app, model)
	if err != nil {
		return form.Form{}, err
	}
	if id == "" {
		return form.Build(m, nil, serialize.ModeCreate), nil
	}
	record, err := c.Record(ctx, app, model, id)
	if err != nil {
		return form.Form{}, err
	}
	return form.Build(m, record, serialize.ModeEdit), nil
}

// FilterGroups resolves the filter sidebar for one model.
func (c *Console) FilterGroups(ctx context.Context, app, model string) ([]filters.Group, error) {
	m, err := c.Model(ctx, app, model)
	if err != nil {
		return nil, err
	}
	return c.filters.Resolve(ctx, m)
}

// DateDrilldown fetches the available date hierarchy values for the current
// selection.
func (c *Console) DateDrilldown(ctx context.Context, app, model string, sel DateSelection) (client.DateHierarchy, error) {
	return c.client.DateHierarchyLevels(ctx, app, model, sel.Year, sel.Month)
}

// Search runs the cross-model search. Never cached; results go stale faster
// than any sensible TTL.
func (c *Console) Search(ctx context.Context, query string) (schema.SearchResult, error) {
	return c.client.GlobalSearch(ctx, query)
}

// Login authenticates and drops whatever a previous session left cached.
func (c *Console) Login(ctx context.Context, identifier, password string) (client.LoginResult, error) {
	result, err := c.client.Login(ctx, identifier, password)
	if err != nil {
		return client.LoginResult{}, err
	}
	_ = c.store.Flush(ctx)
	return result, nil
}

// Logout ends the session and flushes every cached schema, page and filter
// set. Permission-dependent data must not leak into the next session.
func (c *Console) Logout(ctx context.Context) error {
	err := c.client.Logout(ctx)
	_ = c.store.Flush(ctx)
	return err
}
