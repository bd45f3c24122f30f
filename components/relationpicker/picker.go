// Package relationpicker drives the search-as-you-type control that backs
// relation widgets. It owns the debounce, the autocomplete-to-relation-
// options fallback and the selected set; rendering stays with the caller.
package relationpicker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/console"
	"github.com/goliatone/go-adminkit/pkg/schema"
)

const defaultPageSize = 20

// Source fetches candidate options. *client.Client satisfies it.
type Source interface {
	Autocomplete(ctx context.Context, app, model, query string, pageSize int) (client.OptionSet, error)
	RelationOptions(ctx context.Context, app, model, query string, pageSize int) (client.OptionSet, error)
}

// Picker is the state of one relation input.
type Picker struct {
	source   Source
	app      string
	model    string
	multiple bool
	pageSize int
	debounce *console.Debouncer
	log      *zap.Logger

	mu       sync.Mutex
	selected []client.OptionRef
}

// Option configures a Picker.
type Option func(*Picker)

// WithPageSize bounds how many candidates one search returns.
func WithPageSize(n int) Option {
	return func(p *Picker) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithDebounce overrides the pause before a keystroke triggers a search.
func WithDebounce(d time.Duration) Option {
	return func(p *Picker) {
		p.debounce = console.NewDebouncer(d)
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Picker) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a picker for the field's relation target.
func New(source Source, rel *schema.Relation, opts ...Option) *Picker {
	p := &Picker{
		source:   source,
		app:      rel.AppLabel,
		model:    rel.ModelName,
		multiple: rel.Many(),
		pageSize: defaultPageSize,
		debounce: console.NewDebouncer(console.DefaultDebounce),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search schedules a debounced lookup and delivers the results to deliver.
// Rapid successive calls cancel each other; only the last query's results
// arrive, so a slow response for "go" can never clobber the results for
// "gopher".
func (p *Picker) Search(ctx context.Context, query string, deliver func(client.OptionSet, error)) {
	p.debounce.Call(func() {
		deliver(p.SearchNow(ctx, query))
	})
}

// SearchNow looks candidates up immediately, preferring the autocomplete
// endpoint and falling back to relation-options.
func (p *Picker) SearchNow(ctx context.Context, query string) (client.OptionSet, error) {
	set, err := p.source.Autocomplete(ctx, p.app, p.model, query, p.pageSize)
	if err == nil {
		return set, nil
	}
	p.log.Debug("autocomplete unavailable, falling back",
		zap.String("app", p.app), zap.String("model", p.model), zap.Error(err))

	set, err = p.source.RelationOptions(ctx, p.app, p.model, query, p.pageSize)
	if err != nil {
		return client.OptionSet{}, fmt.Errorf("relationpicker: search %s.%s: %w", p.app, p.model, err)
	}
	return set, nil
}

// Select adds a candidate to the selection. Single-target pickers replace
// the previous choice; duplicates are ignored.
func (p *Picker) Select(ref client.OptionRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.multiple {
		p.selected = []client.OptionRef{ref}
		return
	}
	key := fmt.Sprint(ref.ID)
	for _, existing := range p.selected {
		if fmt.Sprint(existing.ID) == key {
			return
		}
	}
	p.selected = append(p.selected, ref)
}

// Deselect removes a candidate by id.
func (p *Picker) Deselect(id any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := fmt.Sprint(id)
	kept := p.selected[:0]
	for _, ref := range p.selected {
		if fmt.Sprint(ref.ID) != key {
			kept = append(kept, ref)
		}
	}
	p.selected = kept
}

// Selected returns a copy of the current selection.
func (p *Picker) Selected() []client.OptionRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]client.OptionRef(nil), p.selected...)
}

// Value returns the selection in submission shape: a bare id for single
// relations, a slice of ids for many-to-many ones, nil when nothing is
// picked.
func (p *Picker) Value() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.multiple {
		ids := make([]any, 0, len(p.selected))
		for _, ref := range p.selected {
			ids = append(ids, ref.ID)
		}
		return ids
	}
	if len(p.selected) == 0 {
		return nil
	}
	return p.selected[0].ID
}

// Stop cancels any pending debounced search.
func (p *Picker) Stop() {
	p.debounce.Stop()
}
