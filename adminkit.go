// Package adminkit renders schema-driven admin consoles in Go. A backend
// publishes what its resources look like; this module turns that schema into
// widgets, validation rules, tables and full HTML pages, and carries the
// authenticated REST session behind them.
//
// The root package re-exports the types most integrations touch. The
// subpackages stay importable directly for anything finer grained.
package adminkit

import (
	"context"

	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/console"
	"github.com/goliatone/go-adminkit/pkg/form"
	"github.com/goliatone/go-adminkit/pkg/render"
	"github.com/goliatone/go-adminkit/pkg/schema"
	"github.com/goliatone/go-adminkit/pkg/serialize"
	"github.com/goliatone/go-adminkit/pkg/table"
)

// Client is the REST client for the admin API.
type Client = client.Client

// Console is the session facade: cached schemas, list pages and filters.
type Console = console.Console

// ListQuery is the state of one list page request.
type ListQuery = console.ListQuery

// Model is one resource's admin schema.
type Model = schema.Model

// Record is one row of a resource.
type Record = schema.Record

// Form is the edit surface built for one record.
type Form = form.Form

// Table is the rendered list model for one page of records.
type Table = table.Table

// ValidationError carries per-field messages from a rejected submission.
type ValidationError = client.ValidationError

// New connects to an admin backend and returns the session facade.
func New(baseURL string, clientOpts []client.Option, consoleOpts ...console.Option) (*Console, error) {
	cl, err := client.New(baseURL, clientOpts...)
	if err != nil {
		return nil, err
	}
	return console.New(cl, consoleOpts...), nil
}

// ListHTML fetches one page of records and renders it as table markup. The
// simplest entry point for callers that just want HTML output.
func ListHTML(ctx context.Context, con *Console, app, model string, q ListQuery) (string, error) {
	m, err := con.Model(ctx, app, model)
	if err != nil {
		return "", err
	}
	page, err := con.List(ctx, app, model, q)
	if err != nil {
		return "", err
	}
	t := table.Build(m, page, table.Options{
		BasePath: "/" + app + "/" + model,
	})
	return table.RenderHTML(t), nil
}

// FormHTML fetches a record and renders its edit form. id may be empty for a
// create form.
func FormHTML(ctx context.Context, con *Console, app, model, id string) (string, error) {
	m, err := con.Model(ctx, app, model)
	if err != nil {
		return "", err
	}
	var record Record
	mode := serialize.ModeCreate
	if id != "" {
		record, err = con.Record(ctx, app, model, id)
		if err != nil {
			return "", err
		}
		mode = serialize.ModeEdit
	}
	return form.RenderHTML(form.Build(m, record, mode)), nil
}

// NewPages creates the full-page renderer for an admin site.
func NewPages(site schema.Site, opts ...render.Option) (*render.Pages, error) {
	return render.New(site, opts...)
}
