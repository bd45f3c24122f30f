// Package render assembles full console pages: the layout chrome around the
// table and form markup the domain packages produce. Templates are pongo2
// behind the TemplateRenderer seam, so operators can swap the chrome without
// touching the domain rendering.
package render

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-adminkit/pkg/filters"
	"github.com/goliatone/go-adminkit/pkg/form"
	"github.com/goliatone/go-adminkit/pkg/render/template"
	"github.com/goliatone/go-adminkit/pkg/render/template/gotemplate"
	"github.com/goliatone/go-adminkit/pkg/schema"
	"github.com/goliatone/go-adminkit/pkg/table"
)

//go:embed templates/*.tpl
var builtinTemplates embed.FS

// Pages renders the console's HTML pages.
type Pages struct {
	engine template.TemplateRenderer
	theme  *theme.RendererConfig
	site   schema.Site
	nav    []schema.NavGroup
}

// Option configures Pages.
type Option func(*Pages)

// WithEngine replaces the built-in template engine, typically to point at
// overridden templates on disk.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(p *Pages) {
		if engine != nil {
			p.engine = engine
		}
	}
}

// WithTheme applies a theme configuration to every page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(p *Pages) {
		p.theme = cfg
	}
}

// WithNavigation sets the sidebar groups, usually from the global schema.
func WithNavigation(nav []schema.NavGroup) Option {
	return func(p *Pages) {
		p.nav = nav
	}
}

// New creates a page renderer for one admin site.
func New(site schema.Site, opts ...Option) (*Pages, error) {
	p := &Pages{site: site}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		files, err := fs.Sub(builtinTemplates, "templates")
		if err != nil {
			return nil, fmt.Errorf("render: builtin templates: %w", err)
		}
		engine, err := gotemplate.New(gotemplate.WithFS(files))
		if err != nil {
			return nil, fmt.Errorf("render: create engine: %w", err)
		}
		p.engine = engine
	}
	return p, nil
}

// ListPage renders the full list page for one model: toolbar, filter
// sidebar, date hierarchy mount and the table itself.
func (p *Pages) ListPage(model *schema.Model, t table.Table, groups []filters.Group, search string) (string, error) {
	content, err := p.engine.RenderTemplate("list", map[string]any{
		"app":            model.Info.AppLabel,
		"model":          model.Info.ModelName,
		"title":          model.Info.VerboseNamePlural,
		"singular":       model.Info.VerboseName,
		"search":         search,
		"search_enabled": len(model.SearchFields) > 0,
		"can_add":        model.Permissions.Add,
		"add_url":        fmt.Sprintf("/%s/%s/add", model.Info.AppLabel, model.Info.ModelName),
		"filter_groups":  groups,
		"date_hierarchy": model.DateHierarchy,
		"table":          table.RenderHTML(t),
	})
	if err != nil {
		return "", fmt.Errorf("render: list page: %w", err)
	}
	return p.chrome(model.Info.VerboseNamePlural, content, model.CustomCSS, model.CustomJS)
}

// DetailPage renders the edit surface for one record.
func (p *Pages) DetailPage(model *schema.Model, f form.Form) (string, error) {
	content, err := p.engine.RenderTemplate("detail", map[string]any{
		"app":          model.Info.AppLabel,
		"model":        model.Info.ModelName,
		"title":        model.Info.VerboseName,
		"object_tools": model.ObjectTools,
		"form":         form.RenderHTML(f),
	})
	if err != nil {
		return "", fmt.Errorf("render: detail page: %w", err)
	}
	return p.chrome(model.Info.VerboseName, content, model.CustomCSS, model.CustomJS)
}

func (p *Pages) chrome(title, content string, css, js []string) (string, error) {
	out, err := p.engine.RenderTemplate("layout", map[string]any{
		"title":      title,
		"site":       p.site,
		"navigation": p.nav,
		"theme":      themeContext(p.theme),
		"custom_css": append(append([]string{}, p.site.CustomCSS...), css...),
		"custom_js":  append(append([]string{}, p.site.CustomJS...), js...),
		"content":    content,
	})
	if err != nil {
		return "", fmt.Errorf("render: layout: %w", err)
	}
	return out, nil
}

// themeContext flattens a theme configuration into template data. CSS vars
// collapse into a single style payload with stable ordering.
func themeContext(cfg *theme.RendererConfig) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	return map[string]any{
		"name":           cfg.Theme,
		"variant":        cfg.Variant,
		"tokens":         cfg.Tokens,
		"partials":       cfg.Partials,
		"css_vars_style": cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		name := key
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		fmt.Fprintf(&b, "%s: %s; ", name, vars[key])
	}
	return strings.TrimSpace(b.String())
}
