package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-adminkit/pkg/schema"

	"go.uber.org/zap"
)

// LoginResult is the authenticated session returned by Login.
type LoginResult struct {
	User    schema.User `json:"user"`
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
}

// OptionRef is one selectable relation target.
type OptionRef struct {
	ID   any    `json:"id"`
	Text string `json:"text"`
}

// OptionSet is a page of relation options.
type OptionSet struct {
	Results []OptionRef `json:"results"`
	HasMore bool        `json:"has_more"`
}

// ActionResult reports the outcome of a named bulk action.
type ActionResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	AffectedCount int    `json:"affected_count"`
}

// BulkUpdateError describes one record that failed inside a bulk update.
type BulkUpdateError struct {
	ID    any    `json:"id"`
	Error string `json:"error"`
}

// BulkUpdateResult reports a bulk update. Success may be true even when some
// rows failed; callers must inspect Errors.
type BulkUpdateResult struct {
	Success      bool              `json:"success"`
	UpdatedCount int               `json:"updated_count"`
	Errors       []BulkUpdateError `json:"errors"`
}

// DateHierarchy lists the drill-down values available at one level of a
// model's date hierarchy.
type DateHierarchy struct {
	Field string `json:"field"`
	Level string `json:"level"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Dates []int  `json:"dates"`
}

// MessageResult is a plain acknowledgement body.
type MessageResult struct {
	Message string `json:"message"`
}

func modelPath(app, model string, parts ...string) string {
	segs := append([]string{app, model}, parts...)
	var b strings.Builder
	for _, s := range segs {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	b.WriteString("/")
	return b.String()
}

// Login authenticates with an identifier (username or email) and stores the
// returned token pair. A 401 here means bad credentials and never triggers
// the refresh path.
func (c *Client) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	var result LoginResult
	body := map[string]string{"username": identifier, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login/", nil, body, &result,
		requestOpts{noAuth: true, noRefresh: true})
	if err != nil {
		return LoginResult{}, err
	}
	c.tokens.SetPair(result.Access, result.Refresh)
	return result, nil
}

// Logout tells the server to revoke the session and clears the local pair.
// The local clear happens even when the server call fails; the session is
// over either way.
func (c *Client) Logout(ctx context.Context) error {
	defer c.tokens.Clear()
	err := c.do(ctx, http.MethodPost, "/auth/logout/", nil,
		map[string]string{"refresh": c.tokens.Refresh()}, nil,
		requestOpts{noRefresh: true})
	if err != nil {
		c.log.Debug("logout request failed", zap.Error(err))
	}
	return nil
}

// CurrentUser fetches the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (schema.User, error) {
	var user schema.User
	err := c.do(ctx, http.MethodGet, "/auth/user/", nil, nil, &user, requestOpts{})
	return user, err
}

// UpdateProfile patches the authenticated user's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (schema.User, error) {
	var user schema.User
	err := c.do(ctx, http.MethodPatch, "/auth/user/", nil, fields, &user, requestOpts{})
	return user, err
}

// ChangePassword swaps the current password for a new one.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (MessageResult, error) {
	var result MessageResult
	body := map[string]string{"current_password": current, "new_password": next}
	err := c.do(ctx, http.MethodPost, "/auth/password-change/", nil, body, &result, requestOpts{})
	return result, err
}

// RequestPasswordReset asks the server to mail a reset link. Anonymous.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (MessageResult, error) {
	var result MessageResult
	err := c.do(ctx, http.MethodPost, "/auth/password-reset/", nil,
		map[string]string{"email": email}, &result,
		requestOpts{noAuth: true, noRefresh: true})
	return result, err
}

// ConfirmPasswordReset completes a reset started by RequestPasswordReset.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, password string) (MessageResult, error) {
	var result MessageResult
	body := map[string]string{"uid": uid, "token": token, "new_password": password}
	err := c.do(ctx, http.MethodPost, "/auth/password-reset/confirm/", nil, body, &result,
		requestOpts{noAuth: true, noRefresh: true})
	return result, err
}

// SiteInfo fetches branding before any login happens.
func (c *Client) SiteInfo(ctx context.Context) (schema.Site, error) {
	var site schema.Site
	err := c.do(ctx, http.MethodGet, "/site/", nil, nil, &site, requestOpts{noAuth: true, noRefresh: true})
	return site, err
}

// GlobalSchema fetches the full admin site description: apps, models,
// navigation and the current user's permissions.
func (c *Client) GlobalSchema(ctx context.Context) (schema.Global, error) {
	var global schema.Global
	err := c.do(ctx, http.MethodGet, "/schema/", nil, nil, &global, requestOpts{})
	return global, err
}

// ModelSchema fetches one model's admin description.
func (c *Client) ModelSchema(ctx context.Context, app, model string) (schema.Model, error) {
	var m schema.Model
	err := c.do(ctx, http.MethodGet, modelPath(app, model, "schema"), nil, nil, &m, requestOpts{})
	return m, err
}

// List fetches a page of records. params carries pagination, ordering,
// search and filter values exactly as the server expects them.
func (c *Client) List(ctx context.Context, app, model string, params url.Values) (schema.Page, error) {
	var page schema.Page
	err := c.do(ctx, http.MethodGet, modelPath(app, model), params, nil, &page, requestOpts{})
	return page, err
}

// Get fetches a single record by primary key.
func (c *Client) Get(ctx context.Context, app, model, id string) (schema.Record, error) {
	var record schema.Record
	err := c.do(ctx, http.MethodGet, modelPath(app, model, id), nil, nil, &record, requestOpts{})
	return record, err
}

// Create adds a record and returns the stored version.
func (c *Client) Create(ctx context.Context, app, model string, payload map[string]any) (schema.Record, error) {
	var record schema.Record
	err := c.do(ctx, http.MethodPost, modelPath(app, model), nil, payload, &record, requestOpts{})
	return record, err
}

// Update replaces a record.
func (c *Client) Update(ctx context.Context, app, model, id string, payload map[string]any) (schema.Record, error) {
	var record schema.Record
	err := c.do(ctx, http.MethodPut, modelPath(app, model, id), nil, payload, &record, requestOpts{})
	return record, err
}

// PartialUpdate patches a subset of a record's fields.
func (c *Client) PartialUpdate(ctx context.Context, app, model, id string, payload map[string]any) (schema.Record, error) {
	var record schema.Record
	err := c.do(ctx, http.MethodPatch, modelPath(app, model, id), nil, payload, &record, requestOpts{})
	return record, err
}

// Delete removes a record by primary key.
func (c *Client) Delete(ctx context.Context, app, model, id string) error {
	return c.do(ctx, http.MethodDelete, modelPath(app, model, id), nil, nil, nil, requestOpts{})
}

// Autocomplete searches a model's dedicated autocomplete endpoint.
func (c *Client) Autocomplete(ctx context.Context, app, model, query string, pageSize int) (OptionSet, error) {
	return c.options(ctx, modelPath(app, model, "autocomplete"), nil, query, pageSize)
}

// RelationOptions lists selectable values for a relation target via the
// global endpoint, addressed by app label and model name. Unlike
// Autocomplete it is always available, so it doubles as the fallback when a
// model has no autocomplete endpoint.
func (c *Client) RelationOptions(ctx context.Context, app, model, query string, pageSize int) (OptionSet, error) {
	params := url.Values{}
	params.Set("app_label", app)
	params.Set("model_name", model)
	return c.options(ctx, "/relation-options/", params, query, pageSize)
}

func (c *Client) options(ctx context.Context, path string, params url.Values, query string, pageSize int) (OptionSet, error) {
	if params == nil {
		params = url.Values{}
	}
	if query != "" {
		params.Set("q", query)
	}
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}
	var set OptionSet
	err := c.do(ctx, http.MethodGet, path, params, nil, &set, requestOpts{})
	return set, err
}

// RunAction executes a named admin action against the selected records.
func (c *Client) RunAction(ctx context.Context, app, model, action string, ids []string) (ActionResult, error) {
	var result ActionResult
	body := map[string]any{"ids": ids}
	err := c.do(ctx, http.MethodPost, modelPath(app, model, "actions", action), nil, body, &result, requestOpts{})
	return result, err
}

// BulkUpdate saves inline list edits in one round trip. Each update must
// carry the record's primary key plus the changed fields.
func (c *Client) BulkUpdate(ctx context.Context, app, model string, updates []map[string]any) (BulkUpdateResult, error) {
	var result BulkUpdateResult
	body := map[string]any{"updates": updates}
	err := c.do(ctx, http.MethodPost, modelPath(app, model, "bulk-update"), nil, body, &result, requestOpts{})
	return result, err
}

// DateHierarchyLevels fetches the drill-down values for a model's date
// hierarchy. year and month narrow the level; zero means unset.
func (c *Client) DateHierarchyLevels(ctx context.Context, app, model string, year, month int) (DateHierarchy, error) {
	params := url.Values{}
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if month > 0 {
		params.Set("month", strconv.Itoa(month))
	}
	var dh DateHierarchy
	err := c.do(ctx, http.MethodGet, modelPath(app, model, "date-hierarchy"), params, nil, &dh, requestOpts{})
	return dh, err
}

// GlobalSearch queries every searchable model at once. A blank query skips
// the round trip and returns an empty result.
func (c *Client) GlobalSearch(ctx context.Context, query string) (schema.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return schema.SearchResult{}, nil
	}
	params := url.Values{"q": []string{query}}
	var result schema.SearchResult
	err := c.do(ctx, http.MethodGet, "/search/", params, nil, &result, requestOpts{})
	return result, err
}
