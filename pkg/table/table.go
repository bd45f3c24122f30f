// Package table turns a model schema plus one page of records into a
// renderable table: normalized columns, formatted cells, link and inline-edit
// resolution, and pagination state.
package table

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-adminkit/pkg/schema"
)

// CellKind tags how a cell renders.
type CellKind string

const (
	CellText     CellKind = "text"
	CellLink     CellKind = "link"
	CellHTML     CellKind = "html"
	CellEditable CellKind = "editable"
)

// EditorKind selects the in-place input revealed for an editable cell.
type EditorKind string

const (
	EditorText     EditorKind = "text"
	EditorNumber   EditorKind = "number"
	EditorCheckbox EditorKind = "checkbox"
	EditorSelect   EditorKind = "select"
)

// Cell is one formatted table cell.
type Cell struct {
	Column string
	Kind   CellKind
	Text   string
	HTML   string
	Href   string

	// Editable-cell extras: the raw value round-trips into the revealed
	// input, Choices feed select editors.
	Editor  EditorKind
	Value   any
	Choices []schema.Choice
}

// Row is one record's cells plus its primary key.
type Row struct {
	PK    string
	Cells []Cell
}

// EmptyState distinguishes an empty result set from an empty page of a
// non-empty set.
type EmptyState string

const (
	EmptyNone      EmptyState = ""
	EmptyResultSet EmptyState = "no-records"
	EmptyPage      EmptyState = "no-results-on-page"
)

// Pagination is the table footer state. It is present whenever any records
// exist anywhere in the result set, independent of the current page's rows.
type Pagination struct {
	Page        int
	PageSize    int
	TotalPages  int
	TotalCount  int
	HasPrevious bool
	HasNext     bool
}

// Table is the fully resolved rendering model.
type Table struct {
	Columns    []schema.Column
	Rows       []Row
	Pagination *Pagination
	Empty      EmptyState
}

// Options tune table building.
type Options struct {
	// BasePath prefixes detail links, e.g. "/news/article".
	BasePath string

	// DateFormat overrides the localized date layout.
	DateFormat string

	// InlineEdit enables editable cells for the schema's list_editable
	// columns. Leave false when no edit callback is wired.
	InlineEdit bool

	// HTMLPolicy sanitizes HTML-flagged cells. The backend is the trust
	// boundary for this content, so the default policy is permissive UGC;
	// inject a stricter policy when rendering for untrusted viewers.
	HTMLPolicy *bluemonday.Policy
}

// Build assembles the table model for one page of records.
func Build(model *schema.Model, page schema.Page, opts Options) Table {
	if model == nil {
		return Table{Empty: EmptyResultSet}
	}

	columns := presentColumns(model.ListDisplay, page.Results)
	linkSet := toSet(model.LinkColumns())
	editableSet := map[string]struct{}{}
	if opts.InlineEdit {
		for _, name := range model.ListEditable {
			// A column cannot be both the link and the editor.
			if _, isLink := linkSet[name]; !isLink {
				editableSet[name] = struct{}{}
			}
		}
	}

	policy := opts.HTMLPolicy
	if policy == nil {
		policy = bluemonday.UGCPolicy()
	}

	rows := make([]Row, 0, len(page.Results))
	for _, record := range page.Results {
		pk := record.PK(model.PKField())
		cells := make([]Cell, 0, len(columns))
		for _, col := range columns {
			cells = append(cells, buildCell(model, col, record, pk, linkSet, editableSet, policy, opts))
		}
		rows = append(rows, Row{PK: pk, Cells: cells})
	}

	t := Table{Columns: columns, Rows: rows}

	if page.Count > 0 {
		totalPages := page.TotalPages
		if totalPages == 0 {
			totalPages = schema.TotalPages(page.Count, page.PageSize)
		}
		current := schema.ClampPage(page.Page, totalPages)
		t.Pagination = &Pagination{
			Page:        current,
			PageSize:    page.PageSize,
			TotalPages:  totalPages,
			TotalCount:  page.Count,
			HasPrevious: current > 1,
			HasNext:     current < totalPages,
		}
		if len(page.Results) == 0 {
			t.Empty = EmptyPage
		}
	} else {
		t.Empty = EmptyResultSet
	}

	return t
}

func buildCell(model *schema.Model, col schema.Column, record schema.Record, pk string, linkSet, editableSet map[string]struct{}, policy *bluemonday.Policy, opts Options) Cell {
	value := record[col.Name]
	cell := Cell{Column: col.Name, Value: value}

	if col.IsHTML {
		cell.Kind = CellHTML
		if raw, ok := value.(string); ok {
			cell.HTML = policy.Sanitize(raw)
		} else {
			cell.Text = FormatValue(value, opts.DateFormat)
			cell.Kind = CellText
		}
		return cell
	}

	cell.Text = FormatValue(value, opts.DateFormat)

	if _, editable := editableSet[col.Name]; editable {
		cell.Kind = CellEditable
		if field, ok := model.Field(col.Name); ok {
			cell.Editor = editorFor(field)
			cell.Choices = field.Choices
		} else {
			cell.Editor = EditorText
		}
		return cell
	}

	if _, link := linkSet[col.Name]; link && pk != "" {
		cell.Kind = CellLink
		cell.Href = joinPath(opts.BasePath, pk)
		return cell
	}

	cell.Kind = CellText
	return cell
}

func editorFor(field schema.Field) EditorKind {
	switch {
	case field.Boolean():
		return EditorCheckbox
	case len(field.Choices) > 0:
		return EditorSelect
	case field.Type == "integer" || field.Type == "number" || field.Widget == "number" || field.Widget == "decimal":
		return EditorNumber
	default:
		return EditorText
	}
}

// presentColumns filters declared columns down to those actually present in
// the returned page, so computed columns missing from a response don't render
// empty. When filtering removes everything the first declared column stays so
// the table is never headerless.
func presentColumns(declared []schema.Column, records []schema.Record) []schema.Column {
	if len(declared) == 0 || len(records) == 0 {
		return declared
	}

	present := make([]schema.Column, 0, len(declared))
	for _, col := range declared {
		for _, record := range records {
			if _, ok := record[col.Name]; ok {
				present = append(present, col)
				break
			}
		}
	}
	if len(present) == 0 {
		return declared[:1]
	}
	return present
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func joinPath(base, id string) string {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "/" + id
	}
	return base + "/" + id
}
