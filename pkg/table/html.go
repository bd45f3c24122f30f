package table

import (
	"fmt"
	"html"
	"strings"
)

// RenderHTML emits the table as markup in the same chrome style as the form
// renderer. Editable and link cells carry data attributes (data-editable,
// data-goto) as hooks for the embedding frontend's script; no script ships
// with the markup.
func RenderHTML(t Table) string {
	var b strings.Builder
	b.Grow(1024)

	b.WriteString("<div class=\"adminkit-table\">\n")
	b.WriteString("  <table>\n    <thead>\n      <tr>\n")
	for _, col := range t.Columns {
		b.WriteString("        <th data-column=\"")
		b.WriteString(html.EscapeString(col.Name))
		b.WriteString("\"")
		if col.Sortable {
			b.WriteString(" data-sortable=\"true\"")
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(col.Label))
		b.WriteString("</th>\n")
	}
	b.WriteString("      </tr>\n    </thead>\n    <tbody>\n")

	switch t.Empty {
	case EmptyResultSet:
		writeEmptyRow(&b, len(t.Columns), "No records.")
	case EmptyPage:
		writeEmptyRow(&b, len(t.Columns), "No results on this page.")
	}

	for _, row := range t.Rows {
		b.WriteString("      <tr data-pk=\"")
		b.WriteString(html.EscapeString(row.PK))
		b.WriteString("\">\n")
		for _, cell := range row.Cells {
			writeCell(&b, cell)
		}
		b.WriteString("      </tr>\n")
	}
	b.WriteString("    </tbody>\n  </table>\n")

	if p := t.Pagination; p != nil {
		b.WriteString(fmt.Sprintf(
			"  <nav class=\"adminkit-pagination\" data-page=\"%d\" data-total-pages=\"%d\" data-total-count=\"%d\">\n",
			p.Page, p.TotalPages, p.TotalCount,
		))
		if p.HasPrevious {
			b.WriteString(fmt.Sprintf("    <a data-goto=\"%d\" rel=\"prev\">Previous</a>\n", p.Page-1))
		}
		b.WriteString(fmt.Sprintf("    <span>Page %d of %d</span>\n", p.Page, p.TotalPages))
		if p.HasNext {
			b.WriteString(fmt.Sprintf("    <a data-goto=\"%d\" rel=\"next\">Next</a>\n", p.Page+1))
		}
		b.WriteString("  </nav>\n")
	}

	b.WriteString("</div>\n")
	return b.String()
}

func writeEmptyRow(b *strings.Builder, span int, message string) {
	if span < 1 {
		span = 1
	}
	fmt.Fprintf(b, "      <tr><td colspan=\"%d\" class=\"adminkit-empty\">%s</td></tr>\n", span, html.EscapeString(message))
}

func writeCell(b *strings.Builder, cell Cell) {
	switch cell.Kind {
	case CellHTML:
		b.WriteString("        <td data-html=\"true\">")
		b.WriteString(cell.HTML)
		b.WriteString("</td>\n")
	case CellLink:
		b.WriteString("        <td><a href=\"")
		b.WriteString(html.EscapeString(cell.Href))
		b.WriteString("\">")
		b.WriteString(html.EscapeString(cell.Text))
		b.WriteString("</a></td>\n")
	case CellEditable:
		b.WriteString("        <td data-editable=\"true\" data-editor=\"")
		b.WriteString(html.EscapeString(string(cell.Editor)))
		b.WriteString("\" data-column=\"")
		b.WriteString(html.EscapeString(cell.Column))
		b.WriteString("\">")
		b.WriteString(html.EscapeString(cell.Text))
		b.WriteString("</td>\n")
	default:
		b.WriteString("        <td>")
		b.WriteString(html.EscapeString(cell.Text))
		b.WriteString("</td>\n")
	}
}
