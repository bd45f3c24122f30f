package schema

import "fmt"

// Record is one row of a resource. Its shape is fully determined by the
// model schema at runtime; no static type exists on this side of the API.
type Record map[string]any

// PK returns the record's identifier as a string, trying the schema-declared
// primary key field first and falling back to the conventional keys.
func (r Record) PK(pkField string) string {
	for _, key := range []string{pkField, "id", "pk"} {
		if key == "" {
			continue
		}
		if v, ok := r[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Display returns the record's server-provided display string when present.
func (r Record) Display() (string, bool) {
	v, ok := r["_display"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Page is one page of records plus pagination metadata. Pages are always
// requested from the server, never sliced out of a full dataset client-side.
type Page struct {
	Count      int     `json:"count"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
	Next       *string `json:"next"`
	Previous   *string `json:"previous"`
	Results    []Record `json:"results"`
}

// Empty reports whether the whole result set is empty, as opposed to the
// current page merely having no rows.
func (p Page) Empty() bool {
	return p.Count == 0
}

// TotalPages computes the page count for a result set. A non-positive page
// size yields a single page so callers never divide by zero.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	pages := count / pageSize
	if count%pageSize != 0 {
		pages++
	}
	return pages
}

// ClampPage forces a requested page number into the valid range. Requesting
// page 3 of 2 returns 2; requesting page 0 returns 1.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages >= 1 && page > totalPages {
		return totalPages
	}
	return page
}
