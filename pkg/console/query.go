package console

import (
	"net/url"
	"strconv"
)

// DateSelection is the drill-down position inside a model's date hierarchy.
// Zero fields mean "not narrowed at this level".
type DateSelection struct {
	Year  int
	Month int
	Day   int
}

func (s DateSelection) IsZero() bool {
	return s.Year == 0 && s.Month == 0 && s.Day == 0
}

// ListQuery is the complete state of one list page request. The With*
// methods return an updated copy; anything that changes which records match
// (search, filters, the date hierarchy) snaps the page back to 1, since the
// old page number is meaningless against a different result set.
type ListQuery struct {
	Page      int
	PageSize  int
	Search    string
	Ordering  string
	Filters   map[string]string
	Hierarchy DateSelection
}

func (q ListQuery) clone() ListQuery {
	filters := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		filters[k] = v
	}
	q.Filters = filters
	return q
}

// WithPage moves to another page of the same result set.
func (q ListQuery) WithPage(page int) ListQuery {
	next := q.clone()
	next.Page = page
	return next
}

// WithOrdering changes the sort without resetting the page.
func (q ListQuery) WithOrdering(ordering string) ListQuery {
	next := q.clone()
	next.Ordering = ordering
	return next
}

// WithSearch replaces the search term and resets the page.
func (q ListQuery) WithSearch(search string) ListQuery {
	next := q.clone()
	next.Search = search
	next.Page = 1
	return next
}

// WithFilter sets one filter value and resets the page. An empty value
// removes the filter.
func (q ListQuery) WithFilter(field, value string) ListQuery {
	next := q.clone()
	if value == "" {
		delete(next.Filters, field)
	} else {
		next.Filters[field] = value
	}
	next.Page = 1
	return next
}

// WithHierarchy narrows the date hierarchy and resets the page.
func (q ListQuery) WithHierarchy(sel DateSelection) ListQuery {
	next := q.clone()
	next.Hierarchy = sel
	next.Page = 1
	return next
}

// Values encodes the query as request parameters. dateField is the model's
// date_hierarchy field; the drill-down encodes as its __year, __month and
// __day lookups.
func (q ListQuery) Values(dateField string) url.Values {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Ordering != "" {
		params.Set("ordering", q.Ordering)
	}
	for field, value := range q.Filters {
		if value != "" {
			params.Set(field, value)
		}
	}
	if dateField != "" && !q.Hierarchy.IsZero() {
		if q.Hierarchy.Year > 0 {
			params.Set(dateField+"__year", strconv.Itoa(q.Hierarchy.Year))
		}
		if q.Hierarchy.Month > 0 {
			params.Set(dateField+"__month", strconv.Itoa(q.Hierarchy.Month))
		}
		if q.Hierarchy.Day > 0 {
			params.Set(dateField+"__day", strconv.Itoa(q.Hierarchy.Day))
		}
	}
	return params
}
