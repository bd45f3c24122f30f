package console_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/console"
)

type backend struct {
	schemaCalls atomic.Int32
	listCalls   atomic.Int32
	lastQuery   atomic.Value
}

func newBackend(t *testing.T) (*backend, *console.Console) {
	t.Helper()
	b := &backend{}
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/schema/", func(w http.ResponseWriter, r *http.Request) {
		b.schemaCalls.Add(1)
		writeJSON(w, map[string]any{
			"model":          map[string]any{"app_label": "news", "model_name": "article"},
			"fields":         []any{},
			"list_display":   []any{"title"},
			"date_hierarchy": "published",
		})
	})
	mux.HandleFunc("/news/article/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			b.listCalls.Add(1)
			b.lastQuery.Store(r.URL.RawQuery)
			writeJSON(w, map[string]any{
				"count": 1, "page": 1, "page_size": 25, "total_pages": 1,
				"results": []map[string]any{{"id": 1, "title": "First"}},
			})
		case http.MethodPost:
			writeJSON(w, map[string]any{"id": 2, "title": "Second"})
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/news/article/5/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cl, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("client.New() error: %v", err)
	}
	cl.Tokens().SetAccess("access-1")
	return b, console.New(cl)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func TestQueryTransitionsResetPage(t *testing.T) {
	q := console.ListQuery{Page: 3, PageSize: 25, Filters: map[string]string{}}

	if got := q.WithSearch("go").Page; got != 1 {
		t.Fatalf("page after search = %d, want 1", got)
	}
	if got := q.WithFilter("status", "live").Page; got != 1 {
		t.Fatalf("page after filter = %d, want 1", got)
	}
	if got := q.WithHierarchy(console.DateSelection{Year: 2024}).Page; got != 1 {
		t.Fatalf("page after hierarchy = %d, want 1", got)
	}
	if got := q.WithOrdering("-title").Page; got != 3 {
		t.Fatalf("page after ordering = %d, want 3 (unchanged)", got)
	}
	if got := q.WithPage(5).Page; got != 5 {
		t.Fatalf("page after paging = %d, want 5", got)
	}
	// The receiver is never mutated.
	if q.Page != 3 || len(q.Filters) != 0 {
		t.Fatalf("receiver mutated: %+v", q)
	}
}

func TestQueryValuesEncodeDateHierarchy(t *testing.T) {
	q := console.ListQuery{
		Page:      2,
		PageSize:  25,
		Search:    "go",
		Filters:   map[string]string{"status": "live"},
		Hierarchy: console.DateSelection{Year: 2024, Month: 3},
	}
	params := q.Values("published")

	for key, want := range map[string]string{
		"page":             "2",
		"page_size":        "25",
		"search":           "go",
		"status":           "live",
		"published__year":  "2024",
		"published__month": "3",
	} {
		if got := params.Get(key); got != want {
			t.Fatalf("params[%q] = %q, want %q", key, got, want)
		}
	}
	if params.Has("published__day") {
		t.Fatal("day param present without a day selection")
	}

	// Without a date_hierarchy field the drill-down is dropped entirely.
	if params := q.Values(""); params.Has("published__year") {
		t.Fatal("hierarchy encoded without a date field")
	}
}

func TestListCachesByNormalizedQuery(t *testing.T) {
	b, con := newBackend(t)
	ctx := context.Background()
	q := console.ListQuery{Page: 1, PageSize: 25}

	for i := 0; i < 3; i++ {
		if _, err := con.List(ctx, "news", "article", q); err != nil {
			t.Fatalf("List() error: %v", err)
		}
	}
	if n := b.listCalls.Load(); n != 1 {
		t.Fatalf("backend list calls = %d, want 1 (repeats served from cache)", n)
	}
	if n := b.schemaCalls.Load(); n != 1 {
		t.Fatalf("backend schema calls = %d, want 1", n)
	}

	if _, err := con.List(ctx, "news", "article", q.WithPage(2)); err != nil {
		t.Fatalf("List(page 2) error: %v", err)
	}
	if n := b.listCalls.Load(); n != 2 {
		t.Fatalf("backend list calls = %d, want 2 (different page misses)", n)
	}
}

func TestMutationInvalidatesListCache(t *testing.T) {
	b, con := newBackend(t)
	ctx := context.Background()
	q := console.ListQuery{Page: 1, PageSize: 25}

	if _, err := con.List(ctx, "news", "article", q); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if err := con.Delete(ctx, "news", "article", "5"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := con.List(ctx, "news", "article", q); err != nil {
		t.Fatalf("List() after delete error: %v", err)
	}
	if n := b.listCalls.Load(); n != 2 {
		t.Fatalf("backend list calls = %d, want 2 (delete must drop cached pages)", n)
	}
}

func TestListSendsHierarchyParams(t *testing.T) {
	b, con := newBackend(t)
	ctx := context.Background()
	q := console.ListQuery{Page: 1}.WithHierarchy(console.DateSelection{Year: 2024, Month: 3, Day: 9})

	if _, err := con.List(ctx, "news", "article", q); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	raw, _ := b.lastQuery.Load().(string)
	for _, want := range []string{"published__year=2024", "published__month=3", "published__day=9"} {
		if !strings.Contains(raw, want) {
			t.Fatalf("query %q missing %q", raw, want)
		}
	}
}

func TestLogoutFlushesSchemaCache(t *testing.T) {
	b, con := newBackend(t)
	ctx := context.Background()

	if _, err := con.Model(ctx, "news", "article"); err != nil {
		t.Fatalf("Model() error: %v", err)
	}
	if _, err := con.Model(ctx, "news", "article"); err != nil {
		t.Fatalf("Model() error: %v", err)
	}
	if n := b.schemaCalls.Load(); n != 1 {
		t.Fatalf("schema calls = %d, want 1", n)
	}

	_ = con.Logout(ctx)

	con.Client().Tokens().SetAccess("access-2")
	if _, err := con.Model(ctx, "news", "article"); err != nil {
		t.Fatalf("Model() after logout error: %v", err)
	}
	if n := b.schemaCalls.Load(); n != 2 {
		t.Fatalf("schema calls = %d after logout, want 2", n)
	}
}

func TestDebouncerCoalescesCalls(t *testing.T) {
	var runs atomic.Int32
	d := console.NewDebouncer(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		d.Call(func() { runs.Add(1) })
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("debounced function ran %d times, want 1", n)
	}

	d.Call(func() { runs.Add(1) })
	d.Stop()
	time.Sleep(100 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("stopped call still ran (%d total)", n)
	}
}
