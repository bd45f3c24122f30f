package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-adminkit/pkg/client"
	"github.com/goliatone/go-adminkit/pkg/schema"
)

func newClient(t *testing.T, handler http.Handler, opts ...client.Option) (*client.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := client.New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, srv
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginStoresTokenPair(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if body["username"] != "admin@example.com" || body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access":  "access-1",
			"refresh": "refresh-1",
			"user":    map[string]any{"id": "u1", "username": "admin", "email": "admin@example.com", "is_staff": true},
		})
	})

	c, _ := newClient(t, mux)
	result, err := c.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	want := schema.User{ID: "u1", Username: "admin", Email: "admin@example.com", IsStaff: true}
	if diff := cmp.Diff(want, result.User); diff != "" {
		t.Fatalf("Login() user mismatch (-want +got):\n%s", diff)
	}
	if got := c.Tokens().Access(); got != "access-1" {
		t.Fatalf("stored access token = %q, want %q", got, "access-1")
	}
	if got := c.Tokens().Refresh(); got != "refresh-1" {
		t.Fatalf("stored refresh token = %q, want %q", got, "refresh-1")
	}
}

func TestLoginBadCredentialsDoesNotRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"access": "never"})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetPair("old-access", "old-refresh")
	_, err := c.Login(context.Background(), "admin@example.com", "wrong")
	if !client.IsUnauthorized(err) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
	if n := refreshCalls.Load(); n != 0 {
		t.Fatalf("refresh called %d times during login, want 0", n)
	}
}

func TestExpiredTokenRefreshesOnceAndRetries(t *testing.T) {
	var listCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer access-2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count": 1, "page": 1, "page_size": 25, "total_pages": 1,
			"results": []map[string]any{{"id": 1, "title": "First"}},
		})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh"] != "refresh-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unknown refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": "access-2", "refresh": "refresh-2"})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetPair("access-1", "refresh-1")

	page, err := c.List(context.Background(), "news", "article", nil)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("List() = count %d, %d results, want 1 and 1", page.Count, len(page.Results))
	}
	if n := refreshCalls.Load(); n != 1 {
		t.Fatalf("refresh called %d times, want exactly 1", n)
	}
	if n := listCalls.Load(); n != 2 {
		t.Fatalf("list endpoint called %d times, want 2 (original plus retry)", n)
	}
	if got := c.Tokens().Refresh(); got != "refresh-2" {
		t.Fatalf("rotated refresh token = %q, want %q", got, "refresh-2")
	}
}

func TestSecondUnauthorizedIsNotRetriedAgain(t *testing.T) {
	var listCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token expired"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"access": "access-2"})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetPair("access-1", "refresh-1")

	_, err := c.List(context.Background(), "news", "article", nil)
	if !client.IsUnauthorized(err) {
		t.Fatalf("List() error = %v, want unauthorized", err)
	}
	if n := refreshCalls.Load(); n != 1 {
		t.Fatalf("refresh called %d times, want exactly 1", n)
	}
	if n := listCalls.Load(); n != 2 {
		t.Fatalf("list endpoint called %d times, want 2, not retried again", n)
	}
}

func TestRejectedRefreshClearsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token expired"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Refresh token revoked"})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetPair("access-1", "refresh-1")

	_, err := c.List(context.Background(), "news", "article", nil)
	if !client.IsUnauthorized(err) {
		t.Fatalf("List() error = %v, want unauthorized", err)
	}
	if got := c.Tokens().Access(); got != "" {
		t.Fatalf("access token = %q after rejected refresh, want cleared", got)
	}
	if got := c.Tokens().Refresh(); got != "" {
		t.Fatalf("refresh token = %q after rejected refresh, want cleared", got)
	}
}

func TestUnauthorizedWithoutRefreshTokenClearsAndFails(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Token expired"})
	})
	mux.HandleFunc("/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetAccess("stale-access")

	_, err := c.List(context.Background(), "news", "article", nil)
	if !client.IsUnauthorized(err) {
		t.Fatalf("List() error = %v, want unauthorized", err)
	}
	if n := refreshCalls.Load(); n != 0 {
		t.Fatalf("refresh called %d times with no refresh token, want 0", n)
	}
	if got := c.Tokens().Access(); got != "" {
		t.Fatalf("access token = %q, want cleared", got)
	}
}

func TestBadRequestWithDetailsBecomesValidationError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"message": "Validation failed",
				"details": map[string][]string{
					"title":  {"This field is required."},
					"status": {"Invalid choice."},
				},
			},
		})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetAccess("access-1")

	_, err := c.Create(context.Background(), "news", "article", map[string]any{"status": "nope"})
	verr, ok := client.AsValidationError(err)
	if !ok {
		t.Fatalf("Create() error = %v, want *ValidationError", err)
	}
	if verr.Message != "Validation failed" {
		t.Fatalf("ValidationError.Message = %q", verr.Message)
	}
	want := map[string][]string{
		"title":  {"This field is required."},
		"status": {"Invalid choice."},
	}
	if diff := cmp.Diff(want, verr.Details); diff != "" {
		t.Fatalf("ValidationError.Details mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvelopeAndBareResponsesBothDecode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/1/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{"id": 1, "title": "Wrapped"},
		})
	})
	mux.HandleFunc("/news/article/2/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 2, "title": "Bare"})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetAccess("access-1")

	wrapped, err := c.Get(context.Background(), "news", "article", "1")
	if err != nil {
		t.Fatalf("Get(wrapped) error: %v", err)
	}
	if wrapped["title"] != "Wrapped" {
		t.Fatalf("wrapped title = %v", wrapped["title"])
	}
	bare, err := c.Get(context.Background(), "news", "article", "2")
	if err != nil {
		t.Fatalf("Get(bare) error: %v", err)
	}
	if bare["title"] != "Bare" {
		t.Fatalf("bare title = %v", bare["title"])
	}
}

func TestListForwardsQueryParams(t *testing.T) {
	var got url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/news/article/", func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "results": []any{}})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetAccess("access-1")

	params := url.Values{}
	params.Set("page", "2")
	params.Set("search", "go")
	params.Set("published__year", "2024")
	if _, err := c.List(context.Background(), "news", "article", params); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if got.Get("page") != "2" || got.Get("search") != "go" || got.Get("published__year") != "2024" {
		t.Fatalf("forwarded query = %v", got)
	}
}

func TestRelationOptionsAndActions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/relation-options/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("app_label") != "news" || q.Get("model_name") != "category" {
			t.Fatalf("target = %s.%s, want news.category", q.Get("app_label"), q.Get("model_name"))
		}
		if q.Get("q") != "tech" {
			t.Fatalf("q = %q, want tech", q.Get("q"))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"results":  []map[string]any{{"id": 3, "text": "Technology"}},
			"has_more": true,
		})
	})
	mux.HandleFunc("/news/article/actions/publish/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		ids, ok := body["ids"].([]any)
		if !ok || len(ids) != 2 {
			t.Fatalf("ids = %v, want two entries", body["ids"])
		}
		if _, present := body["action"]; present {
			t.Fatalf("body carries an action key; the name belongs in the path")
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "message": "2 articles published", "affected_count": 2,
		})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetAccess("access-1")

	set, err := c.RelationOptions(context.Background(), "news", "category", "tech", 20)
	if err != nil {
		t.Fatalf("RelationOptions() error: %v", err)
	}
	if !set.HasMore || len(set.Results) != 1 || set.Results[0].Text != "Technology" {
		t.Fatalf("RelationOptions() = %+v", set)
	}

	result, err := c.RunAction(context.Background(), "news", "article", "publish", []string{"1", "2"})
	if err != nil {
		t.Fatalf("RunAction() error: %v", err)
	}
	if !result.Success || result.AffectedCount != 2 {
		t.Fatalf("RunAction() = %+v", result)
	}
}

func TestAccountEndpointsUseContractPaths(t *testing.T) {
	var paths []string
	mux := http.NewServeMux()
	record := func(path string, body any) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			writeJSON(w, http.StatusOK, body)
		})
	}
	record("/auth/user/", map[string]any{"id": 1, "username": "admin"})
	record("/auth/password-change/", map[string]string{"message": "Password changed"})
	record("/auth/password-reset/", map[string]string{"message": "Reset link sent"})
	record("/auth/password-reset/confirm/", map[string]string{"message": "Password reset"})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected request path %s", r.URL.Path)
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetAccess("access-1")

	if _, err := c.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if _, err := c.ChangePassword(context.Background(), "old", "new"); err != nil {
		t.Fatalf("ChangePassword() error: %v", err)
	}
	if _, err := c.RequestPasswordReset(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error: %v", err)
	}
	if _, err := c.ConfirmPasswordReset(context.Background(), "uid", "token", "new"); err != nil {
		t.Fatalf("ConfirmPasswordReset() error: %v", err)
	}

	want := []string{
		"/auth/user/",
		"/auth/password-change/",
		"/auth/password-reset/",
		"/auth/password-reset/confirm/",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("request paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLogoutClearsTokensEvenOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	})

	c, _ := newClient(t, mux)
	c.Tokens().SetPair("access-1", "refresh-1")

	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error: %v", err)
	}
	if got := c.Tokens().Access(); got != "" {
		t.Fatalf("access token = %q after logout, want cleared", got)
	}
}

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := t.TempDir() + "/tokens.json"
	store := client.NewFileTokenStore(path)
	store.SetPair("access-1", "refresh-1")

	reopened := client.NewFileTokenStore(path)
	if got := reopened.Access(); got != "access-1" {
		t.Fatalf("Access() = %q after reopen, want access-1", got)
	}
	reopened.SetAccess("access-2")
	if got, want := store.Access(), "access-2"; got != want {
		t.Fatalf("Access() = %q, want %q", got, want)
	}
	if got := store.Refresh(); got != "refresh-1" {
		t.Fatalf("Refresh() = %q, want refresh-1", got)
	}
	store.Clear()
	if got := reopened.Access(); got != "" {
		t.Fatalf("Access() = %q after clear, want empty", got)
	}
}

func TestExpiresWithin(t *testing.T) {
	if !client.ExpiresWithin("", time.Minute) {
		t.Fatal("empty token should report expired")
	}
	if !client.ExpiresWithin("not-a-jwt", time.Minute) {
		t.Fatal("garbage token should report expired")
	}
}
