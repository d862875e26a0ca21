package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/mediadeck/internal/domain"
	"github.com/mmcdole/mediadeck/internal/persistence"
)

type captured struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   string
}

func newPostgREST(t *testing.T, status int, respBody string, extraHeaders map[string]string) (*persistence.Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.Query()
		got.header = r.Header.Clone()
		got.body = string(body)
		for k, v := range extraHeaders {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)

	exec := NewExecutor(srv.URL, "anon-key", nil, srv.Client(), nil)
	return persistence.New(exec, nil, nil), got
}

func TestExecutor_SelectEncoding(t *testing.T) {
	client, got := newPostgREST(t, http.StatusOK, `[{"id":"1","item_id":550}]`, nil)

	var rows []domain.WatchlistEntry
	err := client.From(domain.TableWatchlist).
		Eq("user_id", "u1").
		Eq("item_type", domain.KindMovie).
		In("item_id", 550, 603).
		Order("created_at", false).
		Limit(10).
		Select(context.Background(), &rows)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if got.method != http.MethodGet || got.path != "/rest/v1/watchlist" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	want := map[string]string{
		"user_id":   "eq.u1",
		"item_type": "eq.movie",
		"item_id":   "in.(550,603)",
		"order":     "created_at.desc",
		"limit":     "10",
		"select":    "*",
	}
	for k, v := range want {
		if g := got.query[k]; len(g) != 1 || g[0] != v {
			t.Errorf("query[%s] = %v, want %q", k, g, v)
		}
	}
	if got.header.Get("apikey") != "anon-key" || got.header.Get("Authorization") != "Bearer anon-key" {
		t.Fatalf("unexpected auth headers %v", got.header)
	}
	if len(rows) != 1 || rows[0].ExternalID != 550 {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestExecutor_UpsertEncoding(t *testing.T) {
	client, got := newPostgREST(t, http.StatusCreated, `[{"id":"r1","rating":8}]`, nil)

	review := domain.Review{UserID: "u1", Kind: domain.KindMovie, ExternalID: 550, Rating: 8}
	var out []domain.Review
	err := client.From(domain.TableReviews).Upsert(context.Background(), review, []string{"user_id", "item_type", "item_id"}, &out)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if got.method != http.MethodPost {
		t.Fatalf("method = %s", got.method)
	}
	if got.query["on_conflict"][0] != "user_id,item_type,item_id" {
		t.Fatalf("on_conflict = %v", got.query["on_conflict"])
	}
	if got.header.Get("Prefer") != "return=representation,resolution=merge-duplicates" {
		t.Fatalf("Prefer = %q", got.header.Get("Prefer"))
	}
	if len(out) != 1 || out[0].ID != "r1" {
		t.Fatalf("unexpected representation %+v", out)
	}
}

func TestExecutor_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unique violation", http.StatusConflict, `{"code":"23505","message":"duplicate key"}`, domain.ErrConflict},
		{"unauthorized", http.StatusUnauthorized, `{"code":"PGRST301","message":"JWT expired"}`, domain.ErrNotAuthenticated},
		{"single row miss", http.StatusNotAcceptable, `{"code":"PGRST116","message":"0 rows"}`, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newPostgREST(t, tt.status, tt.body, nil)
			err := client.From(domain.TableWatchlist).Insert(context.Background(), map[string]any{"user_id": "u1"}, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestExecutor_Cardinality(t *testing.T) {
	client, _ := newPostgREST(t, http.StatusOK, `[]`, nil)

	var c domain.Collection
	err := client.From(domain.TableCollections).Eq("id", "missing").Single(context.Background(), &c)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Single on empty result: expected ErrNotFound, got %v", err)
	}

	found, err := client.From(domain.TableCollections).Eq("id", "missing").MaybeSingle(context.Background(), &c)
	if err != nil || found {
		t.Fatalf("MaybeSingle on empty result: found=%v err=%v", found, err)
	}
}

func TestExecutor_Count(t *testing.T) {
	client, got := newPostgREST(t, http.StatusOK, ``, map[string]string{"Content-Range": "0-2/3"})

	n, err := client.From(domain.TableCollectionItems).Eq("collection_id", "c1").Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d", n)
	}
	if got.method != http.MethodHead || got.header.Get("Prefer") != "count=exact" {
		t.Fatalf("unexpected count request %s %q", got.method, got.header.Get("Prefer"))
	}
}

func TestExecutor_DeleteAndUpdate(t *testing.T) {
	client, got := newPostgREST(t, http.StatusOK, `[]`, nil)

	if err := client.From(domain.TableWatchlist).Eq("user_id", "u1").Eq("item_id", 550).Delete(context.Background()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got.method != http.MethodDelete || got.query["item_id"][0] != "eq.550" {
		t.Fatalf("unexpected delete %s %v", got.method, got.query)
	}

	if err := client.From(domain.TableCollections).Eq("id", "c1").Update(context.Background(), map[string]any{"item_count": 2}, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.method != http.MethodPatch || got.body != `{"item_count":2}` {
		t.Fatalf("unexpected update %s %s", got.method, got.body)
	}
}
