package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/mediadeck/internal/domain"
)

func TestFetcher_BreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := New(Config{Provider: "test-5xx", BaseURL: srv.URL, BreakerTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < tripAfter; i++ {
		_, err := f.Get(ctx, "/x", nil)
		if !domain.IsFetchStatus(err, http.StatusBadGateway) {
			t.Fatalf("call %d: expected FetchError 502, got %v", i, err)
		}
	}

	_, err := f.Get(ctx, "/x", nil)
	if !errors.Is(err, domain.ErrCatalogUnreachable) {
		t.Fatalf("expected open breaker to report unreachable, got %v", err)
	}
	if got := hits.Load(); got != tripAfter {
		t.Fatalf("open breaker should not hit the server: %d hits", got)
	}
}

func TestFetcher_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{Provider: "test-4xx", BaseURL: srv.URL})
	for i := 0; i < tripAfter*2; i++ {
		_, err := f.Get(context.Background(), "/missing", nil)
		if !domain.IsFetchStatus(err, http.StatusNotFound) {
			t.Fatalf("call %d: expected FetchError 404, got %v", i, err)
		}
	}
}

func TestFetcher_AuthorizeAndTransport(t *testing.T) {
	var seen *http.Request
	f := New(Config{
		Provider: "test-canned",
		BaseURL:  "https://example.invalid/api",
		Authorize: func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer abc")
		},
		Transport: &CannedTransport{Respond: func(req *http.Request) any {
			seen = req
			return map[string]int{"answer": 42}
		}},
	})

	var out struct {
		Answer int `json:"answer"`
	}
	if err := f.GetJSON(context.Background(), "/q", nil, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Answer != 42 {
		t.Fatalf("answer = %d", out.Answer)
	}
	if seen.URL.Path != "/api/q" || seen.Header.Get("Authorization") != "Bearer abc" {
		t.Fatalf("unexpected request %s %v", seen.URL, seen.Header)
	}
}

func TestCannedTransport_HonorsCancellation(t *testing.T) {
	f := New(Config{
		Provider:  "test-cancel",
		BaseURL:   "https://example.invalid",
		Transport: &CannedTransport{Latency: time.Hour, Respond: func(*http.Request) any { return nil }},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := f.Get(ctx, "/slow", nil); err == nil {
		t.Fatal("expected cancellation error")
	}
}
