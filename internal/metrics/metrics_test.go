package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCatalogRequest(t *testing.T) {
	before := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("tmdb", "ok"))
	RecordCatalogRequest("tmdb", "ok", 20*time.Millisecond)
	after := testutil.ToFloat64(CatalogRequestsTotal.WithLabelValues("tmdb", "ok"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	tests := []struct {
		name string
		hit  bool
	}{
		{name: "hit", hit: true},
		{name: "miss", hit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := testutil.ToFloat64(CacheHits.WithLabelValues("user"))
			misses := testutil.ToFloat64(CacheMisses.WithLabelValues("user"))

			RecordCacheLookup("user", tt.hit)

			gotHits := testutil.ToFloat64(CacheHits.WithLabelValues("user")) - hits
			gotMisses := testutil.ToFloat64(CacheMisses.WithLabelValues("user")) - misses
			if tt.hit && (gotHits != 1 || gotMisses != 0) {
				t.Fatalf("hit: got hits=%v misses=%v", gotHits, gotMisses)
			}
			if !tt.hit && (gotHits != 0 || gotMisses != 1) {
				t.Fatalf("miss: got hits=%v misses=%v", gotHits, gotMisses)
			}
		})
	}
}

func TestRecordBreakerState(t *testing.T) {
	RecordBreakerState("rawg", 2)
	if got := testutil.ToFloat64(CatalogBreakerState.WithLabelValues("rawg")); got != 2 {
		t.Fatalf("expected breaker gauge 2, got %v", got)
	}
}
