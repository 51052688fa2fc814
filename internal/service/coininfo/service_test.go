package coininfo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"VolPulse/internal/domain/models"
	"VolPulse/pkg/cache"
	httpc "VolPulse/pkg/http"
)

func TestLookupFetchesAndCaches(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		sym := r.URL.Query().Get("symbol")
		_ = json.NewEncoder(w).Encode(models.CoinMeta{
			Symbol:   sym,
			FullName: "Bitcoin",
			LogoURL:  "https://cdn.example.com/btc.png",
		})
	}))
	defer srv.Close()

	mem := cache.NewMemoryCache()
	defer mem.Close()

	svc := New(mem, httpc.NewClient(), srv.URL, WithTTL(time.Minute))

	meta, err := svc.Lookup(context.Background(), "btcusdt")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if meta.Symbol != "BTCUSDT" || meta.FullName != "Bitcoin" {
		t.Fatalf("meta = %+v", meta)
	}

	if _, err := svc.Lookup(context.Background(), "BTCUSDT"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Fatalf("upstream hits = %d, second lookup should come from cache", n)
	}
}

func TestLookupEmptySymbol(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	svc := New(mem, httpc.NewClient(), "http://unused")
	if _, err := svc.Lookup(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}

func TestLookupUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	mem := cache.NewMemoryCache()
	defer mem.Close()

	svc := New(mem, httpc.NewClient(), srv.URL)
	if _, err := svc.Lookup(context.Background(), "BTCUSDT"); err == nil {
		t.Fatalf("expected error from upstream failure")
	}
}
