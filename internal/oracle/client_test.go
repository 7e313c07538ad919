package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bentodar-netizen/honeycomb-duels/internal/config"
)

func testClientConfig(url string) config.OracleConfig {
	return config.OracleConfig{BaseURL: url, QuoteSymbol: "USDT", CacheTTLSecs: 3}
}

func TestCurrentPrice(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if r.URL.Path != tickerPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BNBUSDT" {
			t.Errorf("unexpected symbol %s", got)
		}
		fmt.Fprint(w, `{"symbol":"BNBUSDT","price":"612.34000000"}`)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	p, err := c.CurrentPrice(context.Background(), "bnb")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if want := int64(61_234_000_000); p != want {
		t.Fatalf("price = %d, want %d", p, want)
	}

	// Second call within the TTL is served from cache.
	if _, err := c.CurrentPrice(context.Background(), "BNB"); err != nil {
		t.Fatalf("cached CurrentPrice: %v", err)
	}
	if n := atomic.LoadInt64(&hits); n != 1 {
		t.Fatalf("upstream hit %d times, want 1", n)
	}

	// Once the TTL lapses the next call goes upstream again.
	c.now = func() time.Time { return time.Now().Add(5 * time.Second) }
	if _, err := c.CurrentPrice(context.Background(), "BNB"); err != nil {
		t.Fatalf("post-TTL CurrentPrice: %v", err)
	}
	if n := atomic.LoadInt64(&hits); n != 2 {
		t.Fatalf("upstream hit %d times, want 2", n)
	}
}

func TestCurrentPriceRetriesServerErrors(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"symbol":"BTCUSDT","price":"61000"}`)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	p, err := c.CurrentPrice(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if want := int64(61_000 * PriceScale); p != want {
		t.Fatalf("price = %d, want %d", p, want)
	}
	if n := atomic.LoadInt64(&hits); n != 3 {
		t.Fatalf("upstream hit %d times, want 3", n)
	}
}

func TestCurrentPriceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	if _, err := c.CurrentPrice(context.Background(), "BTC"); !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}
}

func TestPriceSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != klinesPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1m" {
			t.Errorf("unexpected interval %s", got)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("unexpected limit %s", got)
		}
		fmt.Fprint(w, `[
			[1, "0", "0", "0", "100.5", "0"],
			[2, "0", "0", "0", "101.25", "0"],
			[3, "0", "0", "0", "99.00000001", "0"]
		]`)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	got, err := c.PriceSeries(context.Background(), "ETH", "1m", 3)
	if err != nil {
		t.Fatalf("PriceSeries: %v", err)
	}
	want := []int64{10_050_000_000, 10_125_000_000, 9_900_000_001}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("series[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPriceSeriesShortRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[1, "0"]]`)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	if _, err := c.PriceSeries(context.Background(), "ETH", "1m", 1); !errors.Is(err, ErrPriceUnavailable) {
		t.Fatalf("err = %v, want ErrPriceUnavailable", err)
	}
}
