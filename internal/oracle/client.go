package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/bentodar-netizen/honeycomb-duels/internal/config"
)

const (
	tickerPath = "/api/v3/ticker/price"
	klinesPath = "/api/v3/klines"

	// Binance spot weight limits leave ample headroom at 10 req/s.
	requestsPerSec = 10

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client fetches spot prices from a Binance-compatible market-data API and
// normalizes them to the shared fixed-point scale.
type Client struct {
	http    *http.Client
	baseURL string
	quote   string
	limiter *rate.Limiter
	cache   *priceCache
	now     func() time.Time
}

func NewClient(cfg config.OracleConfig) *Client {
	ttl := time.Duration(cfg.CacheTTLSecs) * time.Second
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		quote:   cfg.QuoteSymbol,
		limiter: rate.NewLimiter(requestsPerSec, 5),
		cache:   newPriceCache(ttl),
		now:     time.Now,
	}
}

// CurrentPrice returns the latest fixed-point price for an asset symbol such
// as "BNB". Cached values within the TTL are served without an upstream call.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (int64, error) {
	pair := c.pair(symbol)
	if p, ok := c.cache.get(pair, c.now()); ok {
		return p, nil
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	url := fmt.Sprintf("%s%s?symbol=%s", c.baseURL, tickerPath, pair)
	if err := c.get(ctx, url, &resp); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, pair, err)
	}
	p, err := ParsePrice(resp.Price)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, pair, err)
	}
	c.cache.put(pair, p, c.now())
	return p, nil
}

// PriceSeries returns up to count closing prices for the symbol at the given
// kline interval (e.g. "1m"), oldest first.
func (c *Client) PriceSeries(ctx context.Context, symbol, interval string, count int) ([]int64, error) {
	if count <= 0 {
		count = 60
	}
	pair := c.pair(symbol)
	var klines [][]json.RawMessage
	url := fmt.Sprintf("%s%s?symbol=%s&interval=%s&limit=%d", c.baseURL, klinesPath, pair, interval, count)
	if err := c.get(ctx, url, &klines); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, pair, err)
	}
	out := make([]int64, 0, len(klines))
	for _, k := range klines {
		// Index 4 is the close price.
		if len(k) < 5 {
			return nil, fmt.Errorf("%w: %s: short kline row", ErrPriceUnavailable, pair)
		}
		var closing string
		if err := json.Unmarshal(k[4], &closing); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, pair, err)
		}
		p, err := ParsePrice(closing)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPriceUnavailable, pair, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) pair(symbol string) string {
	return strings.ToUpper(symbol) + strings.ToUpper(c.quote)
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("upstream status %d after %d retries", resp.StatusCode, maxRetries)
			}
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Msg("price upstream retrying")
			c.sleep(ctx, attempt)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("upstream status %d", resp.StatusCode)
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("unreachable")
}

func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := baseRetryWait << uint(attempt)
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}
