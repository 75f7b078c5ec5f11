package cache

import (
	"context"
	"sync"
	"time"

	"github.com/insightflow/insightflow-go/internal/dataflows"
	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

// Nifty 50 constituents shown on the ticker tape. NSE symbols without the
// exchange suffix.
var nifty50Symbols = []string{
	"RELIANCE", "TCS", "HDFCBANK", "INFY", "ICICIBANK",
	"HINDUNILVR", "SBIN", "BHARTIARTL", "KOTAKBANK", "ITC",
	"LT", "AXISBANK", "ASIANPAINT", "MARUTI", "TATASTEEL",
	"BAJFINANCE", "HCLTECH", "WIPRO", "SUNPHARMA", "TITAN",
	"ULTRACEMCO", "NESTLEIND", "POWERGRID", "NTPC", "TECHM",
	"ONGC", "JSWSTEEL", "TATAMOTORS", "M&M", "ADANIENT",
	"COALINDIA", "BAJAJFINSV", "GRASIM", "DIVISLAB", "DRREDDY",
	"BRITANNIA", "CIPLA", "EICHERMOT", "APOLLOHOSP", "TATACONSUM",
	"HINDALCO", "HEROMOTOCO", "BPCL", "INDUSINDBK", "SBILIFE",
	"UPL", "ADANIPORTS", "HDFCLIFE", "BAJAJ-AUTO", "SHREECEM",
}

// TapeResult is the cached aggregate of Nifty 50 quotes.
type TapeResult struct {
	Tickers  []models.TickerQuote `json:"tickers"`
	Count    int                  `json:"count"`
	CachedAt time.Time            `json:"cached_at"`
}

// TickerTape is a single-slot TTL cache over the bulk Nifty 50 quote fetch.
// The lock is held across a refresh so concurrent misses trigger exactly one
// refresh; latecomers block and receive the freshly computed value.
type TickerTape struct {
	quotes  dataflows.QuoteProvider
	log     *logger.Logger
	ttl     time.Duration
	workers int

	mu        sync.Mutex
	cached    *TapeResult
	refreshed time.Time
}

func NewTickerTape(quotes dataflows.QuoteProvider, ttl time.Duration, workers int, log *logger.Logger) *TickerTape {
	if workers <= 0 {
		workers = 10
	}
	return &TickerTape{quotes: quotes, log: log, ttl: ttl, workers: workers}
}

// Get returns the cached tape, refreshing it when stale.
func (t *TickerTape) Get(ctx context.Context) (*TapeResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cached != nil && time.Since(t.refreshed) < t.ttl {
		return t.cached, nil
	}

	result := t.refresh(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.cached = result
	t.refreshed = time.Now()
	return result, nil
}

// Invalidate drops the cached slot so the next Get refreshes.
func (t *TickerTape) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cached = nil
	t.refreshed = time.Time{}
}

// refresh fans the per-symbol fetches out over a bounded worker pool and
// joins them in constituent order. A failing symbol is omitted from the
// aggregate, never an overall failure.
func (t *TickerTape) refresh(ctx context.Context) *TapeResult {
	results := make([]*models.TickerQuote, len(nifty50Symbols))

	sem := make(chan struct{}, t.workers)
	var wg sync.WaitGroup
	for i, symbol := range nifty50Symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			q, err := t.quotes.Quote(ctx, symbol+".NS")
			if err != nil {
				t.log.Debugw("tape symbol fetch failed", "symbol", symbol, "error", err)
				return
			}
			results[i] = q
		}(i, symbol)
	}
	wg.Wait()

	tickers := make([]models.TickerQuote, 0, len(results))
	for _, q := range results {
		if q != nil {
			tickers = append(tickers, *q)
		}
	}

	t.log.Infow("ticker tape refreshed", "symbols", len(nifty50Symbols), "fetched", len(tickers))
	return &TapeResult{
		Tickers:  tickers,
		Count:    len(tickers),
		CachedAt: time.Now().UTC(),
	}
}
