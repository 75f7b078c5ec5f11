package dataflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"

	"github.com/insightflow/insightflow-go/internal/models"
)

// historyWindowDays bounds the OHLCV history attached to a snapshot.
const historyWindowDays = 365

// YahooClient fetches quotes via Yahoo Finance. NSE tickers carry the ".NS"
// suffix, BSE the ".BO" suffix; callers format symbols before calling.
type YahooClient struct {
	retry *RetryConfig
}

// NewYahooClient creates a Yahoo Finance quote provider.
func NewYahooClient() *YahooClient {
	return &YahooClient{retry: DefaultRetryConfig()}
}

// FormatTicker normalizes a raw symbol and appends the exchange suffix.
func FormatTicker(symbol, exchange string) string {
	t := strings.ToUpper(strings.TrimSpace(symbol))
	t = strings.TrimSuffix(strings.TrimSuffix(t, ".NS"), ".BO")

	suffix := ".BO"
	if strings.EqualFold(strings.TrimSpace(exchange), "NSE") {
		suffix = ".NS"
	}
	return t + suffix
}

// StripSuffix removes the exchange suffix from a formatted ticker.
func StripSuffix(ticker string) string {
	t := strings.TrimSpace(ticker)
	return strings.TrimSuffix(strings.TrimSuffix(t, ".NS"), ".BO")
}

// Fetch returns the full snapshot for a formatted ticker, or ErrNoData when
// Yahoo has nothing for it.
func (c *YahooClient) Fetch(ctx context.Context, ticker string) (*models.StockSnapshot, error) {
	var snapshot *models.StockSnapshot

	err := WithRetry(ctx, c.retry, func() error {
		eq, err := equity.Get(ticker)
		if err != nil {
			return fmt.Errorf("failed to get equity for %s: %w", ticker, err)
		}
		if eq == nil || eq.RegularMarketPrice == 0 {
			return fmt.Errorf("%w: %s", ErrNoData, ticker)
		}

		snapshot = &models.StockSnapshot{
			Ticker:             ticker,
			CompanyName:        companyName(eq.LongName, eq.ShortName),
			CurrentPrice:       eq.RegularMarketPrice,
			PriceChangePercent: eq.RegularMarketChangePercent,
			Volume:             int64(eq.RegularMarketVolume),
			FiftyTwoWeekHigh:   eq.FiftyTwoWeekHigh,
			FiftyTwoWeekLow:    eq.FiftyTwoWeekLow,
			FetchedAt:          time.Now().UTC(),
		}

		if eq.MarketCap > 0 {
			snapshot.MarketCap = fptr(float64(eq.MarketCap))
		}
		if eq.TrailingPE != 0 {
			snapshot.PERatio = fptr(eq.TrailingPE)
		}
		if eq.PriceToBook != 0 {
			snapshot.PBRatio = fptr(eq.PriceToBook)
		}
		if eq.BookValue != 0 {
			snapshot.BookValue = fptr(eq.BookValue)
		}
		if eq.EpsTrailingTwelveMonths != 0 {
			snapshot.EPS = fptr(eq.EpsTrailingTwelveMonths)
		}
		if eq.TrailingAnnualDividendYield != 0 {
			snapshot.DividendYield = fptr(eq.TrailingAnnualDividendYield * 100)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// History is best effort; a bare snapshot is still usable.
	if bars, err := c.history(ctx, ticker); err == nil {
		snapshot.HistoricalPrices = bars
	}

	return snapshot, nil
}

// Quote returns the compact per-symbol view used by the ticker tape.
func (c *YahooClient) Quote(ctx context.Context, ticker string) (*models.TickerQuote, error) {
	var result *models.TickerQuote

	err := WithRetry(ctx, c.retry, func() error {
		q, err := quote.Get(ticker)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", ticker, err)
		}
		if q == nil || q.RegularMarketPrice == 0 {
			return fmt.Errorf("%w: %s", ErrNoData, ticker)
		}

		symbol := StripSuffix(ticker)
		name := q.ShortName
		if name == "" {
			name = symbol
		}
		result = &models.TickerQuote{
			Symbol: symbol,
			Name:   name,
			Price:  q.RegularMarketPrice,
			Change: q.RegularMarketChangePercent,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *YahooClient) history(ctx context.Context, ticker string) ([]models.HistoricalPrice, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -historyWindowDays)

	var bars []models.HistoricalPrice
	err := WithRetry(ctx, c.retry, func() error {
		params := &chart.Params{
			Symbol:   ticker,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)
		bars = bars[:0]
		for iter.Next() {
			bar := iter.Bar()
			bars = append(bars, models.HistoricalPrice{
				Date:   time.Unix(int64(bar.Timestamp), 0).UTC().Format("2006-01-02"),
				Open:   bar.Open.InexactFloat64(),
				High:   bar.High.InexactFloat64(),
				Low:    bar.Low.InexactFloat64(),
				Close:  bar.Close.InexactFloat64(),
				Volume: int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", ticker, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bars, nil
}

func companyName(longName, shortName string) string {
	if longName != "" {
		return longName
	}
	return shortName
}

func fptr(v float64) *float64 { return &v }
