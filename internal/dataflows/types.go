package dataflows

import (
	"context"
	"errors"

	"github.com/insightflow/insightflow-go/internal/models"
)

// ErrNoData is returned by a quote provider when the ticker resolves to
// nothing. This is the one fatal failure in the debate pipeline.
var ErrNoData = errors.New("no data found for ticker")

// QuoteProvider fetches market data for a single formatted ticker
// (symbol + exchange suffix, e.g. "INFY.NS").
type QuoteProvider interface {
	// Fetch returns the full snapshot used by a debate run.
	Fetch(ctx context.Context, ticker string) (*models.StockSnapshot, error)
	// Quote returns the compact view used by the ticker tape.
	Quote(ctx context.Context, ticker string) (*models.TickerQuote, error)
}

// NewsProvider searches for recent news. Best effort: implementations return
// an empty slice rather than partial garbage, and callers treat errors as
// recoverable.
type NewsProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]models.NewsItem, error)
}
