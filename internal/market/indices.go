package market

import (
	"context"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

// The indices shown on the dashboard. Yahoo symbols.
var indexList = []struct {
	Name   string
	Symbol string
}{
	{"SENSEX", "^BSESN"},
	{"NIFTY 50", "^NSEI"},
	{"NIFTY BANK", "^NSEBANK"},
	{"NIFTY IT", "^CNXIT"},
}

// IndicesResult is the aggregate indices response.
type IndicesResult struct {
	Indices   []models.IndexQuote `json:"indices"`
	Timestamp time.Time           `json:"timestamp"`
}

// Service fetches Indian market index readings.
type Service struct {
	fetch func(symbol string) (*finance.Quote, error)
	log   *logger.Logger
}

func NewService(log *logger.Logger) *Service {
	return &Service{fetch: quote.Get, log: log}
}

// Indices returns current readings for all tracked indices. A failing index
// degrades to a zero placeholder with a flat trend instead of failing the
// whole response.
func (s *Service) Indices(ctx context.Context) IndicesResult {
	result := IndicesResult{
		Indices:   make([]models.IndexQuote, 0, len(indexList)),
		Timestamp: time.Now().UTC(),
	}

	for _, idx := range indexList {
		if err := ctx.Err(); err != nil {
			break
		}

		q, err := s.fetch(idx.Symbol)
		if err != nil || q == nil {
			s.log.Warnw("index fetch failed", "index", idx.Name, "error", err)
			result.Indices = append(result.Indices, models.IndexQuote{
				Name:   idx.Name,
				Symbol: idx.Symbol,
				Trend:  "flat",
			})
			continue
		}

		result.Indices = append(result.Indices, models.IndexQuote{
			Name:          idx.Name,
			Symbol:        idx.Symbol,
			Value:         q.RegularMarketPrice,
			Change:        q.RegularMarketChange,
			ChangePercent: q.RegularMarketChangePercent,
			Trend:         trend(q.RegularMarketChange),
		})
	}
	return result
}

func trend(change float64) string {
	switch {
	case change > 0:
		return "up"
	case change < 0:
		return "down"
	default:
		return "flat"
	}
}
