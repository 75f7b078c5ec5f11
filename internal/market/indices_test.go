package market

import (
	"context"
	"errors"
	"testing"

	finance "github.com/piquette/finance-go"

	"github.com/insightflow/insightflow-go/pkg/logger"
)

func TestIndicesDegradePerIndex(t *testing.T) {
	svc := &Service{
		log: logger.Nop(),
		fetch: func(symbol string) (*finance.Quote, error) {
			if symbol == "^NSEBANK" {
				return nil, errors.New("upstream down")
			}
			return &finance.Quote{
				RegularMarketPrice:         100,
				RegularMarketChange:        -2,
				RegularMarketChangePercent: -1.96,
			}, nil
		},
	}

	got := svc.Indices(context.Background())
	if len(got.Indices) != 4 {
		t.Fatalf("expected all 4 indices, got %d", len(got.Indices))
	}
	for _, idx := range got.Indices {
		if idx.Symbol == "^NSEBANK" {
			if idx.Value != 0 || idx.Trend != "flat" {
				t.Errorf("failed index should be a flat placeholder, got %+v", idx)
			}
		} else if idx.Trend != "down" {
			t.Errorf("index %s trend = %q, want down", idx.Symbol, idx.Trend)
		}
	}
}

func TestTrend(t *testing.T) {
	if trend(1) != "up" || trend(-1) != "down" || trend(0) != "flat" {
		t.Errorf("trend mapping wrong")
	}
}
