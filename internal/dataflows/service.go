package dataflows

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

// newsRecencyDays bounds how old an article may be and still feed the debate.
const newsRecencyDays = 60

// nameStopwords are company-name fragments too generic to anchor relevance.
var nameStopwords = map[string]bool{
	"the":    true,
	"new":    true,
	"india":  true,
	"indian": true,
}

// Service bundles the market data and news providers behind one fetch API.
type Service struct {
	quotes QuoteProvider
	news   NewsProvider
	log    *logger.Logger
}

func NewService(quotes QuoteProvider, news NewsProvider, log *logger.Logger) *Service {
	return &Service{quotes: quotes, news: news, log: log}
}

// StockData fetches the full snapshot for a Yahoo-formatted ticker.
func (s *Service) StockData(ctx context.Context, ticker string) (*models.StockSnapshot, error) {
	snap, err := s.quotes.Fetch(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetching stock data for %s: %w", ticker, err)
	}
	return snap, nil
}

// BuildNewsQuery composes the news search query for a ticker. The company
// name, when known, gives better recall than the bare exchange symbol.
func BuildNewsQuery(ticker, companyName string) string {
	symbol := StripSuffix(ticker)
	name := strings.TrimSpace(companyName)
	if name != "" && !strings.EqualFold(name, symbol) {
		return fmt.Sprintf("%q OR %q stock news India", name, symbol)
	}
	return fmt.Sprintf("%q stock news India NSE", symbol)
}

// News fetches articles for the query and filters them for recency and
// relevance to the ticker. Provider failures degrade to an empty list so a
// debate can proceed on stock data alone.
func (s *Service) News(ctx context.Context, query string, maxResults int, ticker, companyName string) []models.NewsItem {
	if maxResults <= 0 {
		maxResults = 10
	}

	// Over-fetch so the filters still leave enough to fill the request.
	raw, err := s.news.Search(ctx, query, maxResults*2)
	if err != nil {
		s.log.Warnw("news fetch failed, continuing without articles", "query", query, "error", err)
		return []models.NewsItem{}
	}

	recent := filterRecent(raw, time.Now().UTC())
	relevant := filterRelevant(recent, ticker, companyName)
	if len(relevant) > maxResults {
		relevant = relevant[:maxResults]
	}

	s.log.Infow("news filtered", "query", query, "fetched", len(raw), "recent", len(recent), "relevant", len(relevant))
	return relevant
}

// filterRecent keeps articles published within the recency window. Items
// with missing or unparseable dates are dropped rather than trusted.
func filterRecent(items []models.NewsItem, now time.Time) []models.NewsItem {
	cutoff := now.AddDate(0, 0, -newsRecencyDays)
	kept := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		t, err := time.Parse(time.RFC3339, it.Date)
		if err != nil {
			continue
		}
		if t.Before(cutoff) {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// filterRelevant keeps articles whose title, snippet or URL mentions the
// ticker symbol, the company name, or the company name's first significant
// word. With an empty ticker the filter is skipped entirely.
func filterRelevant(items []models.NewsItem, ticker, companyName string) []models.NewsItem {
	symbol := strings.ToLower(StripSuffix(ticker))
	if symbol == "" {
		return items
	}
	name := strings.ToLower(strings.TrimSpace(companyName))

	var wordRe *regexp.Regexp
	if word := firstSignificantWord(name); word != "" {
		wordRe = regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	}

	kept := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		text := strings.ToLower(it.Title + " " + it.Snippet + " " + it.URL)
		switch {
		case strings.Contains(text, symbol):
		case name != "" && strings.Contains(text, name):
		case wordRe != nil && wordRe.MatchString(text):
		default:
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// firstSignificantWord picks the first company-name word longer than three
// characters that is not a generic stopword.
func firstSignificantWord(name string) string {
	for _, w := range strings.Fields(name) {
		w = strings.Trim(w, ".,&()-")
		if len(w) > 3 && !nameStopwords[w] {
			return w
		}
	}
	return ""
}
