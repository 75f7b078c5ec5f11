package agents

import (
	"fmt"

	"github.com/insightflow/insightflow-go/internal/models"
)

const citationTitleLimit = 60

// buildCitations constructs the provenance list for a bull or bear analysis:
// the quote provider first, then up to three recent news items, one per
// distinct source name, skipping items without both a URL and a source.
func buildCitations(ticker string, news []models.NewsItem) []models.SourceCitation {
	citations := []models.SourceCitation{quoteCitation(ticker)}

	seen := map[string]bool{}
	limit := len(news)
	if limit > 3 {
		limit = 3
	}
	for _, item := range news[:limit] {
		if item.URL == "" || item.Source == "" || seen[item.Source] {
			continue
		}
		title := item.Title
		if len(title) > citationTitleLimit {
			title = title[:citationTitleLimit] + "..."
		}
		name := item.Source
		if title != "" {
			name = fmt.Sprintf("%s: %s", item.Source, title)
		}
		citations = append(citations, models.SourceCitation{
			Kind: models.CitationNews,
			Name: name,
			URL:  item.URL,
		})
		seen[item.Source] = true
	}
	return citations
}

// combineCitations merges bull and bear citations for the moderator,
// deduplicating by URL, then by name for URL-less entries. The quote
// provider citation stays first.
func combineCitations(ticker string, bull, bear []models.SourceCitation) []models.SourceCitation {
	first := quoteCitation(ticker)
	combined := []models.SourceCitation{first}
	seenURLs := map[string]bool{first.URL: true}
	seenNames := map[string]bool{first.Name: true}

	for _, src := range append(append([]models.SourceCitation{}, bull...), bear...) {
		if src.URL != "" {
			if seenURLs[src.URL] {
				continue
			}
			seenURLs[src.URL] = true
		} else {
			if seenNames[src.Name] {
				continue
			}
		}
		seenNames[src.Name] = true
		combined = append(combined, src)
	}
	return combined
}

func quoteCitation(ticker string) models.SourceCitation {
	return models.SourceCitation{
		Kind: models.CitationStockData,
		Name: "Yahoo Finance",
		URL:  fmt.Sprintf("https://finance.yahoo.com/quote/%s", ticker),
	}
}
