package agents

import (
	"strings"
	"testing"

	"github.com/insightflow/insightflow-go/internal/models"
)

func TestBuildCitationsQuoteProviderFirst(t *testing.T) {
	got := buildCitations("INFY.NS", nil)
	if len(got) != 1 {
		t.Fatalf("expected only the quote citation, got %d", len(got))
	}
	if got[0].Kind != models.CitationStockData {
		t.Errorf("first citation kind = %s", got[0].Kind)
	}
	if got[0].URL != "https://finance.yahoo.com/quote/INFY.NS" {
		t.Errorf("quote citation url = %q", got[0].URL)
	}
}

func TestBuildCitationsDistinctSources(t *testing.T) {
	news := []models.NewsItem{
		{Title: "First story", Source: "Mint", URL: "https://a.example/1"},
		{Title: "Second story", Source: "Reuters", URL: "https://a.example/2"},
		{Title: "Third story", Source: "Mint", URL: "https://a.example/3"},
	}
	got := buildCitations("TCS.NS", news)
	// quote + Mint + Reuters; the second Mint story is skipped.
	if len(got) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(got))
	}
	if !strings.HasPrefix(got[1].Name, "Mint: ") || !strings.HasPrefix(got[2].Name, "Reuters: ") {
		t.Errorf("citation names = %q, %q", got[1].Name, got[2].Name)
	}
}

func TestBuildCitationsSkipsIncompleteItems(t *testing.T) {
	news := []models.NewsItem{
		{Title: "No url", Source: "Mint"},
		{Title: "No source", URL: "https://a.example/1"},
	}
	got := buildCitations("TCS.NS", news)
	if len(got) != 1 {
		t.Errorf("incomplete items should be skipped, got %d citations", len(got))
	}
}

func TestBuildCitationsTruncatesLongTitles(t *testing.T) {
	long := strings.Repeat("a", 80)
	news := []models.NewsItem{{Title: long, Source: "Mint", URL: "https://a.example/1"}}

	got := buildCitations("TCS.NS", news)
	want := "Mint: " + strings.Repeat("a", 60) + "..."
	if got[1].Name != want {
		t.Errorf("truncated name = %q, want %q", got[1].Name, want)
	}
}

func TestCombineCitationsDedup(t *testing.T) {
	bull := []models.SourceCitation{
		{Kind: models.CitationStockData, Name: "Yahoo Finance", URL: "https://finance.yahoo.com/quote/TCS.NS"},
		{Kind: models.CitationNews, Name: "Mint: story", URL: "https://a.example/1"},
		{Kind: models.CitationNews, Name: "Wire brief"},
	}
	bear := []models.SourceCitation{
		{Kind: models.CitationStockData, Name: "Yahoo Finance", URL: "https://finance.yahoo.com/quote/TCS.NS"},
		{Kind: models.CitationNews, Name: "Mint: story again", URL: "https://a.example/1"},
		{Kind: models.CitationNews, Name: "Wire brief"},
		{Kind: models.CitationNews, Name: "Reuters: other", URL: "https://a.example/2"},
	}

	got := combineCitations("TCS.NS", bull, bear)
	// quote + one URL-deduped Mint + one name-deduped wire brief + Reuters.
	if len(got) != 4 {
		t.Fatalf("expected 4 citations, got %d: %+v", len(got), got)
	}
	if got[0].Kind != models.CitationStockData {
		t.Errorf("quote citation must stay first")
	}
}
