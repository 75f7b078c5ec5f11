package dataflows

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

func TestFormatTicker(t *testing.T) {
	cases := []struct {
		symbol, exchange, want string
	}{
		{"INFY", "NSE", "INFY.NS"},
		{"infy", "nse", "INFY.NS"},
		{"TCS", "BSE", "TCS.BO"},
		{"RELIANCE.NS", "NSE", "RELIANCE.NS"},
		{"RELIANCE.NS", "BSE", "RELIANCE.BO"},
		{" hdfcbank ", "NSE", "HDFCBANK.NS"},
		{"SBIN", "", "SBIN.BO"},
	}
	for _, c := range cases {
		if got := FormatTicker(c.symbol, c.exchange); got != c.want {
			t.Errorf("FormatTicker(%q, %q) = %q, want %q", c.symbol, c.exchange, got, c.want)
		}
	}
}

func TestStripSuffix(t *testing.T) {
	cases := map[string]string{
		"INFY.NS":  "INFY",
		"TCS.BO":   "TCS",
		"RELIANCE": "RELIANCE",
	}
	for in, want := range cases {
		if got := StripSuffix(in); got != want {
			t.Errorf("StripSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildNewsQuery(t *testing.T) {
	got := BuildNewsQuery("TCS.NS", "Tata Consultancy Services")
	want := `"Tata Consultancy Services" OR "TCS" stock news India`
	if got != want {
		t.Errorf("BuildNewsQuery with company name = %q, want %q", got, want)
	}

	got = BuildNewsQuery("INFY.NS", "")
	want = `"INFY" stock news India NSE`
	if got != want {
		t.Errorf("BuildNewsQuery without company name = %q, want %q", got, want)
	}
}

func TestFilterRecent(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	items := []models.NewsItem{
		{Title: "fresh", Date: now.AddDate(0, 0, -1).Format(time.RFC3339)},
		{Title: "edge", Date: now.AddDate(0, 0, -59).Format(time.RFC3339)},
		{Title: "stale", Date: now.AddDate(0, 0, -61).Format(time.RFC3339)},
		{Title: "undated", Date: ""},
		{Title: "garbled", Date: "yesterday-ish"},
	}

	kept := filterRecent(items, now)
	if len(kept) != 2 {
		t.Fatalf("expected 2 recent items, got %d", len(kept))
	}
	if kept[0].Title != "fresh" || kept[1].Title != "edge" {
		t.Errorf("unexpected survivors: %q, %q", kept[0].Title, kept[1].Title)
	}
}

func TestFilterRelevant(t *testing.T) {
	items := []models.NewsItem{
		{Title: "TCS posts record quarterly profit"},
		{Title: "Tata group expands into semiconductors"},
		{Title: "Monsoon outlook improves across the country"},
		{Title: "Banking sector update", Snippet: "tcs among top gainers"},
		{Title: "Q1 results beat street estimates", URL: "https://www.livemint.com/companies/tcs-q1-results-2026.html"},
	}

	kept := filterRelevant(items, "TCS.NS", "Tata Consultancy Services")
	if len(kept) != 4 {
		t.Fatalf("expected 4 relevant items, got %d", len(kept))
	}
	for _, it := range kept {
		if it.Title == "Monsoon outlook improves across the country" {
			t.Errorf("irrelevant item survived the filter")
		}
	}
}

func TestFilterRelevantEmptyTickerSkipsFilter(t *testing.T) {
	items := []models.NewsItem{
		{Title: "anything at all"},
		{Title: "something else"},
	}
	kept := filterRelevant(items, "", "")
	if len(kept) != len(items) {
		t.Errorf("empty ticker should skip filtering, got %d of %d", len(kept), len(items))
	}
}

func TestFirstSignificantWord(t *testing.T) {
	cases := map[string]string{
		"tata consultancy services": "tata",
		"the new india assurance":   "assurance",
		"itc":                       "",
		"":                          "",
	}
	for in, want := range cases {
		if got := firstSignificantWord(in); got != want {
			t.Errorf("firstSignificantWord(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeNews struct {
	items []models.NewsItem
	err   error
	asked int
}

func (f *fakeNews) Search(_ context.Context, _ string, maxResults int) ([]models.NewsItem, error) {
	f.asked = maxResults
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > maxResults {
		return f.items[:maxResults], nil
	}
	return f.items, nil
}

func TestNewsOverfetchesThenTruncates(t *testing.T) {
	now := time.Now().UTC()
	var items []models.NewsItem
	for i := 0; i < 8; i++ {
		items = append(items, models.NewsItem{
			Title: fmt.Sprintf("INFY headline %d", i),
			Date:  now.AddDate(0, 0, -i).Format(time.RFC3339),
		})
	}
	fake := &fakeNews{items: items}
	svc := NewService(nil, fake, logger.Nop())

	got := svc.News(context.Background(), "infosys", 3, "INFY.NS", "Infosys")
	if fake.asked != 6 {
		t.Errorf("expected over-fetch of 6, provider asked for %d", fake.asked)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 items after truncation, got %d", len(got))
	}
}

func TestNewsErrorDegradesToEmpty(t *testing.T) {
	fake := &fakeNews{err: errors.New("rss unreachable")}
	svc := NewService(nil, fake, logger.Nop())

	got := svc.News(context.Background(), "infosys", 5, "INFY.NS", "Infosys")
	if got == nil {
		t.Fatalf("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no items on provider failure, got %d", len(got))
	}
}
