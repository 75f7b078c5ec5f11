package dataflows

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/insightflow/insightflow-go/internal/models"
)

const googleNewsRSSURL = "https://news.google.com/rss/search"

// RSS feed structures for Google News responses.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	Source      rssSource `xml:"source"`
}

type rssSource struct {
	URL  string `xml:"url,attr"`
	Text string `xml:",chardata"`
}

// GoogleNewsClient searches news via the Google News RSS feed.
type GoogleNewsClient struct {
	client *resty.Client
	retry  *RetryConfig
}

// NewGoogleNewsClient creates a news provider backed by Google News.
func NewGoogleNewsClient() *GoogleNewsClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	return &GoogleNewsClient{
		client: client,
		retry:  DefaultRetryConfig(),
	}
}

// Search fetches up to maxResults items for the query, most recent first.
// Publication dates are normalized to ISO-8601; items whose date cannot be
// parsed keep an empty date and are left to the caller's recency filter.
func (c *GoogleNewsClient) Search(ctx context.Context, query string, maxResults int) ([]models.NewsItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 10
	}

	searchURL := fmt.Sprintf("%s?q=%s&hl=en-IN&gl=IN&ceid=IN:en",
		googleNewsRSSURL, url.QueryEscape(query))

	var feed rssFeed
	err := WithRetry(ctx, c.retry, func() error {
		resp, err := c.client.R().SetContext(ctx).Get(searchURL)
		if err != nil {
			return fmt.Errorf("failed to fetch news feed: %w", err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("HTTP error %d when fetching news feed", resp.StatusCode())
		}
		if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
			return fmt.Errorf("failed to parse news feed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(feed.Channel.Items))
	for _, it := range feed.Channel.Items {
		if len(items) >= maxResults {
			break
		}
		items = append(items, models.NewsItem{
			Title:   cleanTitle(it.Title, it.Source.Text),
			Snippet: stripHTML(it.Description),
			Source:  it.Source.Text,
			URL:     it.Link,
			Date:    normalizeDate(it.PubDate),
		})
	}
	return items, nil
}

// cleanTitle drops the " - Source" suffix Google News appends to headlines.
func cleanTitle(title, source string) string {
	if source == "" {
		return title
	}
	return strings.TrimSuffix(title, " - "+source)
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

// normalizeDate converts an RSS pubDate to ISO-8601, or returns "" when the
// value is unparseable.
func normalizeDate(pubDate string) string {
	pubDate = strings.TrimSpace(pubDate)
	if pubDate == "" {
		return ""
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC822, time.RFC3339} {
		if t, err := time.Parse(layout, pubDate); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}
