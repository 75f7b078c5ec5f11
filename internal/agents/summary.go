package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

const summarySystemPrompt = `You are a market intelligence analyst covering Indian markets. You connect individual
stocks to broader market trends and write executive summaries a busy investor can scan in
30 seconds. You respond only in the JSON format the task requests.`

// SummaryAgent produces the market+stock context overview shown before the
// debate starts.
type SummaryAgent struct {
	model ChatModel
	log   *logger.Logger
}

func NewSummaryAgent(model ChatModel, log *logger.Logger) *SummaryAgent {
	return &SummaryAgent{model: model, log: log}
}

// Generate builds the market overview from the snapshot, recent news and
// current index readings. Parsing failures degrade to a neutral summary.
func (a *SummaryAgent) Generate(
	ctx context.Context,
	stock *models.StockSnapshot,
	news []models.NewsItem,
	indices []models.IndexQuote,
) (*models.MarketSummary, error) {
	name := stock.CompanyName
	if name == "" {
		name = "Company"
	}

	prompt := fmt.Sprintf(`Analyze the market and stock situation for Indian markets:

MARKET INDICES TODAY:
%s

STOCK: %s - %s
Current Price: Rs. %.2f (%+.2f%%)
Sector: %s
P/E Ratio: %s
Market Cap: Rs. %s

RECENT NEWS (Top 10):
%s

TASK:
Provide a concise executive summary in JSON format with these fields:

1. "market_overview": 2-3 sentences about overall market sentiment today. What's driving Indian markets?

2. "stock_context": 2-3 sentences about how this specific stock is positioned in current market conditions.
   Is it moving with the market or independent? Any stock-specific factors?

3. "key_catalysts": Array of 3 major events/factors affecting this stock right now.

4. "top_headlines": Array of 3 most important news items, each with "title", "source" and "url".

5. "market_sentiment": Overall sentiment, one of "bullish", "bearish" or "neutral".

6. "confidence_score": Number between 0.5-0.95 based on data quality and clarity of signals.

Focus on connecting stock performance to broader market trends. Be direct and actionable.
Return ONLY valid JSON, no additional text.`,
		formatIndices(indices),
		stock.Ticker, name,
		stock.CurrentPrice, stock.PriceChangePercent,
		orNA(stock.Sector), na(stock.PERatio), na(stock.MarketCap),
		formatNewsWithSnippets(news))

	msg, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(summarySystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("summary completion failed: %w", err)
	}

	summary := parseSummary(msg.Content, stock.Ticker)
	a.log.Infow("market summary produced", "ticker", stock.Ticker, "sentiment", summary.MarketSentiment)
	return summary, nil
}

func formatIndices(indices []models.IndexQuote) string {
	if len(indices) == 0 {
		return "Market data unavailable"
	}
	lines := make([]string, 0, len(indices))
	for _, idx := range indices {
		lines = append(lines, fmt.Sprintf("- %s: %.2f (%+.2f%%)", idx.Name, idx.Value, idx.ChangePercent))
	}
	return strings.Join(lines, "\n")
}

func formatNewsWithSnippets(news []models.NewsItem) string {
	if len(news) == 0 {
		return "No recent news available"
	}
	if len(news) > 10 {
		news = news[:10]
	}
	var lines []string
	for i, item := range news {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, item.Title, item.Source))
		if item.Snippet != "" {
			lines = append(lines, fmt.Sprintf("   %s...", truncate(item.Snippet, 150)))
		}
	}
	return strings.Join(lines, "\n")
}

// summaryPayload mirrors the summary persona's requested JSON.
type summaryPayload struct {
	MarketOverview  string            `json:"market_overview"`
	StockContext    string            `json:"stock_context"`
	KeyCatalysts    []string          `json:"key_catalysts"`
	TopHeadlines    []models.Headline `json:"top_headlines"`
	MarketSentiment string            `json:"market_sentiment"`
	ConfidenceScore *float64          `json:"confidence_score"`
}

// parseSummary decodes the summary completion, degrading to a neutral
// overview when parsing fails.
func parseSummary(raw, ticker string) *models.MarketSummary {
	jsonStr, ok := extractJSON(raw)
	if ok {
		var payload summaryPayload
		if err := json.Unmarshal([]byte(jsonStr), &payload); err == nil && payload.ConfidenceScore != nil {
			sentiment := strings.ToLower(payload.MarketSentiment)
			switch sentiment {
			case "bullish", "bearish", "neutral":
			default:
				sentiment = "neutral"
			}
			if len(payload.KeyCatalysts) > 3 {
				payload.KeyCatalysts = payload.KeyCatalysts[:3]
			}
			if len(payload.TopHeadlines) > 3 {
				payload.TopHeadlines = payload.TopHeadlines[:3]
			}
			return &models.MarketSummary{
				MarketOverview:  payload.MarketOverview,
				StockContext:    payload.StockContext,
				KeyCatalysts:    payload.KeyCatalysts,
				TopHeadlines:    payload.TopHeadlines,
				MarketSentiment: sentiment,
				ConfidenceScore: *payload.ConfidenceScore,
			}
		}
	}

	return &models.MarketSummary{
		MarketOverview:  "Market analysis completed. Reviewing current conditions.",
		StockContext:    fmt.Sprintf("Analyzing %s in current market context.", ticker),
		KeyCatalysts:    []string{},
		TopHeadlines:    []models.Headline{},
		MarketSentiment: "neutral",
		ConfidenceScore: 0.5,
	}
}
