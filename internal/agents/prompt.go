package agents

import (
	"fmt"
	"strings"

	"github.com/insightflow/insightflow-go/internal/models"
)

// Human-readable labels for the investment window a persona argues over.
var horizonLabels = map[models.TimeHorizon]string{
	models.HorizonShortTerm:  "Short-term (1-5 days)",
	models.HorizonMediumTerm: "Medium-term (1-3 months)",
	models.HorizonLongTerm:   "Long-term (1+ year)",
}

var horizonFocus = map[models.TimeHorizon]string{
	models.HorizonShortTerm:  "momentum, recent news sentiment, technical patterns, and immediate catalysts",
	models.HorizonMediumTerm: "quarterly results outlook, sector trends, technical support/resistance, and upcoming events",
	models.HorizonLongTerm:   "fundamental valuation, competitive moat, management quality, and long-term growth story",
}

func horizonLabel(h models.TimeHorizon) string {
	if label, ok := horizonLabels[h]; ok {
		return label
	}
	return horizonLabels[models.HorizonMediumTerm]
}

func focusFor(h models.TimeHorizon) string {
	if focus, ok := horizonFocus[h]; ok {
		return focus
	}
	return "overall investment merit"
}

// na renders an optional metric, keeping the field visible even when the
// provider reported nothing.
func na(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// formatSnapshot renders every snapshot field for a persona prompt. Missing
// values show as "N/A" so the schema shape stays stable across tickers.
func formatSnapshot(s *models.StockSnapshot) string {
	name := s.CompanyName
	if name == "" {
		name = s.Ticker
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CURRENT STOCK DATA:\n")
	fmt.Fprintf(&b, "- Company: %s\n", name)
	fmt.Fprintf(&b, "- Current Price: Rs. %.2f\n", s.CurrentPrice)
	fmt.Fprintf(&b, "- Price Change: %.2f%%\n", s.PriceChangePercent)
	fmt.Fprintf(&b, "- P/E Ratio: %s\n", na(s.PERatio))
	fmt.Fprintf(&b, "- P/B Ratio: %s\n", na(s.PBRatio))
	fmt.Fprintf(&b, "- Market Cap: Rs. %s\n", na(s.MarketCap))
	fmt.Fprintf(&b, "- 52-Week Range: Rs. %.2f - Rs. %.2f\n", s.FiftyTwoWeekLow, s.FiftyTwoWeekHigh)
	fmt.Fprintf(&b, "- Sector: %s\n", orNA(s.Sector))
	fmt.Fprintf(&b, "- Industry: %s\n", orNA(s.Industry))
	fmt.Fprintf(&b, "\nFUNDAMENTALS:\n")
	fmt.Fprintf(&b, "- EPS: Rs. %s\n", na(s.EPS))
	fmt.Fprintf(&b, "- Book Value: Rs. %s\n", na(s.BookValue))
	fmt.Fprintf(&b, "- Beta: %s\n", na(s.Beta))
	fmt.Fprintf(&b, "- Dividend Yield: %s%%\n", na(s.DividendYield))
	fmt.Fprintf(&b, "- ROE: %s%%\n", na(s.ROE))
	fmt.Fprintf(&b, "- Debt/Equity: %s\n", na(s.DebtToEquity))
	fmt.Fprintf(&b, "\nSHAREHOLDING:\n")
	fmt.Fprintf(&b, "- Promoter Holding: %s%%\n", na(s.PromoterHolding))
	fmt.Fprintf(&b, "- Institutional Holding: %s%%\n", na(s.FIIHolding))
	fmt.Fprintf(&b, "\nANALYST CONSENSUS:\n")
	fmt.Fprintf(&b, "- Buy: %d, Hold: %d, Sell: %d\n", s.AnalystBuy, s.AnalystHold, s.AnalystSell)
	fmt.Fprintf(&b, "- Target Price: Rs. %s\n", na(s.TargetPrice))
	fmt.Fprintf(&b, "\nQUARTERLY PERFORMANCE:\n")
	fmt.Fprintf(&b, "- Revenue: Rs. %s\n", na(s.QuarterlyRevenue))
	fmt.Fprintf(&b, "- Profit: Rs. %s\n", na(s.QuarterlyProfit))
	fmt.Fprintf(&b, "- Revenue Growth: %s%%\n", na(s.RevenueGrowth))
	fmt.Fprintf(&b, "- Profit Growth: %s%%", na(s.ProfitGrowth))
	return b.String()
}

// formatNews lists up to three recent headlines for a persona prompt.
func formatNews(items []models.NewsItem) string {
	if len(items) == 0 {
		return "No recent news available."
	}
	if len(items) > 3 {
		items = items[:3]
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- %s (%s)", it.Title, it.Source))
	}
	return strings.Join(lines, "\n")
}

// formatArguments renders an opposing persona's points for a rebuttal prompt.
func formatArguments(args []models.Argument) string {
	lines := make([]string, 0, len(args))
	for _, a := range args {
		lines = append(lines, fmt.Sprintf("  - %s (Evidence: %s, Confidence: %.0f%%)", a.Point, a.Evidence, a.Confidence*100))
	}
	return strings.Join(lines, "\n")
}

func points(args []models.Argument) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		out = append(out, a.Point)
	}
	return out
}
