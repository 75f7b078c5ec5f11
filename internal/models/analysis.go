package models

import "time"

// AgentType identifies one of the debate personas.
type AgentType string

const (
	AgentBull      AgentType = "bull"
	AgentBear      AgentType = "bear"
	AgentModerator AgentType = "moderator"
)

// TimeHorizon is the investment window the debate argues over.
type TimeHorizon string

const (
	HorizonShortTerm  TimeHorizon = "short_term"  // 1-5 days
	HorizonMediumTerm TimeHorizon = "medium_term" // 1-3 months
	HorizonLongTerm   TimeHorizon = "long_term"   // 1+ year
)

// ParseTimeHorizon maps a wire value onto the closed horizon set,
// defaulting to medium term.
func ParseTimeHorizon(s string) TimeHorizon {
	switch TimeHorizon(s) {
	case HorizonShortTerm, HorizonMediumTerm, HorizonLongTerm:
		return TimeHorizon(s)
	default:
		return HorizonMediumTerm
	}
}

// Moderator verdicts. The moderator output is coerced onto this closed set.
const (
	VerdictLooksBullish = "LOOKS BULLISH"
	VerdictLeansBullish = "LEANS BULLISH"
	VerdictMixedSignals = "MIXED SIGNALS"
	VerdictLeansBearish = "LEANS BEARISH"
	VerdictLooksBearish = "LOOKS BEARISH"
)

// ValidVerdict reports whether v is one of the five allowed verdicts.
func ValidVerdict(v string) bool {
	switch v {
	case VerdictLooksBullish, VerdictLeansBullish, VerdictMixedSignals,
		VerdictLeansBearish, VerdictLooksBearish:
		return true
	}
	return false
}

// CitationKind tags the provenance of a source citation.
type CitationKind string

const (
	CitationStockData CitationKind = "stock_data"
	CitationNews      CitationKind = "news"
)

// SourceCitation records where a claim came from. Deduplicated by URL, or by
// name for URL-less entries.
type SourceCitation struct {
	Kind CitationKind `json:"type"`
	Name string       `json:"name"`
	URL  string       `json:"url,omitempty"`
}

// Argument is a single point made by a persona.
type Argument struct {
	Point      string  `json:"point"`
	Evidence   string  `json:"evidence"`
	Confidence float64 `json:"confidence"`
}

// AgentAnalysis is the structured output of one persona invocation.
// Values are immutable once produced; later rounds produce new ones.
type AgentAnalysis struct {
	AgentType       AgentType        `json:"agent_type"`
	Summary         string           `json:"summary"`
	Arguments       []Argument       `json:"arguments"`
	Recommendation  string           `json:"recommendation,omitempty"` // moderator only
	ConfidenceScore float64          `json:"confidence_score"`
	Sources         []SourceCitation `json:"sources"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Headline is a condensed news reference inside a market summary.
type Headline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

// MarketSummary is the summary persona's market+stock context overview.
type MarketSummary struct {
	MarketOverview  string     `json:"market_overview"`
	StockContext    string     `json:"stock_context"`
	KeyCatalysts    []string   `json:"key_catalysts"`
	TopHeadlines    []Headline `json:"top_headlines"`
	MarketSentiment string     `json:"market_sentiment"` // bullish, bearish, neutral
	ConfidenceScore float64    `json:"confidence_score"`
}
