package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/insightflow/insightflow-go/internal/graph"
	"github.com/insightflow/insightflow-go/internal/models"
)

// AnalyzeRequest is the body of both analyze endpoints.
type AnalyzeRequest struct {
	Ticker      string `json:"ticker"`
	Exchange    string `json:"exchange"`
	MaxRounds   int    `json:"max_rounds"`
	TimeHorizon string `json:"time_horizon"`
	UserQuery   string `json:"user_query"`
}

// Validate normalizes defaults and rejects malformed input. An absent
// max_rounds takes defaultRounds, clamped to the valid range.
func (r *AnalyzeRequest) Validate(defaultRounds int) error {
	r.Ticker = strings.TrimSpace(r.Ticker)
	if r.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	if len(r.Ticker) > 20 {
		return fmt.Errorf("ticker too long")
	}

	if r.Exchange == "" {
		r.Exchange = "NSE"
	}
	switch strings.ToUpper(r.Exchange) {
	case "NSE", "BSE":
		r.Exchange = strings.ToUpper(r.Exchange)
	default:
		return fmt.Errorf("exchange must be NSE or BSE")
	}

	if r.MaxRounds == 0 {
		r.MaxRounds = models.ClampRounds(defaultRounds)
	}
	if r.MaxRounds < 1 || r.MaxRounds > 3 {
		return fmt.Errorf("max_rounds must be between 1 and 3")
	}

	if len(r.UserQuery) > 500 {
		return fmt.Errorf("user_query too long")
	}
	return nil
}

func (r *AnalyzeRequest) toGraphRequest() graph.Request {
	return graph.Request{
		Ticker:      r.Ticker,
		Exchange:    r.Exchange,
		MaxRounds:   r.MaxRounds,
		TimeHorizon: models.ParseTimeHorizon(r.TimeHorizon),
		UserQuery:   r.UserQuery,
	}
}

// DebateResponse is the aggregate result of a completed debate.
type DebateResponse struct {
	SessionID         string                `json:"session_id"`
	Ticker            string                `json:"ticker"`
	StockData         *models.StockSnapshot `json:"stock_data"`
	NewsItems         []models.NewsItem     `json:"news_items"`
	MarketSummary     *models.MarketSummary `json:"market_summary,omitempty"`
	BullAnalysis      *models.AgentAnalysis `json:"bull_analysis"`
	BearAnalysis      *models.AgentAnalysis `json:"bear_analysis"`
	ModeratorAnalysis *models.AgentAnalysis `json:"moderator_analysis"`
	Verdict           string                `json:"verdict"`
	TotalRounds       int                   `json:"total_rounds"`
	CompletedAt       time.Time             `json:"completed_at"`
}

// newDebateResponse assembles the composite response from a terminal state.
func newDebateResponse(state *models.DebateState) DebateResponse {
	verdict := "HOLD"
	if state.ModeratorAnalysis != nil && state.ModeratorAnalysis.Recommendation != "" {
		verdict = state.ModeratorAnalysis.Recommendation
	}

	news := state.NewsItems
	if news == nil {
		news = []models.NewsItem{}
	}

	return DebateResponse{
		SessionID:         uuid.New().String(),
		Ticker:            state.Ticker,
		StockData:         state.StockData,
		NewsItems:         news,
		MarketSummary:     state.MarketSummary,
		BullAnalysis:      state.BullAnalysis,
		BearAnalysis:      state.BearAnalysis,
		ModeratorAnalysis: state.ModeratorAnalysis,
		Verdict:           verdict,
		TotalRounds:       state.CurrentRound,
		CompletedAt:       time.Now().UTC(),
	}
}

// HealthResponse is the health probe body.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func nowUTC() time.Time { return time.Now().UTC() }
