package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/insightflow/insightflow-go/internal/dataflows"
	"github.com/insightflow/insightflow-go/internal/market"
	"github.com/insightflow/insightflow-go/internal/models"
)

// Graph node keys. Branches route on DebateState.Goto using these names.
const (
	nodeFetchData    = "fetch_data"
	nodeSummary      = "summary"
	nodeBull         = "bull_analysis"
	nodeBear         = "bear_analysis"
	nodeModerator    = "moderator"
	nodeErrorHandler = "error_handler"
)

// Collaborator contracts the nodes depend on. The agents and dataflows
// packages provide the production implementations; tests provide fakes.

type DataFetcher interface {
	StockData(ctx context.Context, ticker string) (*models.StockSnapshot, error)
	News(ctx context.Context, query string, maxResults int, ticker, companyName string) []models.NewsItem
}

type IndexLister interface {
	Indices(ctx context.Context) market.IndicesResult
}

type Summarizer interface {
	Generate(ctx context.Context, stock *models.StockSnapshot, news []models.NewsItem, indices []models.IndexQuote) (*models.MarketSummary, error)
}

type BullAnalyzer interface {
	Analyze(ctx context.Context, stock *models.StockSnapshot, news []models.NewsItem, horizon models.TimeHorizon, opposing *models.AgentAnalysis, round int) (*models.AgentAnalysis, error)
}

type BearAnalyzer interface {
	Analyze(ctx context.Context, stock *models.StockSnapshot, news []models.NewsItem, horizon models.TimeHorizon, opposing *models.AgentAnalysis, round int) (*models.AgentAnalysis, error)
}

type Moderator interface {
	Synthesize(ctx context.Context, stock *models.StockSnapshot, bull, bear *models.AgentAnalysis, horizon models.TimeHorizon, history []models.HistoryEntry) (*models.AgentAnalysis, error)
}

// fetchData loads the snapshot and news. A quote failure is the one fatal
// path: it routes to the error handler instead of the debate.
func (e *Engine) fetchData(ctx context.Context, s *models.DebateState) (*models.DebateState, error) {
	s.Phase = models.PhaseFetching

	stock, err := e.data.StockData(ctx, s.Ticker)
	if err != nil {
		s.Err = fmt.Sprintf("Failed to fetch data for ticker: %s", s.Ticker)
		s.Goto = nodeErrorHandler
		e.log.Warnw("fetch failed", "ticker", s.Ticker, "error", err)
		return s, nil
	}

	query := dataflows.BuildNewsQuery(s.Ticker, stock.CompanyName)
	s.StockData = stock
	s.NewsItems = e.data.News(ctx, query, e.newsCount, s.Ticker, stock.CompanyName)

	name := stock.CompanyName
	if name == "" {
		name = s.Ticker
	}
	s.Emit(models.StreamUpdate{
		Type:      models.UpdateDataFetched,
		StockData: stock,
		NewsItems: s.NewsItems,
		Message:   fmt.Sprintf("Fetched data for %s", name),
	})

	s.Goto = nodeSummary
	return s, nil
}

// summary produces the market context overview. Failures degrade to no
// summary; the debate proceeds regardless.
func (e *Engine) summary(ctx context.Context, s *models.DebateState) (*models.DebateState, error) {
	indices := e.indices.Indices(ctx)

	sum, err := e.summarizer.Generate(ctx, s.StockData, s.NewsItems, indices.Indices)
	if err != nil {
		e.log.Warnw("market summary failed, continuing without it", "ticker", s.Ticker, "error", err)
	} else {
		s.MarketSummary = sum
		s.Emit(models.StreamUpdate{Type: models.UpdateSummary, Summary: sum})
	}

	s.Phase = models.PhaseBullAnalyzing
	return s, nil
}

func (e *Engine) bullAnalysis(ctx context.Context, s *models.DebateState) (*models.DebateState, error) {
	s.Phase = models.PhaseBullAnalyzing
	s.Emit(models.StreamUpdate{
		Type:        models.UpdateAgentStart,
		Agent:       string(models.AgentBull),
		RoundNumber: s.CurrentRound,
		Message:     "Bull agent analyzing...",
	})

	// Round 1 argues fresh; later rounds rebut the bear's previous turn.
	var rebuttal *models.AgentAnalysis
	if s.CurrentRound > 1 {
		rebuttal = s.BearAnalysis
	}

	analysis, err := e.bull.Analyze(ctx, s.StockData, s.NewsItems, s.TimeHorizon, rebuttal, s.CurrentRound)
	if err != nil {
		return nil, err
	}

	s.BullAnalysis = analysis
	s.AppendHistory(models.AgentBull, strconv.Itoa(s.CurrentRound), *analysis)
	s.Emit(models.StreamUpdate{
		Type:        models.UpdateAgentResponse,
		Agent:       string(models.AgentBull),
		Analysis:    analysis,
		RoundNumber: s.CurrentRound,
	})

	s.Phase = models.PhaseBearAnalyzing
	return s, nil
}

func (e *Engine) bearAnalysis(ctx context.Context, s *models.DebateState) (*models.DebateState, error) {
	s.Phase = models.PhaseBearAnalyzing
	s.Emit(models.StreamUpdate{
		Type:        models.UpdateAgentStart,
		Agent:       string(models.AgentBear),
		RoundNumber: s.CurrentRound,
		Message:     "Bear agent analyzing...",
	})

	analysis, err := e.bear.Analyze(ctx, s.StockData, s.NewsItems, s.TimeHorizon, s.BullAnalysis, s.CurrentRound)
	if err != nil {
		return nil, err
	}

	s.BearAnalysis = analysis
	s.AppendHistory(models.AgentBear, strconv.Itoa(s.CurrentRound), *analysis)
	s.Emit(models.StreamUpdate{
		Type:        models.UpdateAgentResponse,
		Agent:       string(models.AgentBear),
		Analysis:    analysis,
		RoundNumber: s.CurrentRound,
	})

	if s.CurrentRound < s.MaxRounds {
		s.Emit(models.StreamUpdate{
			Type:        models.UpdateRoundComplete,
			RoundNumber: s.CurrentRound,
			Message:     fmt.Sprintf("Round %d complete. Starting round %d...", s.CurrentRound, s.CurrentRound+1),
		})
		s.CurrentRound++
		s.Goto = nodeBull
		s.Phase = models.PhaseBullAnalyzing
		return s, nil
	}

	s.Goto = nodeModerator
	s.Phase = models.PhaseModerating
	return s, nil
}

func (e *Engine) moderate(ctx context.Context, s *models.DebateState) (*models.DebateState, error) {
	s.Phase = models.PhaseModerating
	s.Emit(models.StreamUpdate{
		Type:    models.UpdateAgentStart,
		Agent:   string(models.AgentModerator),
		Message: "Moderator synthesizing verdict...",
	})

	analysis, err := e.moderator.Synthesize(ctx, s.StockData, s.BullAnalysis, s.BearAnalysis, s.TimeHorizon, s.History)
	if err != nil {
		return nil, err
	}

	s.ModeratorAnalysis = analysis
	s.AppendHistory(models.AgentModerator, "final", *analysis)
	s.Emit(models.StreamUpdate{
		Type:     models.UpdateAgentResponse,
		Agent:    string(models.AgentModerator),
		Analysis: analysis,
		Message:  fmt.Sprintf("Verdict: %s", analysis.Recommendation),
	})
	s.Emit(models.StreamUpdate{Type: models.UpdateComplete, Message: "Debate complete"})

	s.Phase = models.PhaseComplete
	return s, nil
}

// errorHandler is the absorbing failure node, reachable only from fetch.
func (e *Engine) errorHandler(_ context.Context, s *models.DebateState) (*models.DebateState, error) {
	msg := s.Err
	if msg == "" {
		msg = "Unknown error occurred"
	}
	s.Err = msg
	s.Phase = models.PhaseError
	s.Emit(models.StreamUpdate{Type: models.UpdateError, Error: msg})
	return s, nil
}

func routeAfterFetch(_ context.Context, s *models.DebateState) (string, error) {
	if s.Goto == nodeErrorHandler || s.StockData == nil {
		return nodeErrorHandler, nil
	}
	return nodeSummary, nil
}

func routeAfterBear(_ context.Context, s *models.DebateState) (string, error) {
	if s.Goto == nodeBull {
		return nodeBull, nil
	}
	return nodeModerator, nil
}
