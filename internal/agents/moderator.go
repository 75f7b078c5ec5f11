package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

const moderatorSystemPrompt = `You are a decisive investment analyst judging a bull versus bear debate on Indian
equities (NSE/BSE). You weigh evidence and make a clear call. You only say MIXED SIGNALS
when both cases are genuinely equal, which is rare. You respond only in the JSON format
the task requests.`

// ModeratorAgent synthesizes the debate into a verdict. Invoked exactly once
// per run, after the final bear turn.
type ModeratorAgent struct {
	model ChatModel
	log   *logger.Logger
}

func NewModeratorAgent(model ChatModel, log *logger.Logger) *ModeratorAgent {
	return &ModeratorAgent{model: model, log: log}
}

// Synthesize weighs the final bull and bear analyses and produces the
// verdict. history is the full debate log, used only to note multi-round
// evolution in the prompt.
func (a *ModeratorAgent) Synthesize(
	ctx context.Context,
	stock *models.StockSnapshot,
	bull, bear *models.AgentAnalysis,
	horizon models.TimeHorizon,
	history []models.HistoryEntry,
) (*models.AgentAnalysis, error) {
	sources := combineCitations(stock.Ticker, bull.Sources, bear.Sources)
	label := horizonLabel(horizon)
	focus := focusFor(horizon)

	historyContext := ""
	if len(history) > 2 {
		historyContext = fmt.Sprintf(`

DEBATE HISTORY:
This was a %d-round debate with multiple exchanges.
Consider the evolution of arguments across rounds.`, len(history)/2)
	}

	name := stock.CompanyName
	if name == "" {
		name = stock.Ticker
	}

	prompt := fmt.Sprintf(`Synthesize the bull and bear debate on %s for a %s outlook.

IMPORTANT: This is SUGGESTIVE analysis only, NOT financial advice. Help the investor think through the trade-offs.

TIME HORIZON: %s
For this timeframe, focus on: %s

STOCK OVERVIEW:
- Company: %s
- Current Price: Rs. %.2f
- Price Change: %.2f%%
- P/E: %s | P/B: %s | Beta: %s
- ROE: %s%% | D/E: %s
- Analyst: %d Buy / %d Hold / %d Sell | Target: Rs. %s
- Sector: %s

===== BULL CASE (Confidence: %.0f%%) =====
%s

Key points:
%s

===== BEAR CASE (Confidence: %.0f%%) =====
%s

Key points:
%s%s

Analyze which case is STRONGER for the %s timeframe and provide your verdict in JSON format ONLY:
{
    "summary": "3-4 sentences synthesizing both perspectives. Clearly state which case appears stronger for %s and why.",
    "arguments": [
        {"point": "Key factor favoring bulls", "evidence": "How relevant is this for %s?", "confidence": <0.5-0.95>},
        {"point": "Key factor favoring bears", "evidence": "How relevant is this for %s?", "confidence": <0.5-0.95>},
        {"point": "Critical deciding factor", "evidence": "What tips the scales one way or the other?", "confidence": <0.5-0.95>}
    ],
    "recommendation": "<PICK ONE: LOOKS BULLISH | LEANS BULLISH | MIXED SIGNALS | LEANS BEARISH | LOOKS BEARISH>",
    "confidence_score": <0.5-0.95 based on clarity of the outlook>
}

VERDICT GUIDELINES for %s:
- LOOKS BULLISH: bull confidence >= 75%% and the bull case clearly dominates.
- LEANS BULLISH: bull confidence 60-74%% OR the bull case is moderately stronger.
- MIXED SIGNALS: ONLY when both sides are genuinely equal strength OR legitimate uncertainty exists. Don't default to this!
- LEANS BEARISH: bear confidence 60-74%% OR the bear case is moderately stronger.
- LOOKS BEARISH: bear confidence >= 75%% and the bear case clearly dominates.

DECISION LOGIC:
1. Compare bull confidence (%.0f%%) vs bear confidence (%.0f%%)
2. Evaluate which arguments are more relevant to %s
3. Consider stock fundamentals and analyst consensus
4. MAKE A CLEAR CALL - avoid defaulting to MIXED SIGNALS unless truly warranted`,
		stock.Ticker, label, label, focus,
		name, stock.CurrentPrice, stock.PriceChangePercent,
		na(stock.PERatio), na(stock.PBRatio), na(stock.Beta),
		na(stock.ROE), na(stock.DebtToEquity),
		stock.AnalystBuy, stock.AnalystHold, stock.AnalystSell, na(stock.TargetPrice),
		orNA(stock.Sector),
		bull.ConfidenceScore*100, bull.Summary, formatArguments(bull.Arguments),
		bear.ConfidenceScore*100, bear.Summary, formatArguments(bear.Arguments),
		historyContext,
		label, label, label, label, label,
		bull.ConfidenceScore*100, bear.ConfidenceScore*100, label)

	msg, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(moderatorSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("moderator completion failed: %w", err)
	}

	analysis := parseModeratorAnalysis(msg.Content, sources)
	a.log.Infow("moderator verdict produced", "ticker", stock.Ticker, "recommendation", analysis.Recommendation)
	return analysis, nil
}
