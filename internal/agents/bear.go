package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

const bearSystemPrompt = `You are a skeptical bear market analyst and a specialist in Indian equities (NSE/BSE).
You find the risks everyone else ignores: stretched valuations, weakening fundamentals,
promoter pledging, governance red flags. You warned on overvalued IPOs before they cracked.
When a bull makes a euphoric argument you puncture it with data. You respond only in the
JSON format the task requests.`

// BearAgent argues risks and counters the bull case.
type BearAgent struct {
	model ChatModel
	log   *logger.Logger
}

func NewBearAgent(model ChatModel, log *logger.Logger) *BearAgent {
	return &BearAgent{model: model, log: log}
}

// Analyze produces the bear thesis for one round, countering bullClaims
// when present.
func (a *BearAgent) Analyze(
	ctx context.Context,
	stock *models.StockSnapshot,
	news []models.NewsItem,
	horizon models.TimeHorizon,
	bullClaims *models.AgentAnalysis,
	round int,
) (*models.AgentAnalysis, error) {
	sources := buildCitations(stock.Ticker, news)
	label := horizonLabel(horizon)
	focus := focusFor(horizon)

	counter := ""
	if bullClaims != nil {
		counter = fmt.Sprintf(`

BULL'S ARGUMENTS TO COUNTER (Round %d):
Their thesis: %s
Their points: %v

Counter these points with evidence. Show the risks and concerns for the %s timeframe.`,
			round, bullClaims.Summary, points(bullClaims.Arguments), label)
	}

	prompt := fmt.Sprintf(`Analyze %s and build a strong BEARISH/CAUTIONARY case for a %s outlook.

TIME HORIZON: %s
Focus your arguments on: %s

%s

RECENT NEWS:
%s%s

Provide your analysis in the following JSON format ONLY (no other text):
{
    "summary": "2-3 sentence bearish/cautionary thesis focused on the %s outlook. Highlight key risks.",
    "arguments": [
        {"point": "Key risk for %s", "evidence": "Data supporting this concern", "confidence": <0.6-0.95 based on evidence strength>},
        {"point": "Another concern to consider", "evidence": "Supporting facts", "confidence": <0.6-0.95>},
        {"point": "Potential headwind or challenge", "evidence": "Why this matters for %s", "confidence": <0.6-0.95>}
    ],
    "confidence_score": <YOUR HONEST ASSESSMENT 0.5-0.95 for the bearish case in %s>
}

CONFIDENCE GUIDELINES for %s:
- 0.85+: Very strong bearish case for this timeframe
- 0.70-0.84: Good bearish case, some positives exist
- 0.55-0.69: Moderately bearish, bulls have valid points
- Below 0.55: Weak bearish case for this timeframe

Focus on risks and concerns most relevant to the %s investment horizon.`,
		stock.Ticker, label, label, focus,
		formatSnapshot(stock), formatNews(news), counter,
		label, label, label, label, label, label)

	msg, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(bearSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("bear completion failed: %w", err)
	}

	analysis := parseAnalysis(msg.Content, models.AgentBear, sources)
	a.log.Infow("bear analysis produced", "ticker", stock.Ticker, "round", round, "confidence", analysis.ConfidenceScore)
	return analysis, nil
}
