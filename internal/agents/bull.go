package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

const bullSystemPrompt = `You are an aggressive bull market analyst and a specialist in Indian equities (NSE/BSE).
You build the strongest possible positive investment case, backed by data. You have called
bottoms on Infosys, HDFC Bank and Reliance when everyone else was scared. When a bear makes
a weak argument you counter it with facts, not fear. You respond only in the JSON format the
task requests.`

// BullAgent argues the positive investment case.
type BullAgent struct {
	model ChatModel
	log   *logger.Logger
}

func NewBullAgent(model ChatModel, log *logger.Logger) *BullAgent {
	return &BullAgent{model: model, log: log}
}

// Analyze produces the bull thesis for one round. bearRebuttal carries the
// bear's previous-round analysis when the debate has looped; nil in round 1.
func (a *BullAgent) Analyze(
	ctx context.Context,
	stock *models.StockSnapshot,
	news []models.NewsItem,
	horizon models.TimeHorizon,
	bearRebuttal *models.AgentAnalysis,
	round int,
) (*models.AgentAnalysis, error) {
	sources := buildCitations(stock.Ticker, news)
	label := horizonLabel(horizon)
	focus := focusFor(horizon)

	rebuttal := ""
	if bearRebuttal != nil {
		rebuttal = fmt.Sprintf(`

BEAR'S ARGUMENTS TO COUNTER (Round %d):
Their thesis: %s
Their points: %v

Counter these points with strong evidence. Show why the bullish case is stronger for the %s timeframe.`,
			round, bearRebuttal.Summary, points(bearRebuttal.Arguments), label)
	}

	prompt := fmt.Sprintf(`Analyze %s and build a strong BULLISH case for a %s outlook.

TIME HORIZON: %s
Focus your arguments on: %s

%s

RECENT NEWS:
%s%s

Provide your analysis in the following JSON format ONLY (no other text):
{
    "summary": "2-3 sentence bullish thesis focused on the %s outlook. Be confident but substantive.",
    "arguments": [
        {"point": "Strong bullish argument for %s", "evidence": "Data supporting this view", "confidence": <0.6-0.95 based on evidence strength>},
        {"point": "Another compelling point", "evidence": "Supporting facts", "confidence": <0.6-0.95>},
        {"point": "Key catalyst or strength", "evidence": "Why this matters for %s", "confidence": <0.6-0.95>}
    ],
    "confidence_score": <YOUR HONEST ASSESSMENT 0.5-0.95 for the %s outlook>
}

CONFIDENCE GUIDELINES for %s:
- 0.85+: Very strong bullish case for this timeframe
- 0.70-0.84: Good bullish case, some uncertainties
- 0.55-0.69: Moderately bullish, notable risks exist
- Below 0.55: Weak bullish case for this timeframe

Focus on factors most relevant to the %s investment horizon.`,
		stock.Ticker, label, label, focus,
		formatSnapshot(stock), formatNews(news), rebuttal,
		label, label, label, label, label, label)

	msg, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(bullSystemPrompt),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return nil, fmt.Errorf("bull completion failed: %w", err)
	}

	analysis := parseAnalysis(msg.Content, models.AgentBull, sources)
	a.log.Infow("bull analysis produced", "ticker", stock.Ticker, "round", round, "confidence", analysis.ConfidenceScore)
	return analysis, nil
}
