package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

type fakeChatModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	if len(input) > 0 {
		f.prompt = input[len(input)-1].Content
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func snapshot() *models.StockSnapshot {
	pe := 24.5
	return &models.StockSnapshot{
		Ticker:             "INFY.NS",
		CompanyName:        "Infosys",
		CurrentPrice:       1500.25,
		PriceChangePercent: 1.2,
		FiftyTwoWeekHigh:   1900,
		FiftyTwoWeekLow:    1350,
		PERatio:            &pe,
	}
}

func TestBullProseCompletionFallsBack(t *testing.T) {
	fake := &fakeChatModel{reply: "I think this stock is great, buy it."}
	agent := NewBullAgent(fake, logger.Nop())

	got, err := agent.Analyze(context.Background(), snapshot(), nil, models.HorizonMediumTerm, nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ConfidenceScore != 0.6 {
		t.Errorf("confidence = %v, want fallback 0.6", got.ConfidenceScore)
	}
	if len(got.Sources) == 0 || got.Sources[0].Kind != models.CitationStockData {
		t.Errorf("citations missing from fallback analysis")
	}
}

func TestBullPromptRendersMissingFieldsAsNA(t *testing.T) {
	fake := &fakeChatModel{reply: `{"summary": "s", "arguments": [], "confidence_score": 0.7}`}
	agent := NewBullAgent(fake, logger.Nop())

	if _, err := agent.Analyze(context.Background(), snapshot(), nil, models.HorizonShortTerm, nil, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(fake.prompt, "P/E Ratio: 24.50") {
		t.Errorf("populated field not rendered:\n%s", fake.prompt)
	}
	if !strings.Contains(fake.prompt, "P/B Ratio: N/A") {
		t.Errorf("missing field not rendered as N/A")
	}
	if !strings.Contains(fake.prompt, "Short-term (1-5 days)") {
		t.Errorf("horizon label missing from prompt")
	}
}

func TestBearPromptCarriesBullRebuttal(t *testing.T) {
	fake := &fakeChatModel{reply: `{"summary": "s", "arguments": [], "confidence_score": 0.7}`}
	agent := NewBearAgent(fake, logger.Nop())

	bull := &models.AgentAnalysis{
		AgentType: models.AgentBull,
		Summary:   "Earnings will surprise to the upside.",
		Arguments: []models.Argument{{Point: "Deal pipeline strong", Confidence: 0.8}},
	}
	if _, err := agent.Analyze(context.Background(), snapshot(), nil, models.HorizonMediumTerm, bull, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(fake.prompt, "Earnings will surprise to the upside.") {
		t.Errorf("bull thesis missing from rebuttal context")
	}
	if !strings.Contains(fake.prompt, "Round 2") {
		t.Errorf("round number missing from rebuttal context")
	}
}

func TestModeratorTransportErrorPropagates(t *testing.T) {
	fake := &fakeChatModel{err: errors.New("upstream 503")}
	agent := NewModeratorAgent(fake, logger.Nop())

	bull := &models.AgentAnalysis{AgentType: models.AgentBull, ConfidenceScore: 0.7}
	bear := &models.AgentAnalysis{AgentType: models.AgentBear, ConfidenceScore: 0.6}
	_, err := agent.Synthesize(context.Background(), snapshot(), bull, bear, models.HorizonMediumTerm, nil)
	if err == nil {
		t.Fatalf("expected transport error to propagate")
	}
}

func TestSummaryFallbackIsNeutral(t *testing.T) {
	fake := &fakeChatModel{reply: "markets were volatile today"}
	agent := NewSummaryAgent(fake, logger.Nop())

	got, err := agent.Generate(context.Background(), snapshot(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MarketSentiment != "neutral" {
		t.Errorf("fallback sentiment = %q, want neutral", got.MarketSentiment)
	}
	if got.ConfidenceScore != 0.5 {
		t.Errorf("fallback confidence = %v, want 0.5", got.ConfidenceScore)
	}
}
