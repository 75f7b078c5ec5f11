package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/insightflow/insightflow-go/internal/cache"
	"github.com/insightflow/insightflow-go/internal/dataflows"
	"github.com/insightflow/insightflow-go/internal/graph"
	"github.com/insightflow/insightflow-go/internal/market"
	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

type fakeEngine struct {
	mu      sync.Mutex
	state   *models.DebateState
	err     error
	updates []models.StreamUpdate
	lastReq graph.Request
}

func (f *fakeEngine) Run(_ context.Context, req graph.Request) (*models.DebateState, error) {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

func (f *fakeEngine) Stream(_ context.Context, req graph.Request) <-chan models.StreamUpdate {
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	ch := make(chan models.StreamUpdate, len(f.updates))
	for _, u := range f.updates {
		ch <- u
	}
	close(ch)
	return ch
}

func (f *fakeEngine) request() graph.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

type fakeStocks struct {
	snapshot *models.StockSnapshot
	err      error
}

func (f *fakeStocks) StockData(_ context.Context, _ string) (*models.StockSnapshot, error) {
	return f.snapshot, f.err
}

type fakeTape struct{}

func (fakeTape) Get(_ context.Context) (*cache.TapeResult, error) {
	return &cache.TapeResult{
		Tickers:  []models.TickerQuote{{Symbol: "INFY", Price: 1500}},
		Count:    1,
		CachedAt: time.Now().UTC(),
	}, nil
}

type fakeIndexSvc struct{}

func (fakeIndexSvc) Indices(_ context.Context) market.IndicesResult {
	return market.IndicesResult{
		Indices:   []models.IndexQuote{{Name: "NIFTY 50", Symbol: "^NSEI", Value: 24000, Trend: "up"}},
		Timestamp: time.Now().UTC(),
	}
}

func completeState() *models.DebateState {
	s := models.NewDebateState("INFY.NS", 1, "", models.HorizonMediumTerm)
	s.StockData = &models.StockSnapshot{Ticker: "INFY.NS", CompanyName: "Infosys", CurrentPrice: 1500}
	s.BullAnalysis = &models.AgentAnalysis{AgentType: models.AgentBull, ConfidenceScore: 0.7}
	s.BearAnalysis = &models.AgentAnalysis{AgentType: models.AgentBear, ConfidenceScore: 0.6}
	s.ModeratorAnalysis = &models.AgentAnalysis{
		AgentType:       models.AgentModerator,
		Recommendation:  models.VerdictLeansBullish,
		ConfidenceScore: 0.75,
	}
	s.Phase = models.PhaseComplete
	return s
}

func newTestHandler(engine *fakeEngine, stocks *fakeStocks) *Handler {
	if stocks == nil {
		stocks = &fakeStocks{}
	}
	return NewHandler(engine, stocks, fakeTape{}, fakeIndexSvc{}, "insightflow", "1.0.0", 1, logger.Nop())
}

func TestAnalyzeEndToEnd(t *testing.T) {
	engine := &fakeEngine{state: completeState()}
	h := newTestHandler(engine, nil)

	body := `{"ticker": "INFY", "exchange": "NSE", "max_rounds": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp DebateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Verdict != models.VerdictLeansBullish {
		t.Errorf("verdict = %q", resp.Verdict)
	}
	if resp.TotalRounds != 1 {
		t.Errorf("total_rounds = %d", resp.TotalRounds)
	}
	if resp.SessionID == "" {
		t.Errorf("session_id missing")
	}
	if engine.request().Ticker != "INFY" || engine.request().Exchange != "NSE" {
		t.Errorf("engine request = %+v", engine.request())
	}
}

func TestAnalyzeVerdictDefaultsToHold(t *testing.T) {
	state := completeState()
	state.ModeratorAnalysis.Recommendation = ""
	h := newTestHandler(&fakeEngine{state: state}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"ticker": "INFY"}`))
	rec := httptest.NewRecorder()
	h.handleAnalyze(rec, req)

	var resp DebateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Verdict != "HOLD" {
		t.Errorf("verdict = %q, want HOLD", resp.Verdict)
	}
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	h := newTestHandler(&fakeEngine{state: completeState()}, nil)

	cases := []string{
		`{"ticker": ""}`,
		`{"ticker": "INFY", "exchange": "NYSE"}`,
		`{"ticker": "INFY", "max_rounds": 4}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.handleAnalyze(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("body %s: status = %d, want 422", body, rec.Code)
		}
	}
}

func TestAnalyzeStreamFraming(t *testing.T) {
	engine := &fakeEngine{updates: []models.StreamUpdate{
		{Type: models.UpdateStarted, Ticker: "INFY.NS"},
		{Type: models.UpdateAgentStart, Agent: "bull", RoundNumber: 1},
		{Type: models.UpdateComplete, Message: "Debate complete"},
	}}
	h := newTestHandler(engine, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/stream", strings.NewReader(`{"ticker": "INFY"}`))
	rec := httptest.NewRecorder()
	h.handleAnalyzeStream(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	frames := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	if len(frames) != 3 {
		t.Fatalf("expected 3 SSE frames, got %d:\n%s", len(frames), rec.Body.String())
	}
	for _, frame := range frames {
		if !strings.HasPrefix(frame, "data: ") {
			t.Errorf("frame missing data prefix: %q", frame)
		}
	}
	var first models.StreamUpdate
	if err := json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &first); err != nil {
		t.Fatalf("first frame not JSON: %v", err)
	}
	if first.Type != models.UpdateStarted {
		t.Errorf("first frame type = %q", first.Type)
	}
}

func TestStockNotFound(t *testing.T) {
	h := newTestHandler(&fakeEngine{}, &fakeStocks{err: dataflows.ErrNoData})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/FAKECO", nil)
	req.SetPathValue("ticker", "FAKECO")
	rec := httptest.NewRecorder()
	h.handleStock(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStockHappyPath(t *testing.T) {
	h := newTestHandler(&fakeEngine{}, &fakeStocks{
		snapshot: &models.StockSnapshot{Ticker: "INFY.NS", CurrentPrice: 1500},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stock/INFY", nil)
	req.SetPathValue("ticker", "INFY")
	rec := httptest.NewRecorder()
	h.handleStock(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap models.StockSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}
	if snap.Ticker != "INFY.NS" {
		t.Errorf("ticker = %q", snap.Ticker)
	}
}

func TestTickerTapeEndpoint(t *testing.T) {
	h := newTestHandler(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/ticker-tape", nil)
	rec := httptest.NewRecorder()
	h.handleTickerTape(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var tape cache.TapeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &tape); err != nil {
		t.Fatalf("decoding tape: %v", err)
	}
	if tape.Count != 1 {
		t.Errorf("count = %d", tape.Count)
	}
}

func TestIndicesEndpoint(t *testing.T) {
	h := newTestHandler(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/market/indices", nil)
	rec := httptest.NewRecorder()
	h.handleIndices(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var result market.IndicesResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decoding indices: %v", err)
	}
	if len(result.Indices) != 1 || result.Indices[0].Name != "NIFTY 50" {
		t.Errorf("indices = %+v", result.Indices)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestHandler(&fakeEngine{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.handleHealth(rec, req)

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
}

func TestValidateDefaults(t *testing.T) {
	req := AnalyzeRequest{Ticker: "tcs"}
	if err := req.Validate(1); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if req.Exchange != "NSE" || req.MaxRounds != 1 {
		t.Errorf("defaults not applied: %+v", req)
	}

	// The configured default fills an absent max_rounds and is clamped.
	req = AnalyzeRequest{Ticker: "tcs"}
	if err := req.Validate(2); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if req.MaxRounds != 2 {
		t.Errorf("max_rounds = %d, want configured default 2", req.MaxRounds)
	}

	req = AnalyzeRequest{Ticker: "tcs"}
	if err := req.Validate(9); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if req.MaxRounds != 3 {
		t.Errorf("max_rounds = %d, want clamped default 3", req.MaxRounds)
	}
}

func TestAnalyzeUsesConfiguredDefaultRounds(t *testing.T) {
	engine := &fakeEngine{state: completeState()}
	h := NewHandler(engine, &fakeStocks{}, fakeTape{}, fakeIndexSvc{}, "insightflow", "1.0.0", 2, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"ticker": "INFY"}`))
	rec := httptest.NewRecorder()
	h.handleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if engine.request().MaxRounds != 2 {
		t.Errorf("engine max rounds = %d, want configured default 2", engine.request().MaxRounds)
	}
}
