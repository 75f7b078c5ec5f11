package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/insightflow/insightflow-go/internal/cache"
	"github.com/insightflow/insightflow-go/internal/dataflows"
	"github.com/insightflow/insightflow-go/internal/graph"
	"github.com/insightflow/insightflow-go/internal/market"
	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

// DebateRunner drives debates in aggregate or streaming mode. The graph
// engine implements it; handler tests fake it.
type DebateRunner interface {
	Run(ctx context.Context, req graph.Request) (*models.DebateState, error)
	Stream(ctx context.Context, req graph.Request) <-chan models.StreamUpdate
}

// StockProvider serves the snapshot-only endpoint.
type StockProvider interface {
	StockData(ctx context.Context, ticker string) (*models.StockSnapshot, error)
}

// TapeProvider serves the cached Nifty 50 tape.
type TapeProvider interface {
	Get(ctx context.Context) (*cache.TapeResult, error)
}

// IndexProvider serves the market indices endpoint.
type IndexProvider interface {
	Indices(ctx context.Context) market.IndicesResult
}

// Handler holds the endpoint implementations.
type Handler struct {
	engine        DebateRunner
	stocks        StockProvider
	tape          TapeProvider
	indices       IndexProvider
	log           *logger.Logger
	appName       string
	version       string
	defaultRounds int
}

func NewHandler(engine DebateRunner, stocks StockProvider, tape TapeProvider, indices IndexProvider, appName, version string, defaultRounds int, log *logger.Logger) *Handler {
	return &Handler{
		engine:        engine,
		stocks:        stocks,
		tape:          tape,
		indices:       indices,
		log:           log,
		appName:       appName,
		version:       version,
		defaultRounds: defaultRounds,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// handleAnalyze runs a full debate and returns the composite result.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(h.defaultRounds); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	state, err := h.engine.Run(r.Context(), req.toGraphRequest())
	if err != nil {
		h.log.Errorw("analyze failed", "ticker", req.Ticker, "error", err)
		if errors.Is(err, graph.ErrDebateIncomplete) {
			writeError(w, http.StatusInternalServerError, "Debate did not complete")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newDebateResponse(state))
}

// handleAnalyzeStream runs a debate and streams every event over SSE.
func (h *Handler) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(h.defaultRounds); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for update := range h.engine.Stream(r.Context(), req.toGraphRequest()) {
		payload, err := json.Marshal(update)
		if err != nil {
			h.log.Errorw("event marshal failed", "type", update.Type, "error", err)
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			// client went away; the engine stops on context cancellation
			return
		}
		flusher.Flush()
	}
}

// handleStock returns the snapshot without running a debate.
func (h *Handler) handleStock(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	exchange := r.URL.Query().Get("exchange")
	if exchange == "" {
		exchange = "NSE"
	}

	formatted := dataflows.FormatTicker(ticker, exchange)
	data, err := h.stocks.StockData(r.Context(), formatted)
	if err != nil {
		if errors.Is(err, dataflows.ErrNoData) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Stock not found: %s", ticker))
			return
		}
		h.log.Errorw("stock fetch failed", "ticker", formatted, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// handleTickerTape returns the cached Nifty 50 bulk quotes.
func (h *Handler) handleTickerTape(w http.ResponseWriter, r *http.Request) {
	tape, err := h.tape.Get(r.Context())
	if err != nil {
		h.log.Errorw("ticker tape failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tape)
}

// handleIndices returns current Indian market index readings.
func (h *Handler) handleIndices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.indices.Indices(r.Context()))
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Timestamp: nowUTC(),
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    h.appName,
		"version": h.version,
	})
}
