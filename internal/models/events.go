package models

// Stream update types, in the order a consumer can observe them.
const (
	UpdateStarted       = "started"
	UpdateDataFetched   = "data_fetched"
	UpdateSummary       = "summary"
	UpdateAgentStart    = "agent_start"
	UpdateAgentResponse = "agent_response"
	UpdateRoundComplete = "round_complete"
	UpdateComplete      = "complete"
	UpdateError         = "error"
)

// StreamUpdate is one incremental progress event emitted by the debate graph
// and forwarded verbatim to SSE and WebSocket consumers.
type StreamUpdate struct {
	Type        string         `json:"type"`
	Ticker      string         `json:"ticker,omitempty"`
	MaxRounds   int            `json:"max_rounds,omitempty"`
	TimeHorizon string         `json:"time_horizon,omitempty"`
	Agent       string         `json:"agent,omitempty"`
	Analysis    *AgentAnalysis `json:"analysis,omitempty"`
	Summary     *MarketSummary `json:"summary,omitempty"`
	StockData   *StockSnapshot `json:"stock_data,omitempty"`
	NewsItems   []NewsItem     `json:"news_items,omitempty"`
	Error       string         `json:"error,omitempty"`
	RoundNumber int            `json:"round_number,omitempty"`
	Message     string         `json:"message,omitempty"`
}
