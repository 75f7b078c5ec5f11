package models

import "time"

// Debate phases. Transitions are monotonic through the graph topology;
// complete and error are terminal.
const (
	PhaseInitialized   = "initialized"
	PhaseFetching      = "fetching"
	PhaseBullAnalyzing = "bull_analyzing"
	PhaseBearAnalyzing = "bear_analyzing"
	PhaseModerating    = "moderating"
	PhaseComplete      = "complete"
	PhaseError         = "error"
)

// HistoryEntry is one append-only debate log record. Round is "final" for
// the moderator entry, the round number otherwise.
type HistoryEntry struct {
	Role     AgentType     `json:"role"`
	Round    string        `json:"round"`
	Analysis AgentAnalysis `json:"analysis"`
}

// DebateState is the aggregate threaded through the debate graph. One value
// per run; nodes mutate it in sequence, so no locking is needed.
type DebateState struct {
	// Input
	Ticker      string
	UserQuery   string
	TimeHorizon TimeHorizon

	// Fetched data
	StockData *StockSnapshot
	NewsItems []NewsItem

	// Round control
	CurrentRound int
	MaxRounds    int

	// Persona outputs. Bull/bear hold the latest round only; every round is
	// also appended to History.
	BullAnalysis      *AgentAnalysis
	BearAnalysis      *AgentAnalysis
	ModeratorAnalysis *AgentAnalysis
	MarketSummary     *MarketSummary

	History []HistoryEntry

	Phase string
	Err   string

	// Goto names the next graph node; branches route on it.
	Goto string

	// Updates accumulates every emitted event in order. When emit is set,
	// each event is also pushed to it as it happens.
	Updates []StreamUpdate
	emit    func(StreamUpdate)

	StartedAt time.Time
}

// ClampRounds bounds a requested round count to the allowed [1,3] window.
func ClampRounds(n int) int {
	if n < 1 {
		return 1
	}
	if n > 3 {
		return 3
	}
	return n
}

// NewDebateState builds the initial state for one run. maxRounds is clamped
// to [1,3].
func NewDebateState(ticker string, maxRounds int, userQuery string, horizon TimeHorizon) *DebateState {
	return &DebateState{
		Ticker:       ticker,
		UserQuery:    userQuery,
		TimeHorizon:  horizon,
		CurrentRound: 1,
		MaxRounds:    ClampRounds(maxRounds),
		Phase:        PhaseInitialized,
		StartedAt:    time.Now().UTC(),
	}
}

// SetEmitter installs a callback invoked for every emitted event, in order.
func (s *DebateState) SetEmitter(fn func(StreamUpdate)) {
	s.emit = fn
}

// Emit records an event and forwards it to the emitter when one is installed.
func (s *DebateState) Emit(u StreamUpdate) {
	s.Updates = append(s.Updates, u)
	if s.emit != nil {
		s.emit(u)
	}
}

// AppendHistory logs a persona output to the append-only debate history.
func (s *DebateState) AppendHistory(role AgentType, round string, analysis AgentAnalysis) {
	s.History = append(s.History, HistoryEntry{Role: role, Round: round, Analysis: analysis})
}

// Terminal reports whether the run reached an absorbing phase.
func (s *DebateState) Terminal() bool {
	return s.Phase == PhaseComplete || s.Phase == PhaseError
}
