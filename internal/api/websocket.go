package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/insightflow/insightflow-go/internal/models"
	"github.com/insightflow/insightflow-go/pkg/logger"
)

// wsMessage is the client control protocol: start begins a run, ping elicits
// pong, stop closes the channel.
type wsMessage struct {
	Type        string `json:"type"`
	Ticker      string `json:"ticker"`
	Exchange    string `json:"exchange"`
	MaxRounds   int    `json:"max_rounds"`
	TimeHorizon string `json:"time_horizon"`
	UserQuery   string `json:"user_query"`
}

// connectionManager tracks live WebSocket sessions.
type connectionManager struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newConnectionManager() *connectionManager {
	return &connectionManager{conns: make(map[string]*websocket.Conn)}
}

func (m *connectionManager) add(sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[sessionID] = conn
}

func (m *connectionManager) remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, sessionID)
}

func (m *connectionManager) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// WebSocketHandler streams debates over a duplex channel.
type WebSocketHandler struct {
	engine        DebateRunner
	upgrader      websocket.Upgrader
	manager       *connectionManager
	log           *logger.Logger
	defaultRounds int
}

func NewWebSocketHandler(engine DebateRunner, allowedOrigins []string, defaultRounds int, log *logger.Logger) *WebSocketHandler {
	allowedSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowedSet[o] = true
	}

	return &WebSocketHandler{
		engine:        engine,
		manager:       newConnectionManager(),
		log:           log,
		defaultRounds: defaultRounds,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedSet[origin] || allowedSet["*"]
			},
		},
	}
}

func (h *WebSocketHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, r.PathValue("session_id"))
}

func (h *WebSocketHandler) handleAutoSession(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, uuid.New().String())
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "session", sessionID, "error", err)
		return
	}
	h.manager.add(sessionID, conn)
	defer func() {
		h.manager.remove(sessionID)
		_ = conn.Close()
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnw("websocket read failed", "session", sessionID, "error", err)
			}
			return
		}

		switch msg.Type {
		case "start":
			h.runDebate(r, conn, sessionID, msg)
		case "ping":
			if err := conn.WriteJSON(map[string]string{"type": "pong"}); err != nil {
				return
			}
		case "stop":
			_ = conn.WriteJSON(map[string]string{"type": "stopped", "message": "Analysis stopped"})
			return
		default:
			_ = conn.WriteJSON(models.StreamUpdate{Type: models.UpdateError, Error: "unknown message type: " + msg.Type})
		}
	}
}

// runDebate streams one debate onto the connection. Runs inline in the read
// loop; control messages are processed again once the run finishes.
func (h *WebSocketHandler) runDebate(r *http.Request, conn *websocket.Conn, sessionID string, msg wsMessage) {
	if msg.Ticker == "" {
		_ = conn.WriteJSON(models.StreamUpdate{Type: models.UpdateError, Error: "Ticker is required"})
		return
	}
	if msg.Exchange == "" {
		msg.Exchange = "NSE"
	}

	// Explicit round counts are clamped; zero falls through to the
	// configured default inside Validate.
	rounds := msg.MaxRounds
	if rounds != 0 {
		rounds = models.ClampRounds(rounds)
	}

	req := AnalyzeRequest{
		Ticker:      msg.Ticker,
		Exchange:    msg.Exchange,
		MaxRounds:   rounds,
		TimeHorizon: msg.TimeHorizon,
		UserQuery:   msg.UserQuery,
	}
	if err := req.Validate(h.defaultRounds); err != nil {
		_ = conn.WriteJSON(models.StreamUpdate{Type: models.UpdateError, Error: err.Error()})
		return
	}

	h.log.Infow("websocket debate starting", "session", sessionID, "ticker", req.Ticker, "rounds", req.MaxRounds)

	for update := range h.engine.Stream(r.Context(), req.toGraphRequest()) {
		if err := conn.WriteJSON(update); err != nil {
			h.log.Warnw("websocket write failed", "session", sessionID, "error", err)
			return
		}
	}
}
