package notify

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard fronts its own UI; cross-origin is handled by the
		// CORS middleware, not here.
		return true
	},
}

// Hub fans notifications out to websocket subscribers, keyed by session ID.
// Delivery is best effort: a session with no subscribers drops its
// notifications, and a slow subscriber is disconnected rather than buffered
// indefinitely.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
	log   zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
		log:   log,
	}
}

// Subscribe upgrades the request to a websocket and registers it for the
// session. The connection is held open until the client goes away.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to upgrade connection")
		return
	}

	h.mu.Lock()
	if h.conns[sessionID] == nil {
		h.conns[sessionID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[sessionID][conn] = struct{}{}
	h.mu.Unlock()

	h.log.Debug().Str("session_id", sessionID).Msg("Notification subscriber connected")

	go h.drain(sessionID, conn)
}

// drain discards inbound frames and unregisters the connection on error.
func (h *Hub) drain(sessionID string, conn *websocket.Conn) {
	defer h.remove(sessionID, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(sessionID string, conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[sessionID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, sessionID)
		}
	}
}

// ForSession returns a Notifier bound to one session ID.
func (h *Hub) ForSession(sessionID string) Notifier {
	return sessionNotifier{hub: h, sessionID: sessionID}
}

// Publish sends a notification to every subscriber of the session.
func (h *Hub) Publish(sessionID string, n Notification) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns[sessionID]))
	for conn := range h.conns[sessionID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(n); err != nil {
			h.log.Warn().Err(err).Str("session_id", sessionID).Msg("Dropping notification subscriber")
			h.remove(sessionID, conn)
		}
	}
}

// CloseSession disconnects all subscribers of a session, on session teardown.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	set := h.conns[sessionID]
	delete(h.conns, sessionID)
	h.mu.Unlock()

	for conn := range set {
		conn.Close()
	}
}

type sessionNotifier struct {
	hub       *Hub
	sessionID string
}

func (s sessionNotifier) Notify(n Notification) {
	s.hub.Publish(s.sessionID, n)
}
