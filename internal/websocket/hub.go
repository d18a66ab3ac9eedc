// Package websocket pushes bridge notifications to editor UIs.
package websocket

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rbxbridge/rbxbridge/internal/bridge"
	"github.com/rbxbridge/rbxbridge/internal/logger"
	"github.com/rbxbridge/rbxbridge/internal/wire"
)

const writeWait = 5 * time.Second

// StateSource provides the snapshot sent to a client when it connects.
type StateSource interface {
	Snapshot() bridge.Snapshot
}

// Hub is a bridge.Notifier that broadcasts every notification as a
// wire.Event to connected websocket clients.
type Hub struct {
	state    StateSource
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	// seq counts broadcasts so a connecting client can tell whether its
	// initial snapshot raced one.
	seq uint64
}

var _ bridge.Notifier = (*Hub)(nil)

// NewHub creates a hub. The state source may be attached later with Attach,
// which lets the hub be built before the bridge it notifies. allowedOrigins is checked against the Origin header
// of browser clients; "*" allows any origin.
func NewHub(state StateSource, allowedOrigins []string) *Hub {
	h := &Hub{
		state:   state,
		clients: make(map[*websocket.Conn]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Attach sets the state source used for initial snapshots.
func (h *Hub) Attach(state StateSource) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = state
}

// HandleEvents handles GET /editor/events. The client first receives a
// context-changed event carrying the current state, then every notification.
func (h *Hub) HandleEvents(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[events] websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	count, err := h.register(conn)
	if err != nil {
		logger.Warnf("[events] failed to send initial state: %v", err)
		return
	}
	logger.Infof("[events] editor connected (%d connected)", count)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		logger.Infof("[events] editor disconnected")
	}()

	// Editors only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("[events] websocket error: %v", err)
			}
			return
		}
	}
}

// register sends the current state and adds conn to the broadcast set. The
// snapshot must be taken without h.mu held since the bridge may be inside
// Broadcast; it is retaken when a broadcast slipped in between.
func (h *Hub) register(conn *websocket.Conn) (int, error) {
	for {
		h.mu.Lock()
		seq, source := h.seq, h.state
		h.mu.Unlock()

		var snapshot bridge.Snapshot
		if source != nil {
			snapshot = source.Snapshot()
		}

		h.mu.Lock()
		if h.seq != seq {
			h.mu.Unlock()
			continue
		}
		state := wire.FromSnapshot(snapshot)
		err := writeEvent(conn, wire.Event{Type: wire.EventContextChanged, State: &state})
		if err == nil {
			h.clients[conn] = struct{}{}
		}
		count := len(h.clients)
		h.mu.Unlock()
		return count, err
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) PlaceChanged(s bridge.Snapshot) {
	state := wire.FromSnapshot(s)
	h.Broadcast(wire.Event{Type: wire.EventPlaceChanged, State: &state})
}

func (h *Hub) ContextChanged(s bridge.Snapshot) {
	state := wire.FromSnapshot(s)
	h.Broadcast(wire.Event{Type: wire.EventContextChanged, State: &state})
}

func (h *Hub) QueueCleared(ctx bridge.ExecutionContext) {
	h.Broadcast(wire.Event{Type: wire.EventQueueCleared, Context: string(ctx)})
}

func (h *Hub) Connected() {
	h.Broadcast(wire.Event{Type: wire.EventConnected})
}

// Broadcast sends an event to all connected clients. Clients that fail to
// accept it are dropped.
func (h *Hub) Broadcast(event wire.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("[events] failed to marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	for conn := range h.clients {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warnf("[events] dropping editor: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

func writeEvent(conn *websocket.Conn, event wire.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(event)
}
