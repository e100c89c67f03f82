package mcp

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xkilldash9x/deskpilot/internal/executor"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second
	// pingPeriod keeps idle connections from being reaped by intermediaries.
	pingPeriod = 50 * time.Second
	// clientBuffer is the per-client event backlog; a reader that falls this
	// far behind is disconnected rather than allowed to stall the hub.
	clientBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to loopback; the origin check adds nothing there.
	CheckOrigin: func(*http.Request) bool { return true },
}

// hub fans executor lifecycle events out to websocket subscribers. Events are
// best-effort: a missed event is recoverable from the action's result, so the
// hub never blocks the execution path.
type hub struct {
	log    *zap.Logger
	events chan executor.Event

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan executor.Event
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		log:     logger.Named("ws"),
		events:  make(chan executor.Event, 256),
		clients: make(map[*wsClient]struct{}),
	}
}

// publish is the executor observer. It must not block.
func (h *hub) publish(ev executor.Event) {
	select {
	case h.events <- ev:
	default:
		h.log.Warn("Event stream backlog full, dropping event",
			zap.String("type", string(ev.Type)))
	}
}

// run fans events out to connected clients until ctx is cancelled.
func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case ev := <-h.events:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- ev:
				default:
					// Slow reader: drop the connection, not the hub.
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// handleWS upgrades the connection and registers it for event delivery.
func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	c := &wsClient{conn: conn, send: make(chan executor.Event, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("Event stream subscriber connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.writePump(c)
	go h.readPump(c)
}

// writePump serializes events to one client and closes the connection when
// the hub drops it.
func (h *hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readPump discards inbound frames; the stream is one-way. Its job is to
// notice the peer going away.
func (h *hub) readPump(c *wsClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}

func (h *hub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	c.conn.Close()
}
