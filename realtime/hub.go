package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans events out to every connected client. Delivery is best-effort,
// at-most-once: a client that is disconnected (or whose queue is full)
// at publish time simply misses the event, and there is no backfill.
//
// The hub is constructed once in main and handed to every publisher;
// there is no ambient global instance.
type Hub struct {
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub constructs a Hub. checkOrigin decides which websocket origins
// are accepted; a nil func allows all (matching permissive CORS).
func NewHub(logger *zap.SugaredLogger, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		clients: make(map[*Client]struct{}),
	}
}

// ServeWS is the gin handler upgrading GET /ws connections.
func (h *Hub) ServeWS(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	client := newClient(h, conn)
	h.register(client)
	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debugf("websocket client connected, total=%d", n)
}

// Unregister removes a client and signals its pumps to stop. Safe to call
// more than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.Close()
		h.logger.Debugf("websocket client disconnected, total=%d", n)
	}
}

// Broadcast publishes an event to all connected clients. It never blocks
// and never returns an error to the caller: a full client queue drops
// the event for that client only.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.logger.Errorf("broadcast marshal failed event=%s: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		case <-c.done:
		default:
			// Slow consumer: drop rather than stall every other client.
			h.logger.Debugf("dropping %s event for slow client", event)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
