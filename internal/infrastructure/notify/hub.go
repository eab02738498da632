package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mkevin1491/fyp/internal/bootstrap/logging"
	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/ports"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	clientBacklog = 16
)

// Hub pushes pending-count events to websocket subscribers. New subscribers
// receive the last published count immediately. Slow subscribers whose
// backlog fills are disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	baseCtx  context.Context

	mu        sync.Mutex
	clients   map[*hubClient]struct{}
	lastCount *int64
	closed    bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

var _ ports.Notifier = (*Hub)(nil)

// NewHub builds a hub. checkOrigin may be nil to accept any origin.
func NewHub(ctx context.Context, checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		baseCtx: logging.WithAttrs(ctx, slog.String("component", "infrastructure.notify.hub")),
		clients: make(map[*hubClient]struct{}),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(h.baseCtx, "websocket upgrade failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	client := &hubClient{conn: conn, send: make(chan []byte, clientBacklog)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[client] = struct{}{}
	if h.lastCount != nil {
		client.send <- encodePendingCount(*h.lastCount)
	}
	subscribers := len(h.clients)
	h.mu.Unlock()

	logging.Info(h.baseCtx, "websocket subscriber connected", slog.String("remote", r.RemoteAddr), slog.Int("subscribers", subscribers))

	go h.writeLoop(client)
	go h.readLoop(client)
}

// PublishPendingCount never blocks on a subscriber.
func (h *Hub) PublishPendingCount(_ context.Context, count int64) {
	payload := encodePendingCount(count)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCount = &count
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			h.dropLocked(client)
		}
	}
}

// Subscribers reports the number of connected websocket clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		h.dropLocked(client)
	}
}

func (h *Hub) dropLocked(client *hubClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}

func (h *Hub) drop(client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

func (h *Hub) writeLoop(client *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.drop(client)
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(client)
				return
			}
		}
	}
}

// readLoop only drains control frames so pongs and close are processed.
func (h *Hub) readLoop(client *hubClient) {
	defer h.drop(client)

	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}
