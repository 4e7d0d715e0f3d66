// Package live pushes the scoreboard to websocket clients.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/derby-clock-service/internal/events"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
)

const (
	defaultPushInterval = 500 * time.Millisecond
	writeTimeout        = 5 * time.Second
	sendBuffer          = 16
)

// Source returns the current scoreboard, or an error when there is none.
type Source func() (any, error)

// Message is what clients receive. Event is set when a change caused the push.
type Message struct {
	Event      *events.Event `json:"event,omitempty"`
	Scoreboard any           `json:"scoreboard,omitempty"`
}

// client owns a queue drained by its writer goroutine. done is closed once
// when the client leaves the hub; send is never closed.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue reports false when the client's queue is full.
func (c *client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Hub tracks connected clients. It is also an events.Publisher so every bout
// event reaches the clients along with a fresh scoreboard.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	source   Source
	logger   *slog.Logger
	clock    clockwork.Clock
	interval time.Duration
	upgrader websocket.Upgrader
}

// NewHub constructs a hub reading scoreboards from source.
func NewHub(source Source, logger *slog.Logger, clk clockwork.Clock, interval time.Duration) *Hub {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = defaultPushInterval
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		source:   source,
		logger:   logger,
		clock:    clk,
		interval: interval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.once.Do(func() { close(c.done) })
		_ = c.conn.Close()
	}
}

// ServeHTTP upgrades the request and sends the current scoreboard.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := newClient(conn)
	h.add(c)
	logging.Debug(h.logger, "live client connected", "remote", r.RemoteAddr)

	if data, ok := h.encode(nil); ok {
		c.enqueue(data)
	}
	go h.write(c)
	go h.read(c)
}

// write drains the client's queue until it leaves the hub or a write fails.
func (h *Hub) write(c *client) {
	defer h.remove(c)
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

// read drains client frames until the connection drops.
func (h *Hub) read(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish pushes ev and the current scoreboard to every client.
func (h *Hub) Publish(_ context.Context, ev events.Event) error {
	h.Broadcast(&ev)
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.once.Do(func() { close(c.done) })
		_ = c.conn.Close()
	}
	return nil
}

// Broadcast queues the scoreboard, and ev when set, for every client. It
// never waits on a connection: a client whose queue is full is disconnected.
func (h *Hub) Broadcast(ev *events.Event) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	if len(clients) == 0 {
		return
	}

	data, ok := h.encode(ev)
	if !ok {
		return
	}
	for _, c := range clients {
		if !c.enqueue(data) {
			logging.Warn(h.logger, "live client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
			h.remove(c)
		}
	}
}

func (h *Hub) encode(ev *events.Event) ([]byte, bool) {
	msg := Message{Event: ev}
	if h.source != nil {
		if board, err := h.source(); err == nil {
			msg.Scoreboard = board
		}
	}
	if msg.Event == nil && msg.Scoreboard == nil {
		return nil, false
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Warn(h.logger, "live message encode failed", "error", err)
		return nil, false
	}
	return data, true
}

// Run pushes the scoreboard on every interval until ctx is done, so running
// clocks keep moving on displays between events.
func (h *Hub) Run(ctx context.Context) {
	ticker := h.clock.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			h.Broadcast(nil)
		}
	}
}
