package www

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	readLimit      = 512
	sendBufferSize = 16
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one browser tab listening for current price fragments.
type Client struct {
	logger *slog.Logger
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	name   string
}

func NewClient(hub *Hub, w http.ResponseWriter, r *http.Request, name string) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket upgrade: %w", err)
	}

	return &Client{
		logger: hub.logger.With(slog.String("client", name)),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		name:   name,
	}, nil
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// WritePump forwards queued fragments and keeps the connection alive with
// pings. A closed send channel means the hub dropped the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		var err error
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.write(ws.CloseMessage, nil)
				return
			}
			err = c.write(ws.TextMessage, message)
		case <-ticker.C:
			err = c.write(ws.PingMessage, nil)
		}
		if err != nil {
			c.logger.Debug("web socket write failed", slog.Any("error", err))
			return
		}
	}
}

// ReadPump consumes control frames, the page never sends anything. It returns
// when the browser goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure) {
				c.logger.Debug("web socket closed", slog.Any("error", err))
			}
			return
		}
	}
}

// Hub keeps the connected browsers and pushes the current price to them.
// The client set is only modified from Run.
type Hub struct {
	Broadcast chan []byte
	join      chan *Client
	leave     chan *Client
	mutex     sync.Mutex
	clients   map[*Client]struct{}
	logger    *slog.Logger
	done      chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Broadcast: make(chan []byte),
		join:      make(chan *Client),
		leave:     make(chan *Client),
		clients:   make(map[*Client]struct{}),
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// register reports false when the hub has already stopped.
func (h *Hub) register(c *Client) bool {
	select {
	case h.join <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.leave <- c:
	case <-h.done:
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.join:
			h.logger.Debug("client joined", slog.String("client", c.name))
			h.mutex.Lock()
			h.clients[c] = struct{}{}
			h.mutex.Unlock()

		case c := <-h.leave:
			h.logger.Debug("client left", slog.String("client", c.name))
			h.mutex.Lock()
			h.drop(c)
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.logger.Warn("send buffer full, dropping message", slog.String("client", c.name))
				}
			}
			h.mutex.Unlock()
		}
	}
}
