package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
)

// Handler receives transport events. The hub never interprets message
// contents; dispatch happens behind this boundary.
type Handler interface {
	OnMessage(clientID string, data []byte)
	OnDisconnect(clientID string)
}

// Message represents a message routed through the hub
type Message struct {
	ClientID string
	Data     []byte
}

// wsClient represents a connected WebSocket client
type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	send chan []byte
}

// Hub owns every live WebSocket connection and moves bytes between them
// and the handler. Sends to a backed-up or gone client are dropped,
// never awaited.
type Hub struct {
	cfg     config.WebSocketConfig
	handler Handler
	logger  logrus.FieldLogger

	// Registered clients
	clients map[string]*wsClient

	// Register requests from clients
	register chan *wsClient

	// Unregister requests from clients
	unregister chan *wsClient

	// Direct messages to specific clients
	direct chan Message

	// Messages to every client
	broadcast chan Message

	// Lock for clients map
	mu sync.RWMutex

	// Stop channel
	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a new hub. SetHandler must be called before Run.
func New(cfg config.WebSocketConfig, logger logrus.FieldLogger) *Hub {
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		clients:    make(map[string]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		direct:     make(chan Message, 64),
		broadcast:  make(chan Message, 64),
		stopChan:   make(chan struct{}),
	}
}

// SetHandler binds the event handler
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// Run starts the hub loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.WithField("client_id", client.id).Debug("Client registered with hub")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()

		case message := <-h.direct:
			h.mu.RLock()
			client, exists := h.clients[message.ClientID]
			h.mu.RUnlock()

			if exists {
				select {
				case client.send <- message.Data:
				default:
					h.drop(client)
				}
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*wsClient, 0, len(h.clients))
			for _, client := range h.clients {
				targets = append(targets, client)
			}
			h.mu.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- message.Data:
				default:
					h.drop(client)
				}
			}

		case <-h.stopChan:
			h.mu.Lock()
			for id, client := range h.clients {
				client.conn.Close()
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// drop removes a client whose send queue is full
func (h *Hub) drop(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()
	h.logger.WithField("client_id", client.id).Warn("Send queue full, dropping client")
}

// RegisterClient attaches a WebSocket connection under the given id and
// starts its pumps
func (h *Hub) RegisterClient(conn *websocket.Conn, clientID string) {
	client := &wsClient{
		hub:  h,
		conn: conn,
		id:   clientID,
		send: make(chan []byte, h.cfg.SendBuffer),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// SendToClient sends a message to a specific client. A miss is not an
// error; the message is simply dropped.
func (h *Hub) SendToClient(clientID string, message []byte) {
	select {
	case h.direct <- Message{ClientID: clientID, Data: message}:
	case <-h.stopChan:
	}
}

// Broadcast sends a message to all clients
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- Message{Data: message}:
	case <-h.stopChan:
	}
}

// IsConnected reports whether a client id is live on the hub
func (h *Hub) IsConnected(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.clients[clientID]
	return ok
}

// Close shuts the hub down and closes every connection
func (h *Hub) Close() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.hub.handler.OnDisconnect(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).WithField("client_id", c.id).Warn("WebSocket read error")
			}
			break
		}

		c.hub.handler.OnMessage(c.id, message)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *wsClient) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush any queued messages into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
