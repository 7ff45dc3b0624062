package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kargig/divemap-sub000/pkg/logger"
)

// Message types sent by the server
const (
	MessageTypeError  = "error"
	MessageTypeResult = "_result" // suffix appended to the request type
)

// Message represents a WebSocket message
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// inboundMessage is a message as read from a client; data stays raw until the
// handler knows which request type to decode into
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MessageHandler defines the interface for handling incoming WebSocket messages
type MessageHandler interface {
	HandleMessage(client *Client, messageType string, data json.RawMessage) error
}

// Client represents a WebSocket client
type Client struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	logger    *logger.Logger
	mu        sync.Mutex
	closed    bool
	closeChan chan struct{}
}

// Server tracks connected clients. Each client is answered individually;
// nothing is shared between clients.
type Server struct {
	clients        map[*Client]bool
	register       chan *Client
	unregister     chan *Client
	done           chan struct{}
	stopOnce       sync.Once
	upgrader       websocket.Upgrader
	logger         *logger.Logger
	mu             sync.RWMutex
	messageHandler MessageHandler // Handler for incoming messages
}

// NewServer creates a new WebSocket server
func NewServer(logger *logger.Logger) *Server {
	return &Server{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
		logger: logger.Named("web-socket"),
	}
}

// SetMessageHandler sets the message handler for incoming WebSocket messages
func (s *Server) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}

// Run processes client registration until Stop is called
func (s *Server) Run() {
	s.logger.Info("Starting WebSocket server")

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client] = true
			clientCount := len(s.clients)
			s.mu.Unlock()
			s.logger.Debug("Client registered", logger.Int("client_count", clientCount))

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				// Mark client as closed first to prevent new messages
				client.mu.Lock()
				client.closed = true
				close(client.send)
				client.mu.Unlock()
			}
			clientCount := len(s.clients)
			s.mu.Unlock()
			s.logger.Debug("Client unregistered", logger.Int("client_count", clientCount))

		case <-s.done:
			s.mu.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				client.Close()
			}
			s.mu.Unlock()
			s.logger.Info("WebSocket server stopped")
			return
		}
	}
}

// Stop disconnects every client and ends Run
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// HandleConnection handles a WebSocket connection
func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Handling new WebSocket connection request",
		logger.String("remote_addr", r.RemoteAddr),
		logger.String("user_agent", r.UserAgent()))

	// Upgrade HTTP connection to WebSocket
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection",
			logger.Error(err),
			logger.String("remote_addr", r.RemoteAddr))
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan *Message, 64),
		server:    s,
		logger:    s.logger.With(logger.String("remote_addr", r.RemoteAddr)),
		closeChan: make(chan struct{}),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.readPump()
	go client.writePump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket read error", logger.Error(err))
			}
			return
		}

		var message inboundMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			c.logger.Debug("Failed to parse WebSocket message", logger.Error(err))
			c.SendError("invalid message: " + err.Error())
			continue
		}

		c.logger.Debug("Received WebSocket message", logger.String("type", message.Type))

		if c.server.messageHandler == nil {
			continue
		}
		if err := c.server.messageHandler.HandleMessage(c, message.Type, message.Data); err != nil {
			c.logger.Debug("Failed to handle WebSocket message",
				logger.Error(err),
				logger.String("type", message.Type))
			c.SendError(err.Error())
		}
	}
}

// writePump pumps messages from the send queue to the WebSocket connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Channel closed
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				c.logger.Error("Failed to marshal message",
					logger.Error(err),
					logger.String("type", message.Type))
				data, _ = json.Marshal(&Message{
					Type: MessageTypeError,
					Data: map[string]string{"error": err.Error()},
				})
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.closeChan:
			return
		}
	}
}

// Close closes the client connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closeChan:
		return
	default:
	}

	c.closed = true
	close(c.closeChan)
	c.conn.Close()
}

// SendMessage queues a message for this client. Returns false if the client is
// gone or its queue is full.
func (c *Client) SendMessage(message *Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- message:
		return true
	default:
		// Channel is full, drop message
		return false
	}
}

// SendError sends an error message to this client
func (c *Client) SendError(text string) bool {
	return c.SendMessage(&Message{
		Type: MessageTypeError,
		Data: map[string]string{"error": text},
	})
}
