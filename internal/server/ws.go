package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/MikeO7/HarborSim/internal/domain"
	"github.com/MikeO7/HarborSim/pkg/log"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

// hub fans bus events out to connected WebSocket clients. A client whose
// buffer is full is disconnected rather than blocking the bus.
type hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

// Handle implements events.Handler
func (h *hub) Handle(event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Warn("WebSocket client too slow, disconnecting")
			delete(h.clients, c)
			c.close()
		}
	}
	return nil
}

// CanHandle implements events.Handler
func (h *hub) CanHandle(domain.EventType) bool {
	return true
}

// register queues the current snapshot for c and adds it to the hub under
// one lock, so no event published in between is lost or reordered.
func (h *hub) register(c *wsClient, snapshot func() domain.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := snapshot()
	initial, err := json.Marshal(domain.Event{
		Type:      domain.EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  &snap,
	})
	if err != nil {
		return err
	}
	c.send <- initial
	h.clients[c] = struct{}{}
	return nil
}

func (h *hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// stream handles GET /api/ws. The first message is the current
// snapshot; afterwards every bus event is forwarded as JSON.
func (s *Server) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.ErrorErr("Failed to upgrade to WebSocket", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	if err := s.hub.register(client, s.deps.Session.Engine().Snapshot); err != nil {
		log.ErrorErr("Failed to send initial snapshot", err)
		conn.Close()
		return
	}

	go s.readPump(client)
	s.writePump(client)
}

// readPump discards client messages and unregisters on close
func (s *Server) readPump(c *wsClient) {
	defer s.hub.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			l := log.Logger()
			l.Debug().Err(err).Msg("WebSocket write failed")
			s.hub.remove(c)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
