package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/multiplayerbase/matchmaking-backend/internal/coordinator"
	"github.com/multiplayerbase/matchmaking-backend/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// How often heartbeat pings are sent.
	heartbeatInterval = 5 * time.Second

	// How long before lack of client liveness causes a timeout. Pongs,
	// pings and any inbound frame all count as liveness.
	clientTimeout = 10 * time.Second

	// Maximum message size allowed from the peer. Clients have nothing
	// meaningful to say on this socket.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Registry is where a session announces and withdraws itself; the match
// coordinator implements it.
type Registry interface {
	Register(userID uuid.UUID, session coordinator.Session)
	Unregister(userID uuid.UUID, session coordinator.Session)
}

// Client is one live realtime connection. Push messages from the
// coordinator are relayed to the peer verbatim; inbound application
// payloads are ignored.
type Client struct {
	registry Registry
	conn     *websocket.Conn
	send     chan *coordinator.Message
	userID   uuid.UUID
	logger   *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(registry Registry, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		registry: registry,
		conn:     conn,
		send:     make(chan *coordinator.Message, 16),
		userID:   userID,
		logger:   logger.Named("websocket"),
		done:     make(chan struct{}),
	}
}

// Push hands a message to the write pump without blocking.
func (c *Client) Push(msg *coordinator.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close asks the session to shut down; the coordinator calls this when the
// registration is superseded by a newer connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// readPump consumes frames from the peer and tracks liveness. It owns the
// unregister: whatever ends the connection funnels through here.
func (c *Client) readPump() {
	defer func() {
		c.registry.Unregister(c.userID, c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(clientTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(clientTimeout))
	})
	c.conn.SetPingHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(clientTimeout))
		err := c.conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("Realtime connection ended",
					zap.String("userId", c.userID.String()),
					zap.Error(err))
			}
			return
		}
		// Inbound payloads carry no matchmaking semantics, but any frame
		// proves the client is alive.
		c.conn.SetReadDeadline(time.Now().Add(clientTimeout))
	}
}

// writePump relays pushed messages and sends heartbeat pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(heartbeatInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			data, err := json.Marshal(msg)
			if err != nil {
				c.logger.Error("Failed to marshal push message",
					zap.String("userId", c.userID.String()),
					zap.Error(err))
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// ServeWs upgrades the request, registers the session with the coordinator
// and starts its pumps. Authentication happens before the upgrade, in the
// HTTP handler.
func ServeWs(registry Registry, w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade realtime connection", "error", err)
		return
	}

	client := NewClient(registry, conn, userID)
	registry.Register(userID, client)

	go client.writePump()
	go client.readPump()
}
