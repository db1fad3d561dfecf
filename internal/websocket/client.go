package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pollscope/internal/config"
	"pollscope/internal/infrastructure"
	"pollscope/pkg/contracts/events"
)

const sendBuffer = 256

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub *Hub

	// The websocket connection
	conn Connection

	// Buffered channel of outbound messages
	send chan []byte

	cfg config.WebSocketConfig

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	messagesSent     int64
	messagesReceived int64
	bytesSent        int64
}

// NewClient creates a client for conn. traceID may be empty.
func NewClient(hub *Hub, conn Connection, cfg config.WebSocketConfig, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)

	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		cfg:         cfg,
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger:      logger,
	}
}

// ID returns the client identifier
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

func (c *Client) connectedFor() time.Duration {
	return time.Since(c.connectedAt)
}

// ReadPump pumps messages from the websocket connection to the hub.
// Clients only send heartbeats; anything else is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected",
			slog.Duration("connection_duration", c.connectedFor()),
			slog.Int64("messages_received", c.messagesReceived))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
		c.messagesReceived++

		var msg events.BaseMessage
		if err := json.Unmarshal(message, &msg); err == nil && msg.Type == events.MessageTypeHeartbeat {
			c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
			c.logger.Debug("Heartbeat received")
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.context(), "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent),
			slog.Int64("bytes_sent", c.bytesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++
			c.bytesSent += int64(len(message))

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// Serve registers the client and starts its pumps. The connection is
// closed straight away when the hub has stopped.
func (c *Client) Serve() {
	if !c.hub.Register(c) {
		c.conn.Close()
		return
	}
	go c.WritePump()
	go c.ReadPump()
}
