package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"pollscope/internal/infrastructure"
	"pollscope/pkg/contracts/domain"
	"pollscope/pkg/contracts/events"
)

// ErrHubRunning is returned by Run when the hub loop is already active
var ErrHubRunning = errors.New("websocket hub already running")

const broadcastQueue = 64

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	lastSnapshot atomic.Value // string

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	running  bool
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		metrics:    metrics,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is done or Stop is
// called, closing every client.
func (h *Hub) Run(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrHubRunning
	}
	h.running = true
	h.mu.Unlock()

	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.quit:
			return nil
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// Stop ends the hub loop
func (h *Hub) Stop() {
	h.quitOnce.Do(func() { close(h.quit) })
}

// Done is closed once the hub loop has exited
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	close(h.done)
	h.logger.Info("Hub shutting down")
}

// Register adds a client to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.totalConnections++
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, 1)
	}

	snapshotID, _ := h.lastSnapshot.Load().(string)
	msg := events.NewMessage(events.MessageTypeConnection, events.Connection{
		Status:     "connected",
		Message:    "Connected to poll updates",
		ClientID:   client.id,
		SnapshotID: snapshotID,
	})
	msg.TraceID = client.traceID

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", client.connectedFor()))

	if h.metrics != nil {
		h.metrics.WebSocketClients.Add(ctx, -1)
	}
}

func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	failCount := 0
	for _, client := range clients {
		select {
		case client.send <- message:
			h.mu.Lock()
			h.messagesSent++
			h.mu.Unlock()
		default:
			// Send buffer full
			failCount++
			h.removeClient(client)
			h.logger.WarnContext(client.context(), "Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}

	h.logger.Debug("Broadcast message to clients",
		slog.Int("client_count", len(clients)),
		slog.Int("fail_count", failCount),
		slog.Int("message_size", len(message)))
}

// BroadcastMessage queues a message for every connected client. The
// message is dropped when the queue is full.
func (h *Hub) BroadcastMessage(msg events.WebSocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msg.Type)))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.Warn("Broadcast queue full, message dropped",
			slog.String("message_type", string(msg.Type)))
	}
}

// BroadcastDataUpdate announces a newly published snapshot. It has the
// signature of a refresh listener.
func (h *Hub) BroadcastDataUpdate(snap *domain.Snapshot) {
	if snap == nil {
		return
	}
	h.lastSnapshot.Store(snap.ID)

	h.BroadcastMessage(events.NewMessage(events.MessageTypeDataUpdate, events.DataUpdate{
		SnapshotID:   snap.ID,
		LastUpdated:  snap.LastUpdated,
		RowsAccepted: snap.RowsAccepted,
		Sources:      snap.Dataset.Sources(),
		Origin:       snap.Origin,
	}))
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_dropped":  h.messagesDropped,
	}
}
