// Package events contains the WebSocket message contracts of the poll
// dashboard.
package events

import (
	"time"
)

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "pollscope-websocket"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeDataUpdate announces a newly published poll snapshot
	MessageTypeDataUpdate MessageType = "data_update"

	// MessageTypeConnection is sent once to every client after it connects
	MessageTypeConnection MessageType = "connection"

	// MessageTypeHeartbeat is accepted from clients to keep the socket open
	MessageTypeHeartbeat MessageType = "heartbeat"

	MessageTypeError MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// NewMessage builds a message stamped with the current time
func NewMessage(t MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{Type: t, Timestamp: time.Now().UTC()},
		Data:        data,
	}
}

// DataUpdate is the payload of a data_update message. Clients refetch the
// views they display when SnapshotID changes.
type DataUpdate struct {
	SnapshotID   string    `json:"snapshot_id"`
	LastUpdated  time.Time `json:"last_updated"`
	RowsAccepted int       `json:"rows_accepted"`
	Sources      []string  `json:"sources"`
	Origin       string    `json:"origin,omitempty"`
}

// Connection is the payload of a connection message
type Connection struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ClientID   string `json:"client_id"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

// ErrorData is the payload of an error message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
