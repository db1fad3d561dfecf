package websocket

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"pollscope/internal/config"
	"pollscope/internal/infrastructure"
)

// NewUpgrader builds an upgrader that accepts requests without an Origin
// header, a "*" entry, or an origin listed in allowedOrigins
func NewUpgrader(cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
				slog.String("origin", origin),
				slog.Any("allowed_origins", allowedOrigins))
			return false
		},
	}
}

// Handler upgrades requests and attaches the connection to hub
func Handler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger) http.HandlerFunc {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	upgrader := NewUpgrader(cfg, allowedOrigins, logger)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// The upgrader has already written an HTTP error
			logger.WarnContext(ctx, "WebSocket upgrade failed",
				slog.String("error", err.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			return
		}

		NewClient(hub, NewConnectionWrapper(conn), cfg, infrastructure.GetTraceID(ctx), logger).Serve()
	}
}
