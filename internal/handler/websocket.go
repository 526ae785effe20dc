package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/hub"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/service"
)

// WebSocketHandler upgrades connections and hands them to the hub
type WebSocketHandler struct {
	cfg      *config.Config
	service  *service.Service
	hub      *hub.Hub
	logger   logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cfg *config.Config, svc *service.Service, h *hub.Hub, logger logrus.FieldLogger) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			if len(cfg.HTTP.AllowedOrigins) == 1 && cfg.HTTP.AllowedOrigins[0] == "*" {
				return true
			}

			for _, allowed := range cfg.HTTP.AllowedOrigins {
				if allowed == origin {
					return true
				}
			}

			return false
		},
	}

	return &WebSocketHandler{
		cfg:      cfg,
		service:  svc,
		hub:      h,
		logger:   logger,
		upgrader: upgrader,
	}
}

// ServeHTTP handles HTTP requests for WebSocket connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	connID := uuid.NewString()

	// Register with the lifecycle coordinator before the pumps start so
	// the connection is routable by the time its first event arrives
	h.service.OnConnect(connID, r.RemoteAddr)
	h.hub.RegisterClient(conn, connID)
}
