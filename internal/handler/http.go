package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/auth"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/service"
)

// HTTPHandler handles the REST surface: health, status, admin login and
// the ICE server set
type HTTPHandler struct {
	cfg        *config.Config
	service    *service.Service
	auth       *auth.Service
	loginLimit *auth.RateLimiter
	logger     logrus.FieldLogger
	validate   *validator.Validate
	startedAt  time.Time
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(cfg *config.Config, svc *service.Service, authSvc *auth.Service, loginLimit *auth.RateLimiter, logger logrus.FieldLogger) *HTTPHandler {
	return &HTTPHandler{
		cfg:        cfg,
		service:    svc,
		auth:       authSvc,
		loginLimit: loginLimit,
		logger:     logger,
		validate:   validator.New(),
		startedAt:  time.Now(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *HTTPHandler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/status", h.handleStatus).Methods("GET")
	r.HandleFunc("/api/admin/login", h.handleLogin).Methods("POST")
	r.HandleFunc("/api/ice-servers", h.handleICEServers).Methods("GET")
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
}

// handleHealth handles health check requests
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   h.cfg.Service.Name,
		"version":   h.cfg.Service.Version,
		"uptime":    time.Since(h.startedAt).String(),
		"timestamp": time.Now().UnixMilli(),
	})
}

// handleStatus handles status check requests
func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, _ := h.service.Presence().Snapshot()
	publisherID, active := h.service.SessionActive()

	status := map[string]interface{}{
		"status":        "ok",
		"connections":   h.service.Registry().Count(),
		"viewers":       count,
		"stream_active": active,
		"timestamp":     time.Now().UnixMilli(),
	}
	if active {
		status["publisher_id"] = publisherID
	}

	writeJSON(w, http.StatusOK, status)
}

// handleLogin handles admin login requests. Attempts are rate limited per
// source address.
func (h *HTTPHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if err := h.loginLimit.Allow(ip); err != nil {
		writeJSON(w, http.StatusTooManyRequests, loginResponse{
			Success: false,
			Message: "Too many login attempts",
		})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResponse{
			Success: false,
			Message: "Username and password are required",
		})
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, loginResponse{
			Success: false,
			Message: "Username and password are required",
		})
		return
	}

	if err := h.auth.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WithField("remote_addr", ip).Info("Login failed, invalid credentials")
			writeJSON(w, http.StatusUnauthorized, loginResponse{
				Success: false,
				Message: "Invalid credentials",
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, loginResponse{Success: false})
		return
	}

	token, err := h.auth.GenerateToken(req.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate session token")
		writeJSON(w, http.StatusInternalServerError, loginResponse{Success: false})
		return
	}

	h.logger.WithField("remote_addr", ip).Info("Login successful")
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token})
}

// handleICEServers returns the STUN/TURN set clients should use for
// negotiation
func (h *HTTPHandler) handleICEServers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"iceServers": h.cfg.ICE.Servers,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
