package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/auth"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/metrics"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/service"
)

type discardSender struct{}

func (discardSender) SendToClient(string, []byte) {}
func (discardSender) Broadcast([]byte)            {}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.AdminPassword = "12345"
	cfg.Auth.JWTSecret = "test-secret"

	logger, _ := logrustest.NewNullLogger()
	svc := service.New(cfg, logger, metrics.NopCollector{}, discardSender{}, nil)

	authSvc := auth.NewService(cfg.Auth)
	limiter := auth.NewRateLimiter(600, 100)
	t.Cleanup(limiter.Stop)

	h := NewHTTPHandler(cfg, svc, authSvc, limiter, logger)
	router := mux.NewRouter()
	h.SetupRoutes(router)
	return router
}

func postLogin(t *testing.T, router *mux.Router, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	router := newTestRouter(t)

	rec := postLogin(t, router, `{"username":"admin","password":"12345"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
}

func TestLoginInvalidCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := postLogin(t, router, `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMissingFields(t *testing.T) {
	router := newTestRouter(t)

	rec := postLogin(t, router, `{"username":"admin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLogin(t, router, `{broken`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Auth.AdminPassword = "12345"
	cfg.Auth.JWTSecret = "test-secret"

	logger, _ := logrustest.NewNullLogger()
	svc := service.New(cfg, logger, metrics.NopCollector{}, discardSender{}, nil)

	limiter := auth.NewRateLimiter(60, 2)
	t.Cleanup(limiter.Stop)

	h := NewHTTPHandler(cfg, svc, auth.NewService(cfg.Auth), limiter, logger)
	router := mux.NewRouter()
	h.SetupRoutes(router)

	postLogin(t, router, `{"username":"admin","password":"wrong"}`)
	postLogin(t, router, `{"username":"admin","password":"wrong"}`)

	rec := postLogin(t, router, `{"username":"admin","password":"12345"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["stream_active"])
	assert.Equal(t, float64(0), resp["connections"])
}

func TestICEServersEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ice-servers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ICEServers)
	assert.NotEmpty(t, resp.ICEServers[0].URLs)
}
