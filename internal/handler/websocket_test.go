package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/hub"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/metrics"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/model"
	"github.com/Aashutosh-Basnet/livelizzyapp/internal/service"
)

type wsPeer struct {
	conn   *websocket.Conn
	queued [][]byte
}

func newSignalingServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Chat.Bot.Enabled = false

	logger, _ := logrustest.NewNullLogger()

	h := hub.New(cfg.WebSocket, logger)
	svc := service.New(cfg, logger, metrics.NopCollector{}, h, nil)
	h.SetHandler(svc)
	go h.Run()
	t.Cleanup(h.Close)

	wsHandler := NewWebSocketHandler(cfg, svc, h, logger)
	router := mux.NewRouter()
	router.Handle("/ws", wsHandler)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialPeer(t *testing.T, server *httptest.Server) *wsPeer {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsPeer{conn: conn}
}

func (p *wsPeer) send(t *testing.T, payload string) {
	t.Helper()
	require.NoError(t, p.conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

// next returns the next event, splitting coalesced frames on newlines.
func (p *wsPeer) next(t *testing.T) map[string]interface{} {
	t.Helper()

	for len(p.queued) == 0 {
		p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, frame, err := p.conn.ReadMessage()
		require.NoError(t, err, "timed out waiting for event")
		p.queued = append(p.queued, bytes.Split(frame, []byte{'\n'})...)
	}

	raw := p.queued[0]
	p.queued = p.queued[1:]

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

// waitFor reads events until one of the wanted type arrives.
func (p *wsPeer) waitFor(t *testing.T, eventType string) map[string]interface{} {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		event := p.next(t)
		if event["type"] == eventType {
			return event
		}
	}
	t.Fatalf("event %q never arrived", eventType)
	return nil
}

func TestViewerReceivesStreamAvailableOverWire(t *testing.T) {
	server := newSignalingServer(t)

	publisher := dialPeer(t, server)
	publisher.send(t, `{"type":"start-publishing"}`)

	viewer := dialPeer(t, server)
	viewer.send(t, `{"type":"join-as-viewer","displayName":"alice"}`)

	event := viewer.waitFor(t, model.EventStreamAvailable)
	assert.NotEmpty(t, event["publisherId"])
}

func TestOfferAnswerRoundTripOverWire(t *testing.T) {
	server := newSignalingServer(t)

	publisher := dialPeer(t, server)
	publisher.send(t, `{"type":"start-publishing"}`)

	viewer := dialPeer(t, server)
	viewer.send(t, `{"type":"join-as-viewer","displayName":"bob"}`)
	viewer.waitFor(t, model.EventStreamAvailable)

	viewer.send(t, `{"type":"offer","sdpOffer":{"sdp":"v=0"}}`)

	offer := publisher.waitFor(t, model.EventOffer)
	viewerID, _ := offer["viewerId"].(string)
	require.NotEmpty(t, viewerID)

	publisher.send(t, `{"type":"answer","sdpAnswer":{"sdp":"v=0"},"viewerId":"`+viewerID+`"}`)

	answer := viewer.waitFor(t, model.EventAnswer)
	assert.NotNil(t, answer["sdpAnswer"])
}

func TestChatOverWire(t *testing.T) {
	server := newSignalingServer(t)

	a := dialPeer(t, server)
	b := dialPeer(t, server)

	a.send(t, `{"type":"chat-post","author":"alice","body":"hello"}`)

	event := b.waitFor(t, model.EventChatMessage)
	msg, ok := event["message"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "hello", msg["body"])

	b.send(t, `{"type":"chat-history-request"}`)
	history := b.waitFor(t, model.EventChatHistory)
	messages, ok := history["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 1)
}

func TestViewerStatsOverWire(t *testing.T) {
	server := newSignalingServer(t)

	observer := dialPeer(t, server)

	viewer := dialPeer(t, server)
	viewer.send(t, `{"type":"join-as-viewer","displayName":"carol"}`)

	stats := observer.waitFor(t, model.EventViewerStats)
	assert.Equal(t, float64(1), stats["count"])
}

func TestMalformedMessageGetsErrorOverWire(t *testing.T) {
	server := newSignalingServer(t)

	peer := dialPeer(t, server)
	peer.send(t, `{"type":"join-as-viewer"}`)

	event := peer.waitFor(t, model.EventError)
	assert.NotEmpty(t, event["reason"])
}
