package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector defines the interface for metrics collection
type Collector interface {
	// Connection metrics
	ClientConnected()
	ClientDisconnected()

	// Presence metrics
	ViewerJoined()
	ViewerLeft()

	// Signaling metrics
	MessageReceived(messageType string, sizeBytes int)
	SignalRelayed(messageType string)
	SignalDropped(messageType, reason string)
	PublishDenied()

	// Chat metrics
	ChatMessagePosted(source string)

	// Handler returns an HTTP handler for the metrics endpoint
	Handler() http.Handler
}

// PrometheusCollector implements the Collector interface using Prometheus
type PrometheusCollector struct {
	activeConnections prometheus.Gauge
	connections       prometheus.Counter
	disconnects       prometheus.Counter

	activeViewers prometheus.Gauge

	messagesReceived *prometheus.CounterVec
	signalsRelayed   *prometheus.CounterVec
	signalsDropped   *prometheus.CounterVec
	publishDenials   prometheus.Counter
	messageSize      *prometheus.HistogramVec

	chatMessages *prometheus.CounterVec
}

// NewPrometheusCollector creates a new PrometheusCollector
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		activeConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_connections",
			Help: "Number of live WebSocket connections",
		}),

		connections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_connections_total",
			Help: "Total number of WebSocket connections accepted",
		}),

		disconnects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_disconnects_total",
			Help: "Total number of WebSocket disconnections",
		}),

		activeViewers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "signaling_active_viewers",
			Help: "Number of connections holding the viewer role",
		}),

		messagesReceived: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_messages_received_total",
				Help: "Total number of inbound events by type",
			},
			[]string{"message_type"},
		),

		signalsRelayed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_relays_total",
				Help: "Total number of relayed negotiation messages",
			},
			[]string{"message_type"},
		),

		signalsDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signaling_drops_total",
				Help: "Total number of dropped negotiation messages",
			},
			[]string{"message_type", "reason"},
		),

		publishDenials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "signaling_publish_denials_total",
			Help: "Total number of rejected publish attempts",
		}),

		messageSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signaling_message_size_bytes",
				Help:    "Size of inbound events in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"message_type"},
		),

		chatMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_messages_total",
				Help: "Total number of chat messages accepted",
			},
			[]string{"source"},
		),
	}
}

func (c *PrometheusCollector) ClientConnected() {
	c.connections.Inc()
	c.activeConnections.Inc()
}

func (c *PrometheusCollector) ClientDisconnected() {
	c.disconnects.Inc()
	c.activeConnections.Dec()
}

func (c *PrometheusCollector) ViewerJoined() {
	c.activeViewers.Inc()
}

func (c *PrometheusCollector) ViewerLeft() {
	c.activeViewers.Dec()
}

func (c *PrometheusCollector) MessageReceived(messageType string, sizeBytes int) {
	c.messagesReceived.WithLabelValues(messageType).Inc()
	c.messageSize.WithLabelValues(messageType).Observe(float64(sizeBytes))
}

func (c *PrometheusCollector) SignalRelayed(messageType string) {
	c.signalsRelayed.WithLabelValues(messageType).Inc()
}

func (c *PrometheusCollector) SignalDropped(messageType, reason string) {
	c.signalsDropped.WithLabelValues(messageType, reason).Inc()
}

func (c *PrometheusCollector) PublishDenied() {
	c.publishDenials.Inc()
}

func (c *PrometheusCollector) ChatMessagePosted(source string) {
	c.chatMessages.WithLabelValues(source).Inc()
}

func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// NopCollector discards all metrics. Used in tests.
type NopCollector struct{}

func (NopCollector) ClientConnected()                     {}
func (NopCollector) ClientDisconnected()                  {}
func (NopCollector) ViewerJoined()                        {}
func (NopCollector) ViewerLeft()                          {}
func (NopCollector) MessageReceived(string, int)          {}
func (NopCollector) SignalRelayed(string)                 {}
func (NopCollector) SignalDropped(string, string)         {}
func (NopCollector) PublishDenied()                       {}
func (NopCollector) ChatMessagePosted(string)             {}
func (NopCollector) Handler() http.Handler                { return http.NotFoundHandler() }
