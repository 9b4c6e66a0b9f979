// Package metrics holds the Prometheus collectors of the coordinator.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every recorder becomes a no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	activeRooms      prometheus.Gauge
	timerUpdates     *prometheus.CounterVec
	transfers        *prometheus.CounterVec
	grantsIssued     prometheus.Counter
	grantRedemptions *prometheus.CounterVec
	wsConnections    prometheus.Gauge
	httpDuration     *prometheus.HistogramVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		activeRooms: factory.NewGauge(prometheus.GaugeOpts{
			Name: "breakout_rooms_active",
			Help: "Breakout rooms currently open across all meetings.",
		}),
		timerUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "breakout_timer_updates_total",
			Help: "Set-time requests by result.",
		}, []string{"result"}),
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "breakout_audio_transfers_total",
			Help: "Audio transfers that reached a terminal status.",
		}, []string{"status", "reason"}),
		grantsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "breakout_join_grants_issued_total",
			Help: "Join grants issued.",
		}),
		grantRedemptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "breakout_join_grant_redemptions_total",
			Help: "Join grant redemptions by result.",
		}, []string{"result"}),
		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "breakout_websocket_connections",
			Help: "Open participant event streams.",
		}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "breakout_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) RoomsOpened(n int) {
	if m == nil {
		return
	}
	m.activeRooms.Add(float64(n))
}

func (m *Metrics) RoomsClosed(n int) {
	if m == nil {
		return
	}
	m.activeRooms.Sub(float64(n))
}

func (m *Metrics) TimerUpdate(result string) {
	if m == nil {
		return
	}
	m.timerUpdates.WithLabelValues(result).Inc()
}

func (m *Metrics) TransferFinished(status, reason string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(status, reason).Inc()
}

func (m *Metrics) GrantIssued() {
	if m == nil {
		return
	}
	m.grantsIssued.Inc()
}

func (m *Metrics) GrantRedeemed(result string) {
	if m == nil {
		return
	}
	m.grantRedemptions.WithLabelValues(result).Inc()
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.wsConnections.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.wsConnections.Dec()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
