package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	startTime = time.Now()

	Uptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "realmd_uptime_seconds",
			Help: "Auth server uptime in seconds",
		}, func() float64 {
			return time.Since(startTime).Seconds()
		})

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "realmd_active_connections",
			Help: "Current number of open client connections",
		},
	)

	AcceptedConnections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "realmd_accepted_connections_total",
			Help: "Total number of accepted client connections",
		},
	)

	FramesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realmd_frames_received_total",
			Help: "Total number of decoded client frames by opcode",
		},
		[]string{"opcode"},
	)

	Handshakes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realmd_handshakes_total",
			Help: "Completed handshakes by kind (logon, reconnect) and result",
		},
		[]string{"kind", "result"},
	)

	ConnectionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realmd_connection_errors_total",
			Help: "Connections closed because of an error, by error class",
		},
		[]string{"reason"},
	)

	CryptoLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "realmd_crypto_latency_seconds",
			Help:    "Time spent in SRP modular exponentiation, including pool wait",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "realmd_active_sessions",
			Help: "Number of sessions held by the session registry",
		},
	)

	RealmsAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "realmd_realms",
			Help: "Number of realms in the current directory snapshot",
		},
	)

	RealmRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realmd_realm_refreshes_total",
			Help: "Realm directory refreshes by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			Uptime,
			ActiveConnections,
			AcceptedConnections,
			FramesReceived,
			Handshakes,
			ConnectionErrors,
			CryptoLatency,
			ActiveSessions,
			RealmsAvailable,
			RealmRefreshes,
		)
	})
}
