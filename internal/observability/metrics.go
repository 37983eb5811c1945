package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slalomboard",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slalomboard",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	feedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slalomboard",
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Decoded telemetry events by source and kind.",
		},
		[]string{"source", "kind"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slalomboard",
			Subsystem: "feed",
			Name:      "decode_errors_total",
			Help:      "Payloads that failed to decode, by source.",
		},
		[]string{"source"},
	)
	reconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slalomboard",
			Subsystem: "transport",
			Name:      "reconnects_total",
			Help:      "Reconnect attempts scheduled, by source.",
		},
		[]string{"source"},
	)
	connectionState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "slalomboard",
			Subsystem: "transport",
			Name:      "connection_state",
			Help:      "Connection state by source (0 disconnected, 1 connecting, 2 connected, 3 reconnecting).",
		},
		[]string{"source"},
	)
	snapshotApplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slalomboard",
			Subsystem: "scoreboard",
			Name:      "applies_total",
			Help:      "Events applied to the scoreboard snapshot, by kind.",
		},
		[]string{"kind"},
	)
	lookupRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slalomboard",
			Subsystem: "results",
			Name:      "lookup_requests_total",
			Help:      "First-run lookup requests by outcome.",
		},
		[]string{"outcome"},
	)
	lookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "slalomboard",
			Subsystem: "results",
			Name:      "lookup_duration_seconds",
			Help:      "First-run lookup duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	replayPosition = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "slalomboard",
			Subsystem: "replay",
			Name:      "position_seconds",
			Help:      "Capture offset of the last replayed entry in seconds.",
		},
	)
)

var subscriptionsOnce sync.Once

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			feedEvents, decodeErrors,
			reconnects, connectionState,
			snapshotApplies,
			lookupRequests, lookupDuration,
			replayPosition,
		)
	})
}

// RegisterSubscriptionsGauge exposes the process bus subscriber count.
// One bus per process; later calls are no-ops.
func RegisterSubscriptionsGauge(count func() int) {
	subscriptionsOnce.Do(func() {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "slalomboard",
				Subsystem: "feed",
				Name:      "subscriptions",
				Help:      "Active bus subscriptions.",
			},
			func() float64 { return float64(count()) },
		))
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordEventDecoded(source, kind string) {
	RegisterMetrics()
	feedEvents.WithLabelValues(source, kind).Inc()
}

func RecordDecodeError(source string) {
	RegisterMetrics()
	decodeErrors.WithLabelValues(source).Inc()
}

func RecordReconnect(source string) {
	RegisterMetrics()
	reconnects.WithLabelValues(source).Inc()
}

func SetConnectionState(source string, state int) {
	RegisterMetrics()
	connectionState.WithLabelValues(source).Set(float64(state))
}

func RecordSnapshotApply(kind string) {
	RegisterMetrics()
	snapshotApplies.WithLabelValues(kind).Inc()
}

func RecordLookup(outcome string, duration time.Duration) {
	RegisterMetrics()
	lookupRequests.WithLabelValues(outcome).Inc()
	lookupDuration.Observe(duration.Seconds())
}

func SetReplayPosition(seconds float64) {
	RegisterMetrics()
	replayPosition.Set(seconds)
}
