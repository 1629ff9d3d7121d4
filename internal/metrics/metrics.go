package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors exported on /metrics. A nil *Metrics or one
// built without a registerer records nothing.
type Metrics struct {
	httpRequests    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	pollCycles      *prometheus.CounterVec
	cartMutations   *prometheus.CounterVec
	sessions        prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served, by route and status.",
		}, []string{"route", "status"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Latency of calls to the backend API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Polling iterations, by stream and result.",
		}, []string{"stream", "result"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Cart mutations applied, by operation.",
		}, []string{"op"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_sessions",
			Help: "Live storefront sessions.",
		}),
	}
	reg.MustRegister(m.httpRequests, m.backendDuration, m.pollCycles, m.cartMutations, m.sessions)
	return m
}

func (m *Metrics) ObserveRequest(route string, status int) {
	if m == nil || m.httpRequests == nil {
		return
	}
	m.httpRequests.WithLabelValues(normalizeLabel(route), strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveBackend(operation string, d time.Duration) {
	if m == nil || m.backendDuration == nil {
		return
	}
	m.backendDuration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

// ObservePoll counts one poll cycle; err decides the result label.
func (m *Metrics) ObservePoll(stream string, err error) {
	if m == nil || m.pollCycles == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.pollCycles.WithLabelValues(normalizeLabel(stream), result).Inc()
}

func (m *Metrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *Metrics) SetSessions(n int) {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
