// internal/pkg/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	accountEvents *prometheus.CounterVec
	cartEvents    *prometheus.CounterVec
}

// New registers the collectors on reg. A nil registerer yields a no-op value.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	accountEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "account_events_total",
		Help: "Account lifecycle outcomes (register, activate, login, logout).",
	}, []string{"event", "outcome"})
	cartEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_upserts_total",
		Help: "Cart and wishlist upserts by target and result.",
	}, []string{"target", "result"})

	reg.MustRegister(requests, duration, accountEvents, cartEvents)
	return &Metrics{
		requests:      requests,
		duration:      duration,
		accountEvents: accountEvents,
		cartEvents:    cartEvents,
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// AccountEvent counts an account lifecycle outcome.
func (m *Metrics) AccountEvent(event, outcome string) {
	if m == nil || m.accountEvents == nil {
		return
	}
	m.accountEvents.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// Upsert counts a cart or wishlist reconciliation.
func (m *Metrics) Upsert(target, result string) {
	if m == nil || m.cartEvents == nil {
		return
	}
	m.cartEvents.WithLabelValues(normalizeLabel(target), normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
