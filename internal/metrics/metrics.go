// Package metrics collects Prometheus metrics for the platform. All
// collectors live on a private registry so tests can run side by side.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge

	commissionsSettled   *prometheus.CounterVec
	commissionsForfeited *prometheus.CounterVec
	commissionAmount     *prometheus.CounterVec
	withdrawals          *prometheus.CounterVec
	careerPromotions     *prometheus.CounterVec
	plansGenerated       *prometheus.CounterVec
}

// New builds the collector set under the given namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fitmova"
	}
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by service, method, path and status.",
		}, []string{"service", "method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		commissionsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commissions_settled_total",
			Help:      "Commission transactions credited, by upline level.",
		}, []string{"level"}),
		commissionsForfeited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commissions_forfeited_total",
			Help:      "Commission levels skipped because the beneficiary was inactive.",
		}, []string{"level"}),
		commissionAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commission_amount_total",
			Help:      "Total commission amount credited, by upline level.",
		}, []string{"level"}),
		withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "withdrawals_total",
			Help:      "Withdrawal requests by final status.",
		}, []string{"status"}),
		careerPromotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "career_promotions_total",
			Help:      "Career evaluations that changed a member's level.",
		}, []string{"level"}),
		plansGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "Generated plans by kind.",
		}, []string{"kind"}),
	}
	registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.inFlight,
		m.commissionsSettled,
		m.commissionsForfeited,
		m.commissionAmount,
		m.withdrawals,
		m.careerPromotions,
		m.plansGenerated,
	)
	return m
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementInFlight marks one request in progress.
func (m *Metrics) IncrementInFlight() { m.inFlight.Inc() }

// DecrementInFlight marks one request finished.
func (m *Metrics) DecrementInFlight() { m.inFlight.Dec() }

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(service, method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(service, method, path, status).Inc()
	m.httpDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// RecordCommission records one credited commission.
func (m *Metrics) RecordCommission(level string, amount float64) {
	m.commissionsSettled.WithLabelValues(level).Inc()
	m.commissionAmount.WithLabelValues(level).Add(amount)
}

// RecordForfeit records one skipped commission level.
func (m *Metrics) RecordForfeit(level string) {
	m.commissionsForfeited.WithLabelValues(level).Inc()
}

// RecordWithdrawal records a withdrawal reaching a status.
func (m *Metrics) RecordWithdrawal(status string) {
	m.withdrawals.WithLabelValues(status).Inc()
}

// RecordPromotion records a career level change.
func (m *Metrics) RecordPromotion(level string) {
	m.careerPromotions.WithLabelValues(level).Inc()
}

// RecordPlan records one generated plan.
func (m *Metrics) RecordPlan(kind string) {
	m.plansGenerated.WithLabelValues(kind).Inc()
}
