// Package metrics регистрирует счётчики Prometheus сервиса отзывов.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trainer_reviews"

// Исходы действий.
const (
	OutcomeOK        = "ok"
	OutcomeDenied    = "denied"
	OutcomeNotFound  = "not_found"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// Metrics набор счётчиков.
type Metrics struct {
	requests      *prometheus.CounterVec
	reviewActions *prometheus.CounterVec
	authAttempts  *prometheus.CounterVec
}

// New регистрирует счётчики в reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		reviewActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_actions_total",
			Help:      "Review mutations by action and outcome.",
		}, []string{"action", "outcome"}),
		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register, login and logout attempts by outcome.",
		}, []string{"action", "outcome"}),
	}
}

// ObserveRequest учитывает обработанный HTTP‑запрос.
func (m *Metrics) ObserveRequest(method string, status int) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ReviewAction учитывает действие над отзывом.
func (m *Metrics) ReviewAction(action, outcome string) {
	m.reviewActions.WithLabelValues(action, outcome).Inc()
}

// AuthAttempt учитывает попытку регистрации, входа или выхода.
func (m *Metrics) AuthAttempt(action, outcome string) {
	m.authAttempts.WithLabelValues(action, outcome).Inc()
}
