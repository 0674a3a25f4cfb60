// Package metrics собирает метрики Prometheus: выполненные бусты,
// отказы по причинам, начисленные FP и запросы HTTP API.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"healthrocket.app/rocket-bot/internal/events"
)

// Metrics держит собственный реестр, чтобы тесты не делили глобальный.
type Metrics struct {
	registry *prometheus.Registry

	completions  *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	points       prometheus.Counter
	streakBonus  prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New создаёт и регистрирует все коллекторы.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boost_completions_total",
				Help: "Total number of completed boosts",
			},
			[]string{"category"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "boost_rejections_total",
				Help: "Total number of rejected boost completions",
			},
			[]string{"reason"},
		),
		points: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fuel_points_awarded_total",
			Help: "Fuel Points awarded for boosts including streak bonuses",
		}),
		streakBonus: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "streak_bonuses_total",
			Help: "Number of streak milestone bonuses awarded",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
	}

	m.registry.MustRegister(
		m.completions,
		m.rejections,
		m.points,
		m.streakBonus,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry возвращает реестр (для тестов и дополнительных коллекторов).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// BoostRejected считает отказ с кодом причины.
func (m *Metrics) BoostRejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

// BoostCompleted считает выполненный буст и начисленные очки.
func (m *Metrics) BoostCompleted(e events.BoostCompleted) {
	m.completions.WithLabelValues(e.Category).Inc()
	if e.PointsEarned > 0 {
		m.points.Add(float64(e.PointsEarned))
	}
	if e.StreakBonus > 0 {
		m.streakBonus.Inc()
	}
}

// Attach подписывает метрики на шину событий.
func (m *Metrics) Attach(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe("metrics", func(ctx context.Context, e events.BoostCompleted) {
		m.BoostCompleted(e)
	})
}

// ObserveHTTP записывает один обработанный HTTP-запрос.
func (m *Metrics) ObserveHTTP(method, endpoint string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
