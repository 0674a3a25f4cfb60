package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrocket.app/rocket-bot/internal/events"
)

// value возвращает значение метрики с нужными метками (0, если её нет).
func value(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if !hasLabels(metric, labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range metric.GetLabel() {
		if v, ok := labels[lp.GetName()]; ok && v == lp.GetValue() {
			found++
		}
	}
	return found == len(labels)
}

func TestBusEventsAreCounted(t *testing.T) {
	m := New()
	bus := events.NewBus()
	unsubscribe := m.Attach(bus)

	bus.Publish(context.Background(), events.BoostCompleted{UserID: 1, Category: "sleep", PointsEarned: 3})
	bus.Publish(context.Background(), events.BoostCompleted{UserID: 1, Category: "sleep", PointsEarned: 12, StreakBonus: 10})
	bus.Publish(context.Background(), events.BoostCompleted{UserID: 2, Category: "nutrition", PointsEarned: 4})

	assert.Equal(t, 2.0, value(t, m, "boost_completions_total", map[string]string{"category": "sleep"}))
	assert.Equal(t, 1.0, value(t, m, "boost_completions_total", map[string]string{"category": "nutrition"}))
	assert.Equal(t, 19.0, value(t, m, "fuel_points_awarded_total", nil))
	assert.Equal(t, 1.0, value(t, m, "streak_bonuses_total", nil))

	unsubscribe()
	bus.Publish(context.Background(), events.BoostCompleted{UserID: 1, Category: "sleep", PointsEarned: 3})
	assert.Equal(t, 2.0, value(t, m, "boost_completions_total", map[string]string{"category": "sleep"}))
}

func TestRejectionsByReason(t *testing.T) {
	m := New()
	m.BoostRejected("daily_limit")
	m.BoostRejected("daily_limit")
	m.BoostRejected("tier_locked")

	assert.Equal(t, 2.0, value(t, m, "boost_rejections_total", map[string]string{"reason": "daily_limit"}))
	assert.Equal(t, 1.0, value(t, m, "boost_rejections_total", map[string]string{"reason": "tier_locked"}))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/boosts", http.StatusOK, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{endpoint="/api/boosts",method="GET",status="200"} 1`)
	assert.Equal(t, 1.0, value(t, m, "http_request_duration_seconds", map[string]string{"endpoint": "/api/boosts"}))
}
