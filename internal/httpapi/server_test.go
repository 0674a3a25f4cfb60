package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/events"
	"healthrocket.app/rocket-bot/internal/features/boosts"
	"healthrocket.app/rocket-bot/internal/features/streak"
	"healthrocket.app/rocket-bot/internal/metrics"
)

type planStub map[int64]bool

func (p planStub) IsPro(ctx context.Context, userID int64) (bool, error) {
	return p[userID], nil
}

type apiFixture struct {
	store  *boosts.MemoryStore
	server *Server
}

func newAPI(t *testing.T, token string) *apiFixture {
	t.Helper()
	base, err := common.LoadCalendar(common.DefaultTimezone)
	require.NoError(t, err)
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, base.Location())
	cal := base.WithClock(func() time.Time { return now })

	store := boosts.NewMemoryStore()
	catalog := boosts.DefaultCatalog()
	bus := events.NewBus()
	m := metrics.New()
	t.Cleanup(m.Attach(bus))

	weekly := boosts.NewWeeklyTracker(store, cal)
	t.Cleanup(weekly.Attach(bus))

	coordinator := boosts.NewCoordinator(catalog, store, cal, planStub{2: true}, bus)
	coordinator.ObserveRejections(m)

	srv := NewServer(Deps{
		Catalog:     catalog,
		Coordinator: coordinator,
		Daily:       boosts.NewDailyTracker(store, cal),
		Weekly:      weekly,
		Streaks:     streak.NewService(store, cal, 3),
		Calendar:    cal,
		Metrics:     m,
		Token:       token,
	})
	return &apiFixture{store: store, server: srv}
}

func (f *apiFixture) do(t *testing.T, method, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	f := newAPI(t, "secret")

	rec := f.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCatalog(t *testing.T) {
	f := newAPI(t, "")

	rec := f.do(t, http.MethodGet, "/api/boosts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]boosts.Boost](t, rec), 45)

	rec = f.do(t, http.MethodGet, "/api/boosts?category=sleep")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]boosts.Boost](t, rec)
	require.Len(t, list, 9)
	for _, b := range list {
		assert.Equal(t, boosts.CategorySleep, b.Category)
	}

	rec = f.do(t, http.MethodGet, "/api/boosts?category=knitting")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplete_StatusMapping(t *testing.T) {
	f := newAPI(t, "")

	rec := f.do(t, http.MethodPost, "/api/users/1/boosts/sleep-101")
	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[boosts.Result](t, rec)
	assert.Equal(t, boosts.StateCompleted, res.State)
	assert.Equal(t, 1, res.PointsEarned)
	assert.Equal(t, 2, res.Remaining)

	rec = f.do(t, http.MethodPost, "/api/users/1/boosts/sleep-101")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_completed", decode[errorResponse](t, rec).Reason)

	rec = f.do(t, http.MethodPost, "/api/users/1/boosts/sleep-201")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/users/1/boosts/sleep-999")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/users/1/boosts/mindset-101").Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/users/1/boosts/nutrition-101").Code)

	rec = f.do(t, http.MethodPost, "/api/users/1/boosts/exercise-101")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "daily_limit", decode[errorResponse](t, rec).Reason)

	// Pro-пользователю второй уровень доступен
	rec = f.do(t, http.MethodPost, "/api/users/2/boosts/sleep-201")
	assert.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, int64(3), f.store.Balance(1))
}

func TestComplete_PersistenceFailure(t *testing.T) {
	f := newAPI(t, "")
	f.store.FailWrites(errors.New("connection reset"))

	rec := f.do(t, http.MethodPost, "/api/users/1/boosts/sleep-101")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "persistence", decode[errorResponse](t, rec).Reason)
	assert.Zero(t, f.store.Len())
}

func TestTodayWeekStreak(t *testing.T) {
	f := newAPI(t, "")
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/users/5/boosts/sleep-103").Code)

	rec := f.do(t, http.MethodGet, "/api/users/5/today")
	require.Equal(t, http.StatusOK, rec.Code)
	sel := decode[boosts.DailySelection](t, rec)
	assert.Len(t, sel.Completed, 1)
	assert.Equal(t, 2, sel.Remaining)

	rec = f.do(t, http.MethodGet, "/api/users/5/week")
	require.Equal(t, http.StatusOK, rec.Code)
	week := decode[weekResponse](t, rec)
	assert.Len(t, week.Completions, 1)
	assert.Equal(t, 4, week.Window.DaysUntilReset)

	rec = f.do(t, http.MethodGet, "/api/users/5/streak")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[streakResponse](t, rec)
	assert.Equal(t, 1, st.Streak)
	assert.True(t, st.ActiveToday)
	assert.False(t, st.AtRisk)
}

func TestReadFailureIsUnavailable(t *testing.T) {
	f := newAPI(t, "")
	f.store.FailReads(errors.New("timeout"))

	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/users/5/today").Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/users/5/week").Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/api/users/5/streak").Code)
}

func TestBadUserID(t *testing.T) {
	f := newAPI(t, "")

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/users/abc/today").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/users/0/today").Code)
}

func TestBearerToken(t *testing.T) {
	f := newAPI(t, "secret")

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/boosts").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/boosts", "Authorization", "Bearer nope").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/boosts", "Authorization", "Bearer secret").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPI(t, "")
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/users/1/boosts/sleep-101").Code)
	f.do(t, http.MethodPost, "/api/users/1/boosts/sleep-101")

	rec := f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `boost_completions_total{category="Sleep"} 1`)
	assert.Contains(t, body, `boost_rejections_total{reason="already_completed"} 1`)
	assert.Contains(t, body, `endpoint="/api/users/{id:[0-9]+}/boosts/{boostID}"`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusFor(common.ErrDailyLimitExceeded))
	assert.Equal(t, http.StatusConflict, StatusFor(common.ErrAlreadyCompleted))
	assert.Equal(t, http.StatusForbidden, StatusFor(common.ErrTierLocked))
	assert.Equal(t, http.StatusNotFound, StatusFor(common.ErrUnknownBoost))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(common.ErrDataUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(common.ErrPersistenceFailure))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}

func TestStreak_YesterdayActiveTodayEmpty(t *testing.T) {
	f := newAPI(t, "")
	for _, day := range []int{12, 13} {
		f.store.Seed(boosts.CompletedBoost{
			ID:            uuid.New(),
			UserID:        7,
			BoostID:       "sleep-101",
			Category:      boosts.CategorySleep,
			CompletedAt:   time.Date(2026, 10, day, 15, 0, 0, 0, time.UTC),
			CompletedDate: time.Date(2026, 10, day, 0, 0, 0, 0, time.UTC),
			PointsEarned:  1,
		})
	}

	rec := f.do(t, http.MethodGet, "/api/users/7/streak")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[streakResponse](t, rec)
	assert.Equal(t, 0, st.Streak)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 2, st.Carried)
	assert.False(t, st.ActiveToday)
	assert.True(t, st.AtRisk)
}
