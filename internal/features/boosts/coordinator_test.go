package boosts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/events"
)

type rejectionCounter struct {
	mu      sync.Mutex
	reasons []string
}

func (r *rejectionCounter) BoostRejected(reason string) {
	r.mu.Lock()
	r.reasons = append(r.reasons, reason)
	r.mu.Unlock()
}

type fixture struct {
	store  *MemoryStore
	clock  *testClock
	cal    *common.Calendar
	bus    *events.Bus
	coord  *Coordinator
	events []events.BoostCompleted
	mu     sync.Mutex
}

func newFixture(t *testing.T, now time.Time, plans PlanChecker) *fixture {
	t.Helper()
	f := &fixture{store: NewMemoryStore(), bus: events.NewBus()}
	f.cal, f.clock = testCalendar(t, now)
	f.coord = NewCoordinator(DefaultCatalog(), f.store, f.cal, plans, f.bus)
	unsubscribe := f.bus.Subscribe("test", func(ctx context.Context, e events.BoostCompleted) {
		f.mu.Lock()
		f.events = append(f.events, e)
		f.mu.Unlock()
	})
	t.Cleanup(unsubscribe)
	return f
}

func (f *fixture) published() []events.BoostCompleted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.BoostCompleted(nil), f.events...)
}

func TestComplete_Success(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), nil)

	res, err := f.coord.Complete(context.Background(), 1, "mindset-104")
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, res.State)
	assert.Equal(t, 4, res.PointsEarned)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 0, res.StreakBonus)
	assert.Equal(t, 2, res.Remaining)
	require.NotNil(t, res.Completion)
	assert.Equal(t, "2026-10-14", common.FormatDate(res.Completion.CompletedDate))
	assert.EqualValues(t, 4, f.store.Balance(1))

	evs := f.published()
	require.Len(t, evs, 1)
	assert.Equal(t, 4, evs[0].PointsEarned)
	assert.Equal(t, "Mindset", evs[0].Category)
}

func TestComplete_FourthBoostRejected(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), nil)
	ctx := context.Background()

	for _, id := range []string{"sleep-101", "sleep-102", "sleep-103"} {
		_, err := f.coord.Complete(ctx, 1, id)
		require.NoError(t, err)
	}

	res, err := f.coord.Complete(ctx, 1, "sleep-104")
	assert.ErrorIs(t, err, common.ErrDailyLimitExceeded)
	assert.Equal(t, StateRejected, res.State)
	assert.Equal(t, 0, res.Remaining)

	sel, err := NewDailyTracker(f.store, f.cal).Today(ctx, 1, f.cal.Now())
	require.NoError(t, err)
	assert.Len(t, sel.Completed, 3)
	assert.Len(t, f.published(), 3)
}

func TestComplete_SameBoostTwiceRejected(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), nil)
	ctx := context.Background()

	_, err := f.coord.Complete(ctx, 1, "sleep-101")
	require.NoError(t, err)

	res, err := f.coord.Complete(ctx, 1, "SLEEP-101")
	assert.ErrorIs(t, err, common.ErrAlreadyCompleted)
	assert.Equal(t, StateRejected, res.State)
	assert.Equal(t, 1, f.store.Len())

	// На следующий день тот же буст снова доступен
	f.clock.Set(time.Date(2026, 10, 15, 8, 0, 0, 0, loc))
	_, err = f.coord.Complete(ctx, 1, "sleep-101")
	assert.NoError(t, err)
}

func TestComplete_StreakBonusOnceOnThirdDay(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 12, 9, 0, 0, 0, loc), nil)
	ctx := context.Background()

	for day := 0; day < 2; day++ {
		f.clock.Set(time.Date(2026, 10, 12+day, 9, 0, 0, 0, loc))
		res, err := f.coord.Complete(ctx, 1, "sleep-101")
		require.NoError(t, err)
		assert.Equal(t, 0, res.StreakBonus)
	}

	f.clock.Set(time.Date(2026, 10, 14, 9, 0, 0, 0, loc))
	res, err := f.coord.Complete(ctx, 1, "sleep-101")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, 5, res.StreakBonus)
	assert.Equal(t, 1+5, res.PointsEarned)

	res, err = f.coord.Complete(ctx, 1, "sleep-102")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, 0, res.StreakBonus)
	assert.Equal(t, 2, res.PointsEarned)

	assert.EqualValues(t, 1+1+6+2, f.store.Balance(1))

	bonuses := 0
	for _, e := range f.published() {
		bonuses += e.StreakBonus
	}
	assert.Equal(t, 5, bonuses)
}

func TestComplete_GapResetsStreak(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 12, 9, 0, 0, 0, loc), nil)
	ctx := context.Background()

	_, err := f.coord.Complete(ctx, 1, "sleep-101")
	require.NoError(t, err)

	f.clock.Set(time.Date(2026, 10, 14, 9, 0, 0, 0, loc))
	res, err := f.coord.Complete(ctx, 1, "sleep-101")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 0, res.StreakBonus)
}

func TestComplete_PersistenceFailureChangesNothing(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), nil)
	obs := &rejectionCounter{}
	f.coord.ObserveRejections(obs)
	f.store.FailWrites(errors.New("disk full"))

	res, err := f.coord.Complete(context.Background(), 1, "sleep-101")

	assert.ErrorIs(t, err, common.ErrPersistenceFailure)
	assert.True(t, common.IsRetryable(err))
	assert.Equal(t, StateRejected, res.State)
	assert.Nil(t, res.Completion)
	assert.Equal(t, 0, res.PointsEarned)
	assert.Equal(t, 0, f.store.Len())
	assert.EqualValues(t, 0, f.store.Balance(1))
	assert.Empty(t, f.published())
	assert.Equal(t, []string{"persistence"}, obs.reasons)
}

func TestComplete_PrecheckReadFailureStillRecords(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), nil)
	f.store.FailReads(errors.New("replica lag"))

	res, err := f.coord.Complete(context.Background(), 1, "sleep-101")
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, res.State)
}

func TestComplete_UnknownAndTierLocked(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), planStub{2: true})
	ctx := context.Background()

	res, err := f.coord.Complete(ctx, 1, "contest-1")
	assert.ErrorIs(t, err, common.ErrUnknownBoost)
	assert.Equal(t, StateRejected, res.State)

	_, err = f.coord.Complete(ctx, 1, "sleep-201")
	assert.ErrorIs(t, err, common.ErrTierLocked)

	res, err = f.coord.Complete(ctx, 2, "sleep-201")
	require.NoError(t, err)
	assert.Equal(t, 7, res.PointsEarned)
}

func TestComplete_ConcurrentRequestsRespectCap(t *testing.T) {
	loc := newYork(t)
	f := newFixture(t, time.Date(2026, 10, 14, 8, 0, 0, 0, loc), nil)
	ctx := context.Background()
	ids := []string{"sleep-101", "sleep-102", "sleep-103", "sleep-104", "sleep-105", "sleep-106", "sleep-101", "sleep-102"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.coord.Complete(ctx, 1, id); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.True(t, common.IsRejection(err), err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, DailyLimit, succeeded)
	assert.Equal(t, DailyLimit, f.store.Len())
	assert.Len(t, f.published(), DailyLimit)
}

func TestRejectionReason(t *testing.T) {
	assert.Equal(t, "daily_limit", RejectionReason(common.ErrDailyLimitExceeded))
	assert.Equal(t, "already_completed", RejectionReason(common.ErrAlreadyCompleted))
	assert.Equal(t, "unknown_boost", RejectionReason(common.ErrUnknownBoost))
	assert.Equal(t, "tier_locked", RejectionReason(common.ErrTierLocked))
	assert.Equal(t, "data_unavailable", RejectionReason(common.ErrDataUnavailable))
	assert.Equal(t, "persistence", RejectionReason(errors.New("boom")))
}
