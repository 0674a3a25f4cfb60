package streak

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthrocket.app/rocket-bot/internal/common"
)

type fakeStore struct {
	dates    map[int64][]time.Time
	atRisk   []int64
	reminded map[int64]bool
	err      error
}

func (f *fakeStore) ActiveDates(ctx context.Context, userID int64, since time.Time) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []time.Time
	for _, d := range f.dates[userID] {
		if !d.Before(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) UsersAtRisk(ctx context.Context, today time.Time) ([]int64, error) {
	return f.atRisk, f.err
}

func (f *fakeStore) MarkReminded(ctx context.Context, userID int64, date time.Time) (bool, error) {
	if f.reminded[userID] {
		return false, nil
	}
	f.reminded[userID] = true
	return true, nil
}

func fixedCalendar(t *testing.T, now time.Time) *common.Calendar {
	t.Helper()
	cal, err := common.LoadCalendar(common.DefaultTimezone)
	require.NoError(t, err)
	return cal.WithClock(func() time.Time { return now })
}

func TestService_GetState(t *testing.T) {
	// 14 октября 2026, 12:00 по Нью-Йорку
	now := time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{dates: map[int64][]time.Time{
		1: {today, today.AddDate(0, 0, -1), today.AddDate(0, 0, -2)},
	}}
	svc := NewService(store, fixedCalendar(t, now), 3)

	st, err := svc.GetState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Current)
}

func TestService_GetStateReportsDataUnavailable(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	svc := NewService(store, fixedCalendar(t, time.Now()), 3)

	_, err := svc.GetState(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrDataUnavailable)
}

func TestService_SendRemindersOncePerDay(t *testing.T) {
	now := time.Date(2026, 10, 14, 23, 0, 0, 0, time.UTC) // 19:00 в Нью-Йорке
	today := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		dates: map[int64][]time.Time{
			1: {today.AddDate(0, 0, -1), today.AddDate(0, 0, -2), today.AddDate(0, 0, -3)},
			2: {today.AddDate(0, 0, -1)}, // серия 1 — ниже порога
		},
		atRisk:   []int64{1, 2},
		reminded: map[int64]bool{},
	}
	svc := NewService(store, fixedCalendar(t, now), 3)

	var sent []int64
	send := func(userID int64, text string) {
		sent = append(sent, userID)
		assert.Contains(t, text, "3 дня")
	}

	require.NoError(t, svc.SendReminders(context.Background(), send))
	require.NoError(t, svc.SendReminders(context.Background(), send))

	assert.Equal(t, []int64{1}, sent)
}

func TestReminderText_MentionsUpcomingBonus(t *testing.T) {
	next := Milestone{Days: 7, Bonus: 10}
	text := ReminderText(State{Carried: 6, Next: &next, DaysToNext: 1})

	assert.Contains(t, text, "6 дней")
	assert.Contains(t, text, "+10 FP")
}
