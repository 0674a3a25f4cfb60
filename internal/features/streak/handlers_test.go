package streak

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMessenger struct {
	texts []string
}

func (m *recordingMessenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	m.texts = append(m.texts, text)
	return len(m.texts), nil
}

func (m *recordingMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	m.texts[messageID-1] = text
	return nil
}

func TestHandleStreak(t *testing.T) {
	now := time.Date(2026, 10, 14, 16, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{dates: map[int64][]time.Time{
		7: {today.AddDate(0, 0, -1), today.AddDate(0, 0, -2)},
	}}
	msg := &recordingMessenger{}
	h := NewHandler(NewService(store, fixedCalendar(t, now), 3), msg)

	h.HandleStreak(context.Background(), 100, 7)

	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], "Серия: 0 дней")
	assert.Contains(t, msg.texts[0], "ещё не засчитан")
	assert.Contains(t, msg.texts[0], "Можно продлить: 2 дня")
	assert.Contains(t, msg.texts[0], "До бонуса +5 FP: 1 день")
}

func TestHandleStreak_ReadFailure(t *testing.T) {
	msg := &recordingMessenger{}
	h := NewHandler(NewService(&fakeStore{err: errors.New("down")}, fixedCalendar(t, time.Now()), 3), msg)

	h.HandleStreak(context.Background(), 100, 7)

	require.Len(t, msg.texts, 1)
	assert.Contains(t, msg.texts[0], "попробуй ещё раз")
}

func TestFormatState_AllMilestonesReached(t *testing.T) {
	text := FormatState(State{Current: 30, ActiveToday: true})
	assert.Contains(t, text, "Серия: 30 дней")
	assert.Contains(t, text, "Все бонусы серии получены")
	assert.NotContains(t, text, "Можно продлить")
}
