package middleware

import (
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(limit int, window time.Duration, now *time.Time) *RateLimiter {
	rl := NewRateLimiter(limit, window)
	var mu sync.Mutex
	rl.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return *now
	}
	return rl
}

func TestRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(3, time.Minute, &now)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow(1), "request %d", i)
	}
	assert.False(t, rl.Allow(1))
	// Другой пользователь не делит бакет
	assert.True(t, rl.Allow(2))

	// Один токен восстанавливается за window/limit
	now = now.Add(21 * time.Second)
	assert.True(t, rl.Allow(1))
	assert.False(t, rl.Allow(1))
}

func TestRateLimiter_EvictsIdleUsers(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(10, time.Minute, &now)
	defer rl.Close()

	rl.Allow(1)
	rl.Allow(2)
	assert.Equal(t, 2, rl.Len())

	now = now.Add(2 * time.Minute)
	rl.Allow(2)
	now = now.Add(2 * time.Minute)
	rl.evict()
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_CloseIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Second)
	rl.Close()
	rl.Close()
}

func TestRecoverUpdate_LogsUpdateContext(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	update := telego.Update{
		UpdateID: 42,
		Message: &telego.Message{
			Chat: telego.Chat{ID: -100},
			From: &telego.User{ID: 7},
			Text: "!буст sleep-101",
		},
	}
	assert.NotPanics(t, func() {
		defer RecoverUpdate(update)
		panic("boom")
	})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Equal(t, 42, entry.Data["update_id"])
	assert.Equal(t, int64(-100), entry.Data["chat_id"])
	assert.Equal(t, int64(7), entry.Data["user_id"])
	assert.Equal(t, "boom", entry.Data["panic"])
}

func TestRecoverUpdate_NoPanicNoLog(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	func() {
		defer RecoverUpdate(telego.Update{})
	}()

	assert.Empty(t, hook.AllEntries())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "привет", truncate("привет", 6))
	assert.Equal(t, "при...", truncate("привет", 3))
}

func TestLogMessage_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		LogMessage(nil)
		LogMessage(&telego.Message{Text: "без отправителя"})
	})
}
