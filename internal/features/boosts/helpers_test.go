package boosts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"healthrocket.app/rocket-bot/internal/common"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(common.DefaultTimezone)
	require.NoError(t, err)
	return loc
}

// testCalendar возвращает календарь Нью-Йорка с управляемыми часами.
func testCalendar(t *testing.T, now time.Time) (*common.Calendar, *testClock) {
	t.Helper()
	clock := &testClock{now: now}
	return common.NewCalendar(newYork(t)).WithClock(clock.Now), clock
}

type planStub map[int64]bool

func (p planStub) IsPro(ctx context.Context, userID int64) (bool, error) {
	return p[userID], nil
}

type recordingMessenger struct {
	mu      sync.Mutex
	sent    []string
	edits   map[int]string
	sendErr error
	editErr error
}

func (m *recordingMessenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.sent = append(m.sent, text)
	return len(m.sent), nil
}

func (m *recordingMessenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	if m.edits == nil {
		m.edits = make(map[int]string)
	}
	m.edits[messageID] = text
	return nil
}
