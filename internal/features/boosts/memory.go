package boosts

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/features/streak"
)

// MemoryStore — хранилище в памяти с той же семантикой, что и Postgres:
// лимит 3 в день и уникальность (пользователь, буст, дата) под мьютексом.
// Используется в тестах и для локального запуска без БД.
type MemoryStore struct {
	mu          sync.Mutex
	completions []CompletedBoost
	balances    map[int64]int64
	reminded    map[string]struct{}

	readErr  error
	writeErr error
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		balances: make(map[int64]int64),
		reminded: make(map[string]struct{}),
	}
}

// FailReads заставляет все чтения возвращать err (nil — снять).
func (m *MemoryStore) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites заставляет Record возвращать err (nil — снять).
func (m *MemoryStore) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Seed добавляет готовые выполнения в обход проверок.
func (m *MemoryStore) Seed(cs ...CompletedBoost) {
	m.mu.Lock()
	m.completions = append(m.completions, cs...)
	m.mu.Unlock()
}

// Balance возвращает начисленные пользователю FP.
func (m *MemoryStore) Balance(userID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

// Len — сколько всего выполнений хранится.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.completions)
}

func (m *MemoryStore) CompletionsOn(ctx context.Context, userID int64, date time.Time) ([]CompletedBoost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.filter(func(c CompletedBoost) bool {
		return c.UserID == userID && common.SameDate(c.CompletedDate, date)
	}), nil
}

func (m *MemoryStore) CompletionsSince(ctx context.Context, userID int64, since time.Time) ([]CompletedBoost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.filter(func(c CompletedBoost) bool {
		return c.UserID == userID && !c.CompletedDate.Before(since)
	}), nil
}

func (m *MemoryStore) Record(ctx context.Context, c CompletedBoost, award AwardFunc) (Recorded, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return Recorded{}, m.writeErr
	}

	day := m.filter(func(x CompletedBoost) bool {
		return x.UserID == c.UserID && common.SameDate(x.CompletedDate, c.CompletedDate)
	})
	if len(day) >= DailyLimit {
		return Recorded{}, common.ErrDailyLimitExceeded
	}
	for _, x := range day {
		if x.BoostID == c.BoostID {
			return Recorded{}, common.ErrAlreadyCompleted
		}
	}

	since := c.CompletedDate.AddDate(0, 0, -streak.LookbackDays)
	var dates []time.Time
	for _, x := range m.completions {
		if x.UserID == c.UserID && !x.CompletedDate.Before(since) {
			dates = append(dates, x.CompletedDate)
		}
	}
	streakLen, bonus := award(dates)

	base := c.PointsEarned
	c.PointsEarned = base + bonus
	m.completions = append(m.completions, c)
	m.balances[c.UserID] += int64(c.PointsEarned)

	return Recorded{Completion: c, StreakBonus: bonus, Streak: streakLen, DayCount: len(day) + 1}, nil
}

// ActiveDates, UsersAtRisk и MarkReminded реализуют streak.Store.

func (m *MemoryStore) ActiveDates(ctx context.Context, userID int64, since time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	seen := make(map[string]time.Time)
	for _, c := range m.completions {
		if c.UserID == userID && !c.CompletedDate.Before(since) {
			seen[common.FormatDate(c.CompletedDate)] = c.CompletedDate
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

func (m *MemoryStore) UsersAtRisk(ctx context.Context, today time.Time) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	yesterday := today.AddDate(0, 0, -1)
	activeYesterday := make(map[int64]bool)
	activeToday := make(map[int64]bool)
	for _, c := range m.completions {
		switch {
		case common.SameDate(c.CompletedDate, yesterday):
			activeYesterday[c.UserID] = true
		case common.SameDate(c.CompletedDate, today):
			activeToday[c.UserID] = true
		}
	}
	var out []int64
	for id := range activeYesterday {
		if activeToday[id] {
			continue
		}
		if _, ok := m.reminded[reminderKey(id, today)]; ok {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *MemoryStore) MarkReminded(ctx context.Context, userID int64, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reminderKey(userID, date)
	if _, ok := m.reminded[key]; ok {
		return false, nil
	}
	m.reminded[key] = struct{}{}
	return true, nil
}

func (m *MemoryStore) filter(keep func(CompletedBoost) bool) []CompletedBoost {
	var out []CompletedBoost
	for _, c := range m.completions {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out
}

func reminderKey(userID int64, date time.Time) string {
	return common.FormatDate(date) + "/" + strconv.FormatInt(userID, 10)
}

var _ Store = (*MemoryStore)(nil)
var _ streak.Store = (*MemoryStore)(nil)
