// Package boosts — weekly.go ведёт недельное окно (с воскресенья 00:00)
// и кэш выполнений за текущую неделю.
package boosts

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/events"
)

// WeeklyTracker вычисляет недельное окно и кэширует выполнения за него.
//
// Переход в новое окно замечается при любом чтении или вызове Rollover.
// Кэш очищается и слушатели уведомляются ровно один раз на переход.
// История в хранилище при этом не трогается.
type WeeklyTracker struct {
	store Store
	cal   *common.Calendar

	mu        sync.Mutex
	current   time.Time // начало текущего окна, zero до первого наблюдения
	gen       uint64    // растёт при каждой очистке кэша
	cache     map[int64][]CompletedBoost
	listeners []func(WeeklyWindow)
}

// NewWeeklyTracker создаёт трекер недели.
func NewWeeklyTracker(store Store, cal *common.Calendar) *WeeklyTracker {
	return &WeeklyTracker{
		store: store,
		cal:   cal,
		cache: make(map[int64][]CompletedBoost),
	}
}

// OnReset регистрирует слушателя смены недели.
// Слушатели вызываются вне блокировки, в горутине, заметившей переход.
func (w *WeeklyTracker) OnReset(fn func(WeeklyWindow)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Window возвращает окно, в которое попадает now.
// Ровно в воскресенье 00:00 новое окно уже началось (DaysUntilReset = 7).
func (w *WeeklyTracker) Window(now time.Time) WeeklyWindow {
	win := w.windowOf(now)
	w.observe(win)
	return win
}

// Rollover фиксирует переход в новое окно. Возвращает true, если
// именно этот вызов выполнил сброс. Вызывается кроном в воскресенье 00:00,
// но сброс произойдёт и без него при первом чтении новой недели.
func (w *WeeklyTracker) Rollover(now time.Time) bool {
	return w.observe(w.windowOf(now))
}

// Completions возвращает выполнения пользователя за окно, в которое
// попадает now. Выполнение относится к неделе своей даты, а не даты чтения.
func (w *WeeklyTracker) Completions(ctx context.Context, userID int64, now time.Time) ([]CompletedBoost, WeeklyWindow, error) {
	win := w.Window(now)

	w.mu.Lock()
	cached, ok := w.cache[userID]
	isCurrent := w.current.Equal(win.StartDate)
	gen := w.gen
	w.mu.Unlock()
	if ok && isCurrent {
		return slices.Clone(cached), win, nil
	}

	all, err := w.store.CompletionsSince(ctx, userID, win.StartDate)
	if err != nil {
		return nil, win, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err)
	}
	inWindow := make([]CompletedBoost, 0, len(all))
	for _, c := range all {
		if win.Contains(c.CompletedDate) {
			inWindow = append(inWindow, c)
		}
	}

	w.mu.Lock()
	// Пока читали, кэш могли сбросить: тогда результат не сохраняем
	if w.gen == gen && w.current.Equal(win.StartDate) {
		w.cache[userID] = slices.Clone(inWindow)
	}
	w.mu.Unlock()

	return inWindow, win, nil
}

// Invalidate выбрасывает кэш пользователя: следующее чтение пойдёт в хранилище.
func (w *WeeklyTracker) Invalidate(userID int64) {
	w.mu.Lock()
	delete(w.cache, userID)
	w.gen++
	w.mu.Unlock()
}

// Attach подписывает трекер на события выполнения.
func (w *WeeklyTracker) Attach(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe("weekly-cache", func(ctx context.Context, e events.BoostCompleted) {
		w.Invalidate(e.UserID)
	})
}

// CachedUsers — сколько пользователей сейчас в кэше.
func (w *WeeklyTracker) CachedUsers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.cache)
}

func (w *WeeklyTracker) windowOf(now time.Time) WeeklyWindow {
	return WeeklyWindow{
		Start:          w.cal.WeekStart(now),
		StartDate:      w.cal.WeekStartDate(now),
		DaysUntilReset: w.cal.DaysUntilReset(now),
	}
}

// observe запоминает окно. Первое наблюдение только инициализирует трекер,
// переход вперёд сбрасывает кэш. Окна из прошлого ничего не меняют.
func (w *WeeklyTracker) observe(win WeeklyWindow) bool {
	w.mu.Lock()
	if w.current.IsZero() {
		w.current = win.StartDate
		w.mu.Unlock()
		return false
	}
	if !win.StartDate.After(w.current) {
		w.mu.Unlock()
		return false
	}

	dropped := len(w.cache)
	w.current = win.StartDate
	w.cache = make(map[int64][]CompletedBoost)
	w.gen++
	listeners := make([]func(WeeklyWindow), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	log.WithFields(log.Fields{
		"week_start":    common.FormatDate(win.StartDate),
		"dropped_users": dropped,
	}).Info("Новая неделя бустов, кэш сброшен")

	for _, fn := range listeners {
		fn(win)
	}
	return true
}
