// Package boosts — daily.go отвечает на вопрос «что я уже сделал сегодня».
package boosts

import (
	"context"
	"fmt"
	"time"

	"healthrocket.app/rocket-bot/internal/common"
)

// DailyTracker считает выполнения за текущий день опорного пояса.
type DailyTracker struct {
	store Store
	cal   *common.Calendar
}

// NewDailyTracker создаёт трекер дня.
func NewDailyTracker(store Store, cal *common.Calendar) *DailyTracker {
	return &DailyTracker{store: store, cal: cal}
}

// Today возвращает выполнения за день, в который попадает now.
// При ошибке чтения отдаёт пустой день с полным лимитом и ошибку
// ErrDataUnavailable: выполнения никогда не выдумываются.
func (t *DailyTracker) Today(ctx context.Context, userID int64, now time.Time) (DailySelection, error) {
	date := t.cal.DateOf(now)
	sel := DailySelection{Date: date, Remaining: DailyLimit}

	completed, err := t.store.CompletionsOn(ctx, userID, date)
	if err != nil {
		return sel, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err)
	}

	sel.Completed = completed
	sel.Remaining = DailyLimit - len(completed)
	if sel.Remaining < 0 {
		sel.Remaining = 0
	}
	return sel, nil
}
