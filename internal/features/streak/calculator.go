// Package streak — calculator.go считает серию по датам выполнений.
package streak

import (
	"time"

	"healthrocket.app/rocket-bot/internal/common"
)

// LookbackDays — глубина истории, которую читаем для отображения серии.
// Серии длиннее этого значения показываются обрезанными.
const LookbackDays = 400

// Calculate считает серию на дату today по множеству активных дат.
// Дата активна, если в ней есть хотя бы одно выполнение; повторы и порядок
// не важны, даты после today игнорируются.
//
// Алгоритм: идём назад от вчерашнего дня, пока даты идут подряд — это Carried.
// Сегодня входит в серию, только если уже активно.
func Calculate(activeDates []time.Time, today time.Time) State {
	today = civil(today)
	active := make(map[string]struct{}, len(activeDates))
	for _, d := range activeDates {
		d = civil(d)
		if d.After(today) {
			continue
		}
		active[common.FormatDate(d)] = struct{}{}
	}

	_, activeToday := active[common.FormatDate(today)]

	carried := 0
	for day := today.AddDate(0, 0, -1); ; day = day.AddDate(0, 0, -1) {
		if _, ok := active[common.FormatDate(day)]; !ok {
			break
		}
		carried++
	}

	st := State{Carried: carried, ActiveToday: activeToday}
	if activeToday {
		st.Current = carried + 1
	}

	if next, ok := NextMilestone(st.Base()); ok {
		st.Next = &next
		st.DaysToNext = next.Days - st.Base()
	}
	return st
}

// AfterCompletion возвращает серию и бонус, которые даст ещё одно
// выполнение сегодня при истории activeDates (без этого выполнения).
// Бонус начисляется только тем выполнением, которое делает день активным.
func AfterCompletion(activeDates []time.Time, today time.Time) (streak int, bonus int) {
	st := Calculate(activeDates, today)
	if st.ActiveToday {
		return st.Current, 0
	}
	streak = st.Carried + 1
	return streak, BonusFor(streak)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
