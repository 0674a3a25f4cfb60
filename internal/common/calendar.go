// Package common — calendar.go собирает в одном месте всю арифметику
// «дней» и «недель» в опорном часовом поясе.
//
// Календарная дата везде представлена как time.Time в полночь UTC
// с годом/месяцем/днём опорного пояса. Так она совпадает с тем, как pgx
// читает колонку DATE, и её можно безопасно сдвигать через AddDate.
package common

import "time"

// DefaultTimezone — опорный пояс Health Rocket (серии считаются по EST).
const DefaultTimezone = "America/New_York"

// Calendar считает границы дней и недель в заданном часовом поясе.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar создаёт календарь для пояса loc.
// nil означает UTC.
func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc, now: time.Now}
}

// LoadCalendar создаёт календарь по имени IANA-пояса.
func LoadCalendar(name string) (*Calendar, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}
	return NewCalendar(loc), nil
}

// WithClock подменяет источник текущего времени (для тестов).
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

// Location возвращает опорный часовой пояс.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now возвращает текущее время в опорном поясе.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// DateOf возвращает календарную дату момента t в опорном поясе.
func (c *Calendar) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Today — сегодняшняя дата в опорном поясе.
func (c *Calendar) Today() time.Time {
	return c.DateOf(c.now())
}

// StartOfDay возвращает момент полуночи даты date в опорном поясе.
func (c *Calendar) StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.loc)
}

// DayBounds возвращает полуинтервал [начало, конец) суток date.
// Длина может быть 23 или 25 часов в дни перевода часов.
func (c *Calendar) DayBounds(date time.Time) (time.Time, time.Time) {
	start := c.StartOfDay(date)
	end := c.StartOfDay(date.AddDate(0, 0, 1))
	return start, end
}

// WeekStartDate возвращает дату ближайшего прошедшего воскресенья
// (или саму дату, если t приходится на воскресенье).
func (c *Calendar) WeekStartDate(t time.Time) time.Time {
	date := c.DateOf(t)
	return date.AddDate(0, 0, -int(date.Weekday()))
}

// WeekStart — момент начала недели: воскресенье 00:00 в опорном поясе.
func (c *Calendar) WeekStart(t time.Time) time.Time {
	return c.StartOfDay(c.WeekStartDate(t))
}

// DaysUntilReset возвращает, сколько календарных дней осталось до
// следующего воскресенья 00:00. Всегда в диапазоне 1..7:
// в субботу — 1, в воскресенье (включая ровно 00:00) — 7.
func (c *Calendar) DaysUntilReset(t time.Time) int {
	return 7 - int(c.DateOf(t).Weekday())
}

// SameDate сравнивает две календарные даты без учёта времени.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatDate форматирует календарную дату как 2006-01-02.
func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}
