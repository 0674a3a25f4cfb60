// Package streak управляет «огоньком» — серией дней подряд с хотя бы одним
// выполненным бустом.
// models.go описывает производные значения серии; сама серия нигде не хранится
// и каждый раз пересчитывается из истории выполнений.
package streak

// Milestone — порог серии с бонусом в FP.
type Milestone struct {
	Days  int `json:"days"`
	Bonus int `json:"bonus"`
}

// State — производное состояние серии на сегодня.
type State struct {
	// Current — дней подряд, заканчивая сегодняшним. 0, если сегодня ещё ничего не выполнено.
	Current int `json:"current"`
	// Carried — дней подряд, заканчивая вчерашним: её продлит первый буст за сегодня.
	Carried int `json:"carried"`
	// ActiveToday — сегодня уже есть хотя бы одно выполнение.
	ActiveToday bool `json:"activeToday"`
	// Next — ближайший ещё не достигнутый порог (nil после 21 дня).
	Next *Milestone `json:"next,omitempty"`
	// DaysToNext — сколько активных дней осталось до Next.
	DaysToNext int `json:"daysToNext,omitempty"`
}

// Base возвращает серию, от которой считается путь до следующего бонуса:
// сегодняшнюю, если день уже засчитан, иначе ту, что ещё можно продлить.
// Пользователю как «серию» показывают только Current.
func (s State) Base() int {
	if s.ActiveToday {
		return s.Current
	}
	return s.Carried
}

// AtRisk — серия есть, но сегодня её ещё не продлили.
func (s State) AtRisk() bool {
	return !s.ActiveToday && s.Carried > 0
}
