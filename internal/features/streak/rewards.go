// Package streak — rewards.go содержит бонусы за пороги серии.
//
// Таблица бонусов:
//
//	3 дня:  +5 FP
//	7 дней: +10 FP
//	21 день: +100 FP
//
// Бонусы не суммируются: каждый порог срабатывает в тот день, когда серия
// ровно его достигает. После обрыва серии пороги можно пройти снова.
package streak

// Milestones — пороги серии по возрастанию.
var Milestones = []Milestone{
	{Days: 3, Bonus: 5},
	{Days: 7, Bonus: 10},
	{Days: 21, Bonus: 100},
}

// BonusFor возвращает бонус за серию длиной streak, если это ровно порог.
func BonusFor(streak int) int {
	for _, m := range Milestones {
		if m.Days == streak {
			return m.Bonus
		}
	}
	return 0
}

// NextMilestone возвращает первый порог строго больше streak.
func NextMilestone(streak int) (Milestone, bool) {
	for _, m := range Milestones {
		if m.Days > streak {
			return m, true
		}
	}
	return Milestone{}, false
}

// MaxMilestoneDays — длина самого дальнего порога.
// Для расчёта бонуса достаточно истории такой глубины.
func MaxMilestoneDays() int {
	return Milestones[len(Milestones)-1].Days
}
