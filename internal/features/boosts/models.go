// Package boosts управляет ежедневными бустами: каталогом, выполнениями
// за день и неделю и самим процессом засчитывания буста.
// models.go описывает структуры данных пакета.
package boosts

import (
	"time"

	"github.com/google/uuid"
)

// DailyLimit — сколько бустов можно выполнить за один календарный день.
const DailyLimit = 3

// Category — одна из пяти категорий здоровья.
type Category string

const (
	CategorySleep     Category = "Sleep"
	CategoryMindset   Category = "Mindset"
	CategoryNutrition Category = "Nutrition"
	CategoryExercise  Category = "Exercise"
	CategoryBiohack   Category = "Biohacking"
)

// Boost — запись каталога. Не меняется во время работы.
type Boost struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	Points        int      `json:"fuelPoints"` // 1..9
	Tier          int      `json:"tier"`       // 1 или 2
	EstimatedTime string   `json:"estimatedTime"`
}

// CompletedBoost — факт выполнения буста. Создаётся один раз
// на (пользователь, буст, дата) и больше не меняется.
type CompletedBoost struct {
	ID            uuid.UUID `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"userId"`
	BoostID       string    `db:"boost_id" json:"boostId"`
	Category      Category  `db:"category" json:"category"`
	CompletedAt   time.Time `db:"completed_at" json:"completedAt"`
	CompletedDate time.Time `db:"completed_date" json:"completedDate"` // дата в опорном поясе
	PointsEarned  int       `db:"points_earned" json:"pointsEarned"`   // очки буста + бонус серии
}

// Recorded — то, что вернуло хранилище после успешной записи.
type Recorded struct {
	Completion  CompletedBoost
	StreakBonus int
	Streak      int
	DayCount    int // выполнений за день, включая это
}

// AwardFunc считает серию и бонус по активным датам пользователя,
// прочитанным под блокировкой (без текущего выполнения).
type AwardFunc func(activeDates []time.Time) (streak int, bonus int)

// DailySelection — выполнения за сегодня и оставшиеся слоты.
type DailySelection struct {
	Date      time.Time        `json:"date"`
	Completed []CompletedBoost `json:"completed"`
	Remaining int              `json:"remaining"`
}

// PointsEarned — сумма FP за день, включая бонусы серии.
func (d DailySelection) PointsEarned() int {
	total := 0
	for _, c := range d.Completed {
		total += c.PointsEarned
	}
	return total
}

// Has сообщает, выполнен ли boostID в этот день.
func (d DailySelection) Has(boostID string) bool {
	for _, c := range d.Completed {
		if c.BoostID == boostID {
			return true
		}
	}
	return false
}

// WeeklyWindow — текущая неделя: с воскресенья 00:00 опорного пояса.
type WeeklyWindow struct {
	Start          time.Time `json:"start"`
	StartDate      time.Time `json:"startDate"`
	DaysUntilReset int       `json:"daysUntilReset"` // 1..7
}

// Contains сообщает, попадает ли календарная дата в окно.
func (w WeeklyWindow) Contains(date time.Time) bool {
	return !date.Before(w.StartDate) && date.Before(w.StartDate.AddDate(0, 0, 7))
}

// State — состояние запроса на выполнение буста.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateRecording  State = "recording"
	StateCompleted  State = "completed"
	StateRejected   State = "rejected"
)

// Result — итог Complete. State всегда конечный: completed или rejected.
type Result struct {
	State        State           `json:"state"`
	Boost        Boost           `json:"boost"`
	Completion   *CompletedBoost `json:"completion,omitempty"`
	PointsEarned int             `json:"pointsEarned"`
	StreakBonus  int             `json:"streakBonus"`
	Streak       int             `json:"streak"`
	Remaining    int             `json:"remaining"`
}
