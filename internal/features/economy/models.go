// Package economy ведёт счёт Fuel Points (FP).
// models.go описывает структуры для балансов и транзакций.
package economy

import "time"

// Balance представляет баланс пользователя.
// У каждого участника ровно одна запись в таблице balances.
type Balance struct {
	UserID      int64     `db:"user_id" json:"userId"`
	Balance     int64     `db:"balance" json:"balance"`          // Текущий баланс FP
	TotalEarned int64     `db:"total_earned" json:"totalEarned"` // Сколько всего начислено
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Transaction — одно начисление FP.
type Transaction struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"userId"`
	Amount          int64     `db:"amount" json:"amount"` // всегда положительная
	TransactionType string    `db:"transaction_type" json:"type"`
	Description     string    `db:"description" json:"description"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Типы транзакций
const (
	TxTypeBoost       = "boost"        // Очки за выполненный буст
	TxTypeStreakBonus = "streak_bonus" // Бонус за порог серии
	TxTypeAdminGive   = "admin_give"   // Выдача админом
)

// HistoryLimit — сколько последних транзакций показываем.
const HistoryLimit = 10
