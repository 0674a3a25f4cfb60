// Package admin реализует админ-команды с парольной аутентификацией.
// models.go описывает структуры сессий и попыток входа.
package admin

import "time"

// Ограничения входа
const (
	MaxFailedAttempts = 3              // неудачных попыток до блокировки
	LockoutPeriod     = 1 * time.Hour  // окно подсчёта неудачных попыток
	SessionTTL        = 24 * time.Hour // срок жизни сессии
	PasswordPromptTTL = 5 * time.Minute
)

// AdminSession — активная сессия администратора.
type AdminSession struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

// AdminState — состояние диалога с админом.
// Сейчас единственный шаг — ожидание пароля после !логин.
type AdminState struct {
	State     string
	ExpiresAt time.Time
}

// Возможные состояния админ-диалога
const (
	StateNone             = ""
	StateAwaitingPassword = "awaiting_password"
)
