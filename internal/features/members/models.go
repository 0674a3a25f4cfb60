// Package members управляет участниками: регистрацией, планом подписки, баном.
// models.go описывает структуры данных для работы с таблицей members.
package members

import "time"

// Планы подписки
const (
	PlanFree = "free"
	PlanPro  = "pro" // открывает бусты второго уровня
)

// Member представляет участника в базе данных.
// Запись создаётся при первом обращении к боту.
type Member struct {
	UserID    int64     `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	Plan      string    `db:"plan" json:"plan"`
	IsBanned  bool      `db:"is_banned" json:"isBanned"`
	JoinedAt  time.Time `db:"joined_at" json:"joinedAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UpdateInfo содержит данные, которые могли измениться в Telegram.
type UpdateInfo struct {
	Username  string
	FirstName string
	LastName  string
}

// IsPro сообщает, что у участника Pro-план.
func (m *Member) IsPro() bool {
	return m.Plan == PlanPro
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	return name
}
