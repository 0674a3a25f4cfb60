// Package streak — repository.go читает историю выполнений для расчёта серии
// и ведёт таблицу streak_reminders.
package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для расчёта серий и напоминаний.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий стриков.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ActiveDates возвращает даты (начиная с since), в которые у пользователя
// есть хотя бы одно выполнение, в порядке убывания.
func (r *Repository) ActiveDates(ctx context.Context, userID int64, since time.Time) ([]time.Time, error) {
	query := `
		SELECT DISTINCT completed_date
		FROM completed_boosts
		WHERE user_id = $1 AND completed_date >= $2
		ORDER BY completed_date DESC
	`
	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения дат выполнений: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// UsersAtRisk возвращает пользователей, у которых вчера было выполнение,
// сегодня — нет, и которым сегодня ещё не отправлено напоминание.
func (r *Repository) UsersAtRisk(ctx context.Context, today time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT cb.user_id
		FROM completed_boosts cb
		WHERE cb.completed_date = $2
		  AND NOT EXISTS (
			SELECT 1 FROM completed_boosts t
			WHERE t.user_id = cb.user_id AND t.completed_date = $1
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM streak_reminders sr
			WHERE sr.user_id = cb.user_id AND sr.sent_on = $1
		  )
	`
	rows, err := r.db.Query(ctx, query, today, today.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска серий под угрозой: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkReminded помечает, что напоминание за date отправлено.
// Возвращает false, если пометка уже была (другой инстанс успел раньше).
func (r *Repository) MarkReminded(ctx context.Context, userID int64, date time.Time) (bool, error) {
	query := `
		INSERT INTO streak_reminders (user_id, sent_on)
		VALUES ($1, $2)
		ON CONFLICT (user_id, sent_on) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, date)
	if err != nil {
		return false, fmt.Errorf("ошибка записи напоминания: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
