// Package members — repository.go отвечает за все операции с таблицей members.
// Каждая функция выполняет один SQL-запрос.
package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"healthrocket.app/rocket-bot/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectMember = `
	SELECT user_id, COALESCE(username, ''), first_name, COALESCE(last_name, ''),
	       plan, is_banned, joined_at, updated_at
	FROM members
`

// Upsert добавляет участника. На конфликте по user_id обновляет только
// имя и username, план и бан не трогает. Возвращает true для нового участника.
func (r *Repository) Upsert(ctx context.Context, m *Member) (bool, error) {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name, plan)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
		RETURNING (xmax = 0)
	`
	plan := m.Plan
	if plan == "" {
		plan = PlanFree
	}
	var inserted bool
	err := r.db.QueryRow(ctx, query, m.UserID, m.Username, m.FirstName, m.LastName, plan).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("ошибка создания/обновления участника: %w", err)
	}
	return inserted, nil
}

// GetByUserID возвращает участника. Не найден — common.ErrUserNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return r.queryOne(ctx, selectMember+`WHERE user_id = $1`, userID)
}

// GetByUsername ищет участника по username без учёта регистра.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	return r.queryOne(ctx, selectMember+`WHERE LOWER(username) = LOWER($1)`, username)
}

// SetPlan меняет план. Не найден — common.ErrUserNotFound.
func (r *Repository) SetPlan(ctx context.Context, userID int64, plan string) error {
	tag, err := r.db.Exec(ctx, `UPDATE members SET plan = $2, updated_at = NOW() WHERE user_id = $1`, userID, plan)
	if err != nil {
		return fmt.Errorf("ошибка обновления плана: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// SetBanned ставит или снимает бан.
func (r *Repository) SetBanned(ctx context.Context, userID int64, banned bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE members SET is_banned = $2, updated_at = NOW() WHERE user_id = $1`, userID, banned)
	if err != nil {
		return fmt.Errorf("ошибка обновления бана: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

func (r *Repository) queryOne(ctx context.Context, query string, arg interface{}) (*Member, error) {
	var m Member
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.Plan, &m.IsBanned, &m.JoinedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка чтения участника (%v): %w", arg, err)
	}
	return &m, nil
}
