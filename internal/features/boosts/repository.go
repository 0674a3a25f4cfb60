// Package boosts — repository.go работает с таблицей completed_boosts.
// Запись выполнения и начисление FP идут в одной транзакции под
// advisory-блокировкой пользователя.
package boosts

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/db/postgres"
	"healthrocket.app/rocket-bot/internal/features/economy"
	"healthrocket.app/rocket-bot/internal/features/streak"
)

// Ledger начисляет FP внутри чужой транзакции.
type Ledger interface {
	CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount int64, txType, description string) error
}

// DB — часть *pgxpool.Pool, нужная репозиторию.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository — реализация Store поверх PostgreSQL.
type Repository struct {
	db     DB
	ledger Ledger
}

// NewRepository создаёт репозиторий бустов.
func NewRepository(db DB, ledger Ledger) *Repository {
	return &Repository{db: db, ledger: ledger}
}

const selectCompletions = `
	SELECT id, user_id, boost_id, category, completed_at, completed_date, points_earned
	FROM completed_boosts
`

// CompletionsOn возвращает выполнения пользователя за дату.
func (r *Repository) CompletionsOn(ctx context.Context, userID int64, date time.Time) ([]CompletedBoost, error) {
	query := selectCompletions + `WHERE user_id = $1 AND completed_date = $2 ORDER BY completed_at`
	return r.query(ctx, query, userID, date)
}

// CompletionsSince возвращает выполнения начиная с даты since.
func (r *Repository) CompletionsSince(ctx context.Context, userID int64, since time.Time) ([]CompletedBoost, error) {
	query := selectCompletions + `WHERE user_id = $1 AND completed_date >= $2 ORDER BY completed_at`
	return r.query(ctx, query, userID, since)
}

// Record атомарно записывает выполнение.
//
// Порядок внутри транзакции:
//  1. pg_advisory_xact_lock(user_id) — конкурентные запросы пользователя идут по очереди
//  2. лимит 3 в день и повтор буста
//  3. серия по активным датам, бонус
//  4. INSERT и начисление FP
//
// Бизнес-отказы возвращаются как есть, всё остальное — ErrPersistenceFailure.
func (r *Repository) Record(ctx context.Context, c CompletedBoost, award AwardFunc) (Recorded, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Recorded{}, persistenceErr("начало транзакции", err)
	}
	defer tx.Rollback(ctx)

	if err := postgres.LockUser(ctx, tx, c.UserID); err != nil {
		return Recorded{}, persistenceErr("блокировка", err)
	}

	var dayCount int
	var duplicate bool
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(BOOL_OR(boost_id = $3), FALSE)
		FROM completed_boosts
		WHERE user_id = $1 AND completed_date = $2
	`, c.UserID, c.CompletedDate, c.BoostID).Scan(&dayCount, &duplicate)
	if err != nil {
		return Recorded{}, persistenceErr("подсчёт выполнений", err)
	}
	if dayCount >= DailyLimit {
		return Recorded{}, common.ErrDailyLimitExceeded
	}
	if duplicate {
		return Recorded{}, common.ErrAlreadyCompleted
	}

	dates, err := activeDatesTx(ctx, tx, c.UserID, c.CompletedDate.AddDate(0, 0, -streak.LookbackDays))
	if err != nil {
		return Recorded{}, persistenceErr("чтение серии", err)
	}
	streakLen, bonus := award(dates)

	base := c.PointsEarned
	c.PointsEarned = base + bonus
	_, err = tx.Exec(ctx, `
		INSERT INTO completed_boosts (id, user_id, boost_id, category, completed_at, completed_date, points_earned)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.UserID, c.BoostID, string(c.Category), c.CompletedAt, c.CompletedDate, c.PointsEarned)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return Recorded{}, common.ErrAlreadyCompleted
		}
		return Recorded{}, persistenceErr("вставка выполнения", err)
	}

	desc := fmt.Sprintf("Буст %s", c.BoostID)
	if err := r.ledger.CreditTx(ctx, tx, c.UserID, int64(base), economy.TxTypeBoost, desc); err != nil {
		return Recorded{}, persistenceErr("начисление FP", err)
	}
	if bonus > 0 {
		desc := fmt.Sprintf("Серия %d %s", streakLen, common.PluralizeDays(streakLen))
		if err := r.ledger.CreditTx(ctx, tx, c.UserID, int64(bonus), economy.TxTypeStreakBonus, desc); err != nil {
			return Recorded{}, persistenceErr("начисление бонуса", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Recorded{}, persistenceErr("commit", err)
	}

	return Recorded{Completion: c, StreakBonus: bonus, Streak: streakLen, DayCount: dayCount + 1}, nil
}

func activeDatesTx(ctx context.Context, tx pgx.Tx, userID int64, since time.Time) ([]time.Time, error) {
	rows, err := tx.Query(ctx, `
		SELECT DISTINCT completed_date
		FROM completed_boosts
		WHERE user_id = $1 AND completed_date >= $2
	`, userID, since)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[time.Time])
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) ([]CompletedBoost, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса выполнений: %w", err)
	}
	defer rows.Close()

	var out []CompletedBoost
	for rows.Next() {
		var c CompletedBoost
		var category string
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.BoostID, &category,
			&c.CompletedAt, &c.CompletedDate, &c.PointsEarned,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования выполнения: %w", err)
		}
		c.Category = Category(category)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

func persistenceErr(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrPersistenceFailure, step, err)
}
