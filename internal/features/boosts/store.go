// Package boosts — store.go описывает контракт хранилища выполнений.
package boosts

import (
	"context"
	"time"
)

// Store — единственный источник истины о выполнениях.
//
// Record должен атомарно для пользователя проверить лимит и уникальность,
// вставить факт и начислить очки. Ответ Record важнее любых
// предварительных проверок вызывающего.
type Store interface {
	CompletionsOn(ctx context.Context, userID int64, date time.Time) ([]CompletedBoost, error)
	CompletionsSince(ctx context.Context, userID int64, since time.Time) ([]CompletedBoost, error)
	Record(ctx context.Context, c CompletedBoost, award AwardFunc) (Recorded, error)
}
