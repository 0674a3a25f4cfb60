// Package boosts — coordinator.go проводит один запрос на выполнение буста
// через состояния idle → validating → recording → completed | rejected.
package boosts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/events"
	"healthrocket.app/rocket-bot/internal/features/streak"
)

// PlanChecker сообщает, есть ли у пользователя Pro-план.
type PlanChecker interface {
	IsPro(ctx context.Context, userID int64) (bool, error)
}

// RejectionObserver получает причину каждого отказа (для метрик).
type RejectionObserver interface {
	BoostRejected(reason string)
}

// Coordinator засчитывает бусты.
type Coordinator struct {
	catalog   *Catalog
	store     Store
	cal       *common.Calendar
	plans     PlanChecker
	bus       *events.Bus
	observers []RejectionObserver
}

// NewCoordinator создаёт координатор. plans == nil — все пользователи на free.
func NewCoordinator(catalog *Catalog, store Store, cal *common.Calendar, plans PlanChecker, bus *events.Bus) *Coordinator {
	return &Coordinator{catalog: catalog, store: store, cal: cal, plans: plans, bus: bus}
}

// ObserveRejections добавляет наблюдателя отказов.
func (c *Coordinator) ObserveRejections(obs RejectionObserver) {
	c.observers = append(c.observers, obs)
}

// Complete засчитывает буст boostID пользователю userID.
//
// Предварительная проверка лимита и повтора носит рекомендательный характер:
// хранилище проверяет то же самое под блокировкой, и его ответ главный.
// Ошибка чтения на предпроверке не мешает записи.
//
// Результат возвращается всегда, его State — completed или rejected.
func (c *Coordinator) Complete(ctx context.Context, userID int64, boostID string) (*Result, error) {
	res := &Result{State: StateIdle, Remaining: DailyLimit}
	logger := log.WithFields(log.Fields{"user_id": userID, "boost_id": boostID})

	res.State = StateValidating
	b, ok := c.catalog.Lookup(boostID)
	if !ok {
		return c.reject(res, logger, common.ErrUnknownBoost)
	}
	res.Boost = b

	if b.Tier > 1 {
		pro, err := c.isPro(ctx, userID)
		if err != nil {
			return c.reject(res, logger, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err))
		}
		if !pro {
			return c.reject(res, logger, common.ErrTierLocked)
		}
	}

	now := c.cal.Now()
	today := c.cal.DateOf(now)

	existing, err := c.store.CompletionsOn(ctx, userID, today)
	if err != nil {
		logger.WithError(err).Warn("Предпроверка лимита не удалась, решает хранилище")
	} else {
		res.Remaining = remaining(len(existing))
		if len(existing) >= DailyLimit {
			return c.reject(res, logger, common.ErrDailyLimitExceeded)
		}
		for _, e := range existing {
			if e.BoostID == b.ID {
				return c.reject(res, logger, common.ErrAlreadyCompleted)
			}
		}
	}

	res.State = StateRecording
	rec, err := c.store.Record(ctx, CompletedBoost{
		ID:            uuid.New(),
		UserID:        userID,
		BoostID:       b.ID,
		Category:      b.Category,
		CompletedAt:   now.UTC(),
		CompletedDate: today,
		PointsEarned:  b.Points,
	}, func(activeDates []time.Time) (int, int) {
		return streak.AfterCompletion(activeDates, today)
	})
	if err != nil {
		if !common.IsRejection(err) && !errors.Is(err, common.ErrPersistenceFailure) {
			err = fmt.Errorf("%w: %v", common.ErrPersistenceFailure, err)
		}
		if errors.Is(err, common.ErrDailyLimitExceeded) {
			res.Remaining = 0
		}
		return c.reject(res, logger, err)
	}

	res.State = StateCompleted
	res.Completion = &rec.Completion
	res.PointsEarned = rec.Completion.PointsEarned
	res.StreakBonus = rec.StreakBonus
	res.Streak = rec.Streak
	res.Remaining = remaining(rec.DayCount)

	logger.WithFields(log.Fields{
		"state":         res.State,
		"points_earned": res.PointsEarned,
		"streak":        res.Streak,
		"streak_bonus":  res.StreakBonus,
	}).Info("Буст засчитан")

	if c.bus != nil {
		c.bus.Publish(ctx, events.BoostCompleted{
			UserID:       userID,
			BoostID:      b.ID,
			Category:     string(b.Category),
			PointsEarned: res.PointsEarned,
			StreakBonus:  res.StreakBonus,
			Streak:       res.Streak,
			CompletedAt:  rec.Completion.CompletedAt,
		})
	}
	return res, nil
}

func (c *Coordinator) isPro(ctx context.Context, userID int64) (bool, error) {
	if c.plans == nil {
		return false, nil
	}
	return c.plans.IsPro(ctx, userID)
}

func (c *Coordinator) reject(res *Result, logger *log.Entry, err error) (*Result, error) {
	res.State = StateRejected
	reason := RejectionReason(err)
	entry := logger.WithFields(log.Fields{"state": res.State, "reason": reason})
	if common.IsRejection(err) {
		entry.Info("Буст отклонён")
	} else {
		entry.WithError(err).Warn("Буст не засчитан")
	}
	for _, obs := range c.observers {
		obs.BoostRejected(reason)
	}
	return res, err
}

// RejectionReason — короткий код причины отказа для логов и метрик.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, common.ErrUnknownBoost):
		return "unknown_boost"
	case errors.Is(err, common.ErrTierLocked):
		return "tier_locked"
	case errors.Is(err, common.ErrDailyLimitExceeded):
		return "daily_limit"
	case errors.Is(err, common.ErrAlreadyCompleted):
		return "already_completed"
	case errors.Is(err, common.ErrDataUnavailable):
		return "data_unavailable"
	default:
		return "persistence"
	}
}

func remaining(done int) int {
	if done >= DailyLimit {
		return 0
	}
	return DailyLimit - done
}
