// Package streak — service.go содержит бизнес-логику серий:
// расчёт «огонька» для пользователя и вечерние напоминания.
package streak

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
)

// Store — источник истории выполнений и отметок о напоминаниях.
type Store interface {
	ActiveDates(ctx context.Context, userID int64, since time.Time) ([]time.Time, error)
	UsersAtRisk(ctx context.Context, today time.Time) ([]int64, error)
	MarkReminded(ctx context.Context, userID int64, date time.Time) (bool, error)
}

// Service управляет стрик-системой.
type Service struct {
	repo              Store
	cal               *common.Calendar
	reminderThreshold int
}

// NewService создаёт новый сервис стриков.
// reminderThreshold — минимальная серия, ради которой стоит напоминать.
func NewService(repo Store, cal *common.Calendar, reminderThreshold int) *Service {
	return &Service{
		repo:              repo,
		cal:               cal,
		reminderThreshold: reminderThreshold,
	}
}

// GetState возвращает серию пользователя на текущий момент.
func (s *Service) GetState(ctx context.Context, userID int64) (State, error) {
	today := s.cal.Today()
	dates, err := s.repo.ActiveDates(ctx, userID, today.AddDate(0, 0, -LookbackDays))
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", common.ErrDataUnavailable, err)
	}
	return Calculate(dates, today), nil
}

// SendReminders напоминает тем, у кого серия >= порога и сегодня ещё ничего
// не выполнено. Каждому — не больше одного напоминания в день.
// Запускается кроном вечером по опорному поясу.
func (s *Service) SendReminders(ctx context.Context, sendFunc func(userID int64, text string)) error {
	today := s.cal.Today()

	candidates, err := s.repo.UsersAtRisk(ctx, today)
	if err != nil {
		return err
	}

	sent := 0
	for _, userID := range candidates {
		st, err := s.GetState(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось посчитать серию для напоминания")
			continue
		}
		if !st.AtRisk() || st.Carried < s.reminderThreshold {
			continue
		}

		// Пометку ставим до отправки: два инстанса не напомнят дважды
		marked, err := s.repo.MarkReminded(ctx, userID, today)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка записи напоминания")
			continue
		}
		if !marked {
			continue
		}

		sendFunc(userID, ReminderText(st))
		sent++
	}

	log.WithFields(log.Fields{
		"candidates": len(candidates),
		"sent":       sent,
	}).Info("Напоминания о серии разосланы")

	return nil
}

// ReminderText формирует текст напоминания о серии под угрозой.
func ReminderText(st State) string {
	text := fmt.Sprintf("⚠️ Твой огонек горит %d %s! Выполни хотя бы один буст до полуночи, чтобы не потерять серию.",
		st.Carried, common.PluralizeDays(st.Carried))
	if st.Next != nil && st.DaysToNext == 1 {
		text += fmt.Sprintf(" Сегодняшний буст даст бонус +%d FP.", st.Next.Bonus)
	}
	return text
}
