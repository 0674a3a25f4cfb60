// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: еженедельный сброс окна бустов
// в воскресенье 00:00 и вечерние напоминания о серии.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/features/boosts"
	"healthrocket.app/rocket-bot/internal/features/streak"
)

// WeeklyResetSpec — начало новой недели: воскресенье 00:00 опорного пояса.
const WeeklyResetSpec = "0 0 * * 0"

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron          *cron.Cron
	cal           *common.Calendar
	weekly        *boosts.WeeklyTracker
	streakService *streak.Service
	sendFunc      func(userID int64, text string)
	reminderSpec  string
}

// NewScheduler создаёт планировщик в часовом поясе календаря.
// reminderSpec == "" отключает напоминания.
func NewScheduler(
	cal *common.Calendar,
	weekly *boosts.WeeklyTracker,
	streakService *streak.Service,
	reminderSpec string,
	sendFunc func(userID int64, text string),
) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(cal.Location())),
		cal:           cal,
		weekly:        weekly,
		streakService: streakService,
		sendFunc:      sendFunc,
		reminderSpec:  reminderSpec,
	}
}

// Start регистрирует задачи и запускает cron.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(WeeklyResetSpec, func() { s.RunWeeklyReset() }); err != nil {
		return fmt.Errorf("cron %q: %w", WeeklyResetSpec, err)
	}

	if s.reminderSpec != "" && s.streakService != nil {
		if _, err := s.cron.AddFunc(s.reminderSpec, func() { s.RunReminders(ctx) }); err != nil {
			return fmt.Errorf("cron %q: %w", s.reminderSpec, err)
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"timezone":  s.cal.Location().String(),
		"reminders": s.reminderSpec,
	}).Info("Планировщик задач запущен")
	return nil
}

// RunWeeklyReset переводит трекер недели в новое окно.
// Повторный запуск в том же окне ничего не делает.
func (s *Scheduler) RunWeeklyReset() {
	if s.weekly.Rollover(s.cal.Now()) {
		log.Info("[CRON] Началась новая неделя бустов")
		return
	}
	log.Debug("[CRON] Окно недели не изменилось")
}

// RunReminders рассылает напоминания о серии.
func (s *Scheduler) RunReminders(ctx context.Context) {
	log.Debug("[CRON] Проверка напоминаний")
	if err := s.streakService.SendReminders(ctx, s.sendFunc); err != nil {
		log.WithError(err).Error("[CRON] Ошибка напоминаний")
	}
}

// Stop останавливает планировщик и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
