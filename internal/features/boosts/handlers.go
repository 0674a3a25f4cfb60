// Package boosts — handlers.go обрабатывает команды:
// !бусты (каталог), !буст <id> (выполнить), !сегодня, !неделя.
package boosts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
)

// Handler обрабатывает команды бустов.
type Handler struct {
	coordinator *Coordinator
	daily       *DailyTracker
	weekly      *WeeklyTracker
	catalog     *Catalog
	cal         *common.Calendar
	msg         common.Messenger
}

// NewHandler создаёт обработчик команд бустов.
func NewHandler(coordinator *Coordinator, daily *DailyTracker, weekly *WeeklyTracker, catalog *Catalog, cal *common.Calendar, msg common.Messenger) *Handler {
	return &Handler{
		coordinator: coordinator,
		daily:       daily,
		weekly:      weekly,
		catalog:     catalog,
		cal:         cal,
		msg:         msg,
	}
}

// HandleList обрабатывает !бусты [категория].
// Без аргумента показывает категории, с аргументом — бусты категории.
func (h *Handler) HandleList(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		var sb strings.Builder
		sb.WriteString("🚀 Категории бустов:\n\n")
		for _, cat := range h.catalog.Categories() {
			n := len(h.catalog.ByCategory(cat))
			sb.WriteString(fmt.Sprintf("• %s — %d %s\n", cat, n, common.PluralizeBoosts(n)))
		}
		sb.WriteString("\nСписок: !бусты <категория>\nВыполнить: !буст <id>")
		h.sendMessage(ctx, chatID, sb.String())
		return
	}

	cat, ok := ParseCategory(args[0])
	if !ok {
		h.sendMessage(ctx, chatID, "❌ Нет такой категории. Доступны: sleep, mindset, nutrition, exercise, biohacking")
		return
	}
	h.sendMessage(ctx, chatID, FormatCategory(cat, h.catalog.ByCategory(cat)))
}

// HandleComplete обрабатывает !буст <id>.
//
// Ответ двухфазный: сначала предварительное «⏳», затем это же сообщение
// редактируется в итог. Если отредактировать не вышло, итог уходит новым
// сообщением, так что «⏳» не остаётся последним словом.
func (h *Handler) HandleComplete(ctx context.Context, chatID int64, userID int64, args []string) {
	if len(args) == 0 {
		h.sendMessage(ctx, chatID, "❌ Формат: !буст <id>, например !буст sleep-101")
		return
	}

	pendingID, sendErr := h.msg.Send(ctx, chatID, fmt.Sprintf("⏳ Засчитываю %s…", args[0]))

	res, err := h.coordinator.Complete(ctx, userID, args[0])
	text := FormatResult(res, err)

	if sendErr != nil {
		log.WithError(sendErr).Warn("Не удалось отправить предварительный ответ")
		h.sendMessage(ctx, chatID, text)
		return
	}
	if err := h.msg.Edit(ctx, chatID, pendingID, text); err != nil {
		log.WithError(err).WithField("message_id", pendingID).Warn("Не удалось обновить ответ, отправляю заново")
		h.sendMessage(ctx, chatID, text)
	}
}

// HandleToday обрабатывает !сегодня.
func (h *Handler) HandleToday(ctx context.Context, chatID int64, userID int64) {
	sel, err := h.daily.Today(ctx, userID, h.cal.Now())
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения бустов за день")
		h.sendMessage(ctx, chatID, "❌ Не удалось загрузить бусты за сегодня, попробуй ещё раз")
		return
	}
	h.sendMessage(ctx, chatID, FormatToday(sel, h.catalog))
}

// HandleWeek обрабатывает !неделя.
func (h *Handler) HandleWeek(ctx context.Context, chatID int64, userID int64) {
	completions, win, err := h.weekly.Completions(ctx, userID, h.cal.Now())
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения бустов за неделю")
		h.sendMessage(ctx, chatID, "❌ Не удалось загрузить неделю, попробуй ещё раз")
		return
	}
	h.sendMessage(ctx, chatID, FormatWeek(win, completions))
}

// FormatCategory формирует список бустов категории.
func FormatCategory(cat Category, list []Boost) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 %s\n\n", cat))
	for _, b := range list {
		lock := ""
		if b.Tier > 1 {
			lock = " 🔒 Pro"
		}
		sb.WriteString(fmt.Sprintf("%s — %s (+%d FP, %s)%s\n", b.ID, b.Name, b.Points, b.EstimatedTime, lock))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatResult формирует итог выполнения или причину отказа.
func FormatResult(res *Result, err error) string {
	if err != nil {
		return FormatRejection(err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ %s засчитан: %s\n", res.Boost.Name, common.FormatPointsDelta(int64(res.PointsEarned))))
	if res.StreakBonus > 0 {
		sb.WriteString(fmt.Sprintf("🔥 Серия %d %s! Бонус %s\n",
			res.Streak, common.PluralizeDays(res.Streak), common.FormatPointsDelta(int64(res.StreakBonus))))
	} else if res.Streak > 0 {
		sb.WriteString(fmt.Sprintf("🔥 Серия: %d %s\n", res.Streak, common.PluralizeDays(res.Streak)))
	}
	if res.Remaining > 0 {
		sb.WriteString(fmt.Sprintf("Осталось на сегодня: %d", res.Remaining))
	} else {
		sb.WriteString("На сегодня всё, возвращайся завтра 🚀")
	}
	return sb.String()
}

// FormatRejection объясняет пользователю причину отказа.
func FormatRejection(err error) string {
	switch {
	case errors.Is(err, common.ErrUnknownBoost):
		return "❌ Такого буста нет. Посмотри список: !бусты"
	case errors.Is(err, common.ErrTierLocked):
		return "🔒 Бусты второго уровня доступны на Pro-плане"
	case errors.Is(err, common.ErrDailyLimitExceeded):
		return "⛔ Уже выполнено 3 буста за сегодня, новые слоты откроются в полночь"
	case errors.Is(err, common.ErrAlreadyCompleted):
		return "⛔ Этот буст сегодня уже выполнен, выбери другой"
	default:
		return "❌ Не удалось сохранить буст, ничего не начислено. Попробуй ещё раз"
	}
}

// FormatToday формирует сводку за день.
func FormatToday(sel DailySelection, catalog *Catalog) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Сегодня, %s\n\n", common.FormatDate(sel.Date)))
	if len(sel.Completed) == 0 {
		sb.WriteString("Пока ничего не выполнено\n")
	}
	for _, c := range sel.Completed {
		name := c.BoostID
		if b, ok := catalog.Lookup(c.BoostID); ok {
			name = b.Name
		}
		sb.WriteString(fmt.Sprintf("✅ %s (+%d FP)\n", name, c.PointsEarned))
	}
	sb.WriteString(fmt.Sprintf("\nFP за сегодня: %s\n", common.FormatPoints(int64(sel.PointsEarned()))))
	sb.WriteString(fmt.Sprintf("Свободно слотов: %d из %d", sel.Remaining, DailyLimit))
	return sb.String()
}

// FormatWeek формирует сводку за неделю.
func FormatWeek(win WeeklyWindow, completions []CompletedBoost) string {
	byCategory := make(map[Category]int)
	total := 0
	for _, c := range completions {
		byCategory[c.Category]++
		total += c.PointsEarned
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 Неделя с %s\n\n", common.FormatDate(win.StartDate)))
	sb.WriteString(fmt.Sprintf("Выполнено: %d %s, %s\n",
		len(completions), common.PluralizeBoosts(len(completions)), common.FormatPoints(int64(total))))
	for _, cat := range categoryOrder {
		if n := byCategory[cat]; n > 0 {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", cat, n))
		}
	}
	sb.WriteString(fmt.Sprintf("До сброса: %d %s", win.DaysUntilReset, common.PluralizeDays(win.DaysUntilReset)))
	return sb.String()
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := h.msg.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
