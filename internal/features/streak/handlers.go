// Package streak — handlers.go обрабатывает команду !огонек.
// Показывает текущую серию, статус сегодняшнего дня и ближайший бонус.
package streak

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
)

// Handler обрабатывает команды стрик-системы.
type Handler struct {
	service *Service
	msg     common.Messenger
}

// NewHandler создаёт новый обработчик стрик-команд.
func NewHandler(service *Service, msg common.Messenger) *Handler {
	return &Handler{service: service, msg: msg}
}

// HandleStreak обрабатывает команду !огонек.
//
// Формат ответа:
//
//	🔥 Твой огонек
//	Серия: 0 дней
//	Сегодня: ещё не засчитан
//	Можно продлить: 2 дня, выполни буст сегодня
//	До бонуса +5 FP: 1 день
func (h *Handler) HandleStreak(ctx context.Context, chatID int64, userID int64) {
	st, err := h.service.GetState(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения серии")
		h.sendMessage(ctx, chatID, "❌ Не удалось получить серию, попробуй ещё раз чуть позже")
		return
	}
	h.sendMessage(ctx, chatID, FormatState(st))
}

// FormatState формирует текст состояния серии.
func FormatState(st State) string {
	var sb strings.Builder
	sb.WriteString("🔥 Твой огонек\n\n")
	sb.WriteString(fmt.Sprintf("Серия: %d %s\n", st.Current, common.PluralizeDays(st.Current)))

	if st.ActiveToday {
		sb.WriteString("Сегодня: ✅ засчитан\n")
	} else {
		sb.WriteString("Сегодня: ещё не засчитан\n")
	}
	if st.AtRisk() {
		sb.WriteString(fmt.Sprintf("Можно продлить: %d %s, выполни буст сегодня\n",
			st.Carried, common.PluralizeDays(st.Carried)))
	}

	if st.Next != nil {
		sb.WriteString(fmt.Sprintf("До бонуса +%d FP: %d %s",
			st.Next.Bonus, st.DaysToNext, common.PluralizeDays(st.DaysToNext)))
	} else {
		sb.WriteString("Все бонусы серии получены 🚀")
	}
	return sb.String()
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := h.msg.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
