// Package economy — handlers.go обрабатывает команду !fp (баланс и история).
package economy

import (
	"context"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service
	msg     common.Messenger
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, msg common.Messenger) *Handler {
	return &Handler{service: service, msg: msg}
}

// HandleBalance обрабатывает !fp.
//
// Формат ответа:
//
//	⛽ Баланс: 150 FP
//	Всего заработано: 150 FP
//
//	📋 Последние 2:
//	1. 14.10.2026 09:00 | +5 FP | Серия 3 дня
//	2. 14.10.2026 09:00 | +1 FP | Буст sleep-101
func (h *Handler) HandleBalance(ctx context.Context, chatID int64, userID int64) {
	balance, err := h.service.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения баланса")
		h.sendMessage(ctx, chatID, "❌ Ошибка получения баланса")
		return
	}

	history, err := h.service.History(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Ошибка получения транзакций")
	}

	h.sendMessage(ctx, chatID, h.service.FormatHistory(balance, history))
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := h.msg.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
