// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// LogMessage логирует входящее сообщение.
// Записывает: user_id, chat_id, username, текст (первые 50 символов).
func LogMessage(message *telego.Message) {
	if message == nil || message.From == nil {
		return
	}

	log.WithFields(log.Fields{
		"user_id":   message.From.ID,
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"username":  message.From.Username,
		"text":      truncate(message.Text, 50),
	}).Debug("Входящее сообщение")
}

// truncate обрезает текст до n символов (рун) и добавляет многоточие.
func truncate(s string, n int) string {
	text := []rune(s)
	if len(text) <= n {
		return s
	}
	return string(text[:n]) + "..."
}
