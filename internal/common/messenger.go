// Package common — messenger.go описывает минимальный интерфейс отправки
// сообщений, через который обработчики фич общаются с Telegram.
package common

import "context"

// Messenger отправляет и редактирует текстовые сообщения.
type Messenger interface {
	// Send отправляет сообщение и возвращает его ID.
	Send(ctx context.Context, chatID int64, text string) (int, error)
	// Edit заменяет текст ранее отправленного сообщения.
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
}
