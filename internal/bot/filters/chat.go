// Package filters решает, какие апдейты бот вообще обрабатывает.
package filters

import (
	"context"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// BanChecker сообщает, заблокирован ли участник.
type BanChecker interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}

// ChatFilter пропускает личные сообщения и чат сообщества.
// Заблокированные участники отсекаются везде.
type ChatFilter struct {
	communityChatID int64
	bans            BanChecker
}

// NewChatFilter создаёт фильтр. communityChatID == 0 — только личка.
func NewChatFilter(communityChatID int64, bans BanChecker) *ChatFilter {
	return &ChatFilter{communityChatID: communityChatID, bans: bans}
}

// CheckAccess проверяет, нужно ли обрабатывать сообщение.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *telego.Message) bool {
	if message == nil {
		return false
	}
	if message.From == nil || message.From.IsBot {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Debug("skip: нет отправителя или отправитель бот")
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
		"user_id":   message.From.ID,
	})

	if !f.IsAllowedChat(message.Chat) {
		logger.Debug("deny: чат не обслуживается")
		return false
	}

	if f.bans != nil {
		banned, err := f.bans.IsBanned(ctx, message.From.ID)
		if err != nil {
			// БД недоступна: не наказываем пользователя за сбой
			logger.WithError(err).Warn("ban check failed (allowing)")
			return true
		}
		if banned {
			logger.Info("deny: участник заблокирован")
			return false
		}
	}
	return true
}

// IsAllowedChat — личка или чат сообщества.
func (f *ChatFilter) IsAllowedChat(chat telego.Chat) bool {
	if chat.Type == telego.ChatTypePrivate {
		return true
	}
	return f.communityChatID != 0 && chat.ID == f.communityChatID
}

// IsCommunityChat — апдейт пришёл из чата сообщества.
func (f *ChatFilter) IsCommunityChat(chatID int64) bool {
	return f.communityChatID != 0 && chatID == f.communityChatID
}
