// Package bot содержит главный модуль бота: приём апдейтов, фильтрацию
// и маршрутизацию команд к обработчикам фич.
package bot

import (
	"context"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/bot/filters"
	"healthrocket.app/rocket-bot/internal/bot/middleware"
	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/config"
	"healthrocket.app/rocket-bot/internal/features/admin"
	"healthrocket.app/rocket-bot/internal/features/boosts"
	"healthrocket.app/rocket-bot/internal/features/economy"
	"healthrocket.app/rocket-bot/internal/features/members"
	"healthrocket.app/rocket-bot/internal/features/streak"
)

// Handlers — обработчики фич, между которыми бот распределяет команды.
type Handlers struct {
	Members *members.Handler
	Boosts  *boosts.Handler
	Streak  *streak.Handler
	Economy *economy.Handler
	Admin   *admin.Handler
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *telego.Bot
	cfg *config.Config
	msg common.Messenger

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService *members.Service
	handlers      Handlers

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт бота со всеми зависимостями.
func New(
	api *telego.Bot,
	cfg *config.Config,
	msg common.Messenger,
	memberService *members.Service,
	handlers Handlers,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:           api,
		cfg:           cfg,
		msg:           msg,
		chatFilter:    chatFilter,
		rateLimiter:   middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService: memberService,
		handlers:      handlers,
		parser:        NewCommandParser(),
		inflight:      make(chan struct{}, maxInFlight),
	}
}

// Start запускает long polling и блокируется до отмены ctx.
func (b *Bot) Start(ctx context.Context) error {
	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: b.cfg.BotUpdateTimeoutSeconds,
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.drain()
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.drain()
				return nil
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd telego.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// drain ждёт завершения обработчиков, которые уже работают.
func (b *Bot) drain() {
	for i := 0; i < cap(b.inflight); i++ {
		b.inflight <- struct{}{}
	}
	b.rateLimiter.Close()
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverUpdate(update)

	message := update.Message
	if message == nil {
		return
	}

	// Вступление в чат сообщества регистрирует участников
	if len(message.NewChatMembers) > 0 {
		if b.chatFilter.IsCommunityChat(message.Chat.ID) {
			b.handlers.Members.HandleNewChatMembers(ctx, message.NewChatMembers)
		}
		return
	}

	if message.Text == "" {
		return
	}

	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	if !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID
	private := message.Chat.Type == telego.ChatTypePrivate

	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.Username, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// В личке сначала проверяем, не ждём ли мы пароль
	if private && b.handlers.Admin.HandlePendingInput(ctx, chatID, userID, message.Text) {
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}
	log.WithFields(log.Fields{
		"cmd":     cmd,
		"args":    args,
		"user_id": userID,
	}).Debug("parsed command")

	b.routeCommand(ctx, chatID, userID, private, cmd, args)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, private bool, cmd string, args []string) {
	if adminCommands[cmd] || cmd == cmdLogin || cmd == cmdLogout {
		// Пароль и админ-команды — только в личке
		if !private {
			return
		}
	}

	switch cmd {
	case cmdHelp:
		b.sendMessage(ctx, chatID, HelpText)

	case cmdBoosts:
		b.handlers.Boosts.HandleList(ctx, chatID, args)

	case cmdBoost:
		b.handlers.Boosts.HandleComplete(ctx, chatID, userID, args)

	case cmdToday:
		b.handlers.Boosts.HandleToday(ctx, chatID, userID)

	case cmdWeek:
		b.handlers.Boosts.HandleWeek(ctx, chatID, userID)

	case cmdStreak:
		b.handlers.Streak.HandleStreak(ctx, chatID, userID)

	case cmdFP:
		b.handlers.Economy.HandleBalance(ctx, chatID, userID)

	case cmdLogin:
		b.handlers.Admin.HandleLogin(ctx, chatID, userID)

	case cmdLogout:
		b.handlers.Admin.HandleLogout(ctx, chatID, userID)

	case cmdPro, cmdFree, cmdGive, cmdDay:
		b.handlers.Admin.HandleCommand(ctx, chatID, userID, cmd, args)
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := b.msg.Send(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
func (b *Bot) SendMessageToUser(userID int64, text string) {
	if _, err := b.msg.Send(context.Background(), userID, text); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить сообщение")
		return
	}
	log.WithField("user_id", userID).Debug("message sent")
}
