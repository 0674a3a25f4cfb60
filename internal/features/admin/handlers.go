// Package admin — handlers.go обрабатывает админ-команды в личных сообщениях.
// Поток: !логин → пароль следующим сообщением → команды до истечения сессии.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/features/boosts"
	"healthrocket.app/rocket-bot/internal/features/economy"
	"healthrocket.app/rocket-bot/internal/features/members"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service        *Service
	memberService  *members.Service
	economyService *economy.Service
	daily          *boosts.DailyTracker
	catalog        *boosts.Catalog
	cal            *common.Calendar
	msg            common.Messenger
}

// NewHandler создаёт обработчик админ-команд.
func NewHandler(
	service *Service,
	memberService *members.Service,
	economyService *economy.Service,
	daily *boosts.DailyTracker,
	catalog *boosts.Catalog,
	cal *common.Calendar,
	msg common.Messenger,
) *Handler {
	return &Handler{
		service:        service,
		memberService:  memberService,
		economyService: economyService,
		daily:          daily,
		catalog:        catalog,
		cal:            cal,
		msg:            msg,
	}
}

// HandlePendingInput перехватывает сообщение, если от пользователя ждём пароль.
// Возвращает true, если сообщение обработано.
func (h *Handler) HandlePendingInput(ctx context.Context, chatID int64, userID int64, text string) bool {
	state := h.service.GetState(userID)
	if state == nil || state.State != StateAwaitingPassword {
		return false
	}
	h.service.ClearState(userID)

	if err := h.service.VerifyPassword(ctx, userID, strings.TrimSpace(text)); err != nil {
		switch {
		case errors.Is(err, common.ErrWrongPassword), errors.Is(err, common.ErrTooManyAttempts), errors.Is(err, common.ErrNotAdmin):
			h.sendMessage(ctx, chatID, "❌ "+err.Error())
		default:
			log.WithError(err).Error("Ошибка входа администратора")
			h.sendMessage(ctx, chatID, "❌ Ошибка входа, попробуйте позже")
		}
		return true
	}

	h.sendMessage(ctx, chatID, "✅ Аутентификация успешна! Команды: !pro, !free, !give, !day, !logout")
	return true
}

// HandleLogin обрабатывает !логин — просит пароль следующим сообщением.
func (h *Handler) HandleLogin(ctx context.Context, chatID int64, userID int64) {
	if !h.service.IsAdmin(userID) {
		h.sendMessage(ctx, chatID, "❌ "+common.ErrNotAdmin.Error())
		return
	}
	h.service.SetState(userID, StateAwaitingPassword)
	h.sendMessage(ctx, chatID, "🔐 Введите пароль администратора:")
}

// HandleLogout обрабатывает !logout.
func (h *Handler) HandleLogout(ctx context.Context, chatID int64, userID int64) {
	if err := h.service.Logout(ctx, userID); err != nil {
		log.WithError(err).Error("Ошибка выхода администратора")
	}
	h.sendMessage(ctx, chatID, "👋 Сессия закрыта")
}

// HandleCommand выполняет админ-команду.
//
//	!pro @user          — выдать Pro
//	!free @user         — вернуть free
//	!give @user 50 [за что] — начислить FP
//	!day @user          — бусты участника за сегодня
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, userID int64, command string, args []string) {
	if err := h.service.Authorize(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotAdmin) || errors.Is(err, common.ErrSessionExpired) {
			h.sendMessage(ctx, chatID, "❌ "+err.Error()+". Вход: !логин")
		} else {
			log.WithError(err).Error("Ошибка проверки сессии")
			h.sendMessage(ctx, chatID, "❌ Ошибка проверки сессии")
		}
		return
	}

	if len(args) == 0 {
		h.sendMessage(ctx, chatID, "❌ Укажите пользователя: @username или ID")
		return
	}
	target, err := h.resolve(ctx, args[0])
	if err != nil {
		h.sendMessage(ctx, chatID, "❌ Пользователь не найден")
		return
	}

	logger := log.WithFields(log.Fields{"admin_id": userID, "target_id": target.UserID, "command": command})

	switch command {
	case "pro", "free":
		plan := members.PlanPro
		if command == "free" {
			plan = members.PlanFree
		}
		if err := h.memberService.SetPlan(ctx, target.UserID, plan); err != nil {
			logger.WithError(err).Error("Ошибка смены плана")
			h.sendMessage(ctx, chatID, "❌ Не удалось сменить план")
			return
		}
		h.sendMessage(ctx, chatID, fmt.Sprintf("✅ %s теперь на плане %s", target.DisplayName(), plan))

	case "give":
		if len(args) < 2 {
			h.sendMessage(ctx, chatID, "❌ Формат: !give @username сумма [причина]")
			return
		}
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			h.sendMessage(ctx, chatID, "❌ Сумма должна быть числом")
			return
		}
		reason := strings.Join(args[2:], " ")
		if err := h.economyService.Grant(ctx, userID, target.UserID, amount, reason); err != nil {
			if errors.Is(err, common.ErrInvalidAmount) {
				h.sendMessage(ctx, chatID, "❌ "+err.Error())
				return
			}
			logger.WithError(err).Error("Ошибка начисления FP")
			h.sendMessage(ctx, chatID, "❌ Не удалось начислить FP")
			return
		}
		h.sendMessage(ctx, chatID, fmt.Sprintf("✅ %s начислено %s", target.DisplayName(), common.FormatPointsDelta(amount)))

	case "day":
		sel, err := h.daily.Today(ctx, target.UserID, h.cal.Now())
		if err != nil {
			logger.WithError(err).Error("Ошибка чтения дня участника")
			h.sendMessage(ctx, chatID, "❌ Не удалось загрузить день участника")
			return
		}
		h.sendMessage(ctx, chatID, fmt.Sprintf("👤 %s (%s)\n%s", target.DisplayName(), target.Plan, boosts.FormatToday(sel, h.catalog)))

	default:
		h.sendMessage(ctx, chatID, "❌ Неизвестная команда")
	}
}

// resolve находит участника по @username или числовому ID.
func (h *Handler) resolve(ctx context.Context, ref string) (*members.Member, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return h.memberService.GetByUserID(ctx, id)
	}
	return h.memberService.GetByUsername(ctx, ref)
}

func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	if _, err := h.msg.Send(ctx, chatID, text); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
