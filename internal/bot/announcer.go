package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"healthrocket.app/rocket-bot/internal/common"
	"healthrocket.app/rocket-bot/internal/events"
	"healthrocket.app/rocket-bot/internal/features/members"
)

// MemberLookup находит участника по ID.
type MemberLookup interface {
	GetByUserID(ctx context.Context, userID int64) (*members.Member, error)
}

// Announcer пишет в чат сообщества, когда кто-то достиг порога серии.
type Announcer struct {
	chatID  int64
	members MemberLookup
	msg     common.Messenger
	timeout time.Duration
}

// NewAnnouncer создаёт анонсер для чата chatID.
func NewAnnouncer(chatID int64, lookup MemberLookup, msg common.Messenger) *Announcer {
	return &Announcer{chatID: chatID, members: lookup, msg: msg, timeout: 10 * time.Second}
}

// Attach подписывает анонсер на шину. Отправка идёт в отдельной горутине,
// чтобы не задерживать засчитывание буста.
func (a *Announcer) Attach(bus *events.Bus) (unsubscribe func()) {
	return bus.Subscribe("community-announcer", func(ctx context.Context, e events.BoostCompleted) {
		if e.StreakBonus <= 0 || a.chatID == 0 {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
			defer cancel()
			a.Announce(ctx, e)
		}()
	})
}

// Announce отправляет поздравление. Без бонуса ничего не делает.
func (a *Announcer) Announce(ctx context.Context, e events.BoostCompleted) {
	if e.StreakBonus <= 0 || a.chatID == 0 {
		return
	}

	name := fmt.Sprintf("Участник %d", e.UserID)
	if m, err := a.members.GetByUserID(ctx, e.UserID); err == nil && m != nil {
		name = m.DisplayName()
	}

	if _, err := a.msg.Send(ctx, a.chatID, AnnouncementText(name, e)); err != nil {
		log.WithError(err).WithField("user_id", e.UserID).Warn("Не удалось отправить анонс серии")
	}
}

// AnnouncementText — текст поздравления с порогом серии.
func AnnouncementText(name string, e events.BoostCompleted) string {
	return fmt.Sprintf("🔥 %s держит серию %d %s подряд и получает %s!",
		name, e.Streak, common.PluralizeDays(e.Streak), common.FormatPointsDelta(int64(e.StreakBonus)))
}
