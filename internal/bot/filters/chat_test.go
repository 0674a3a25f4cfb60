package filters

import (
	"context"
	"errors"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
)

type banStub struct {
	banned map[int64]bool
	err    error
}

func (b banStub) IsBanned(ctx context.Context, userID int64) (bool, error) {
	return b.banned[userID], b.err
}

func message(chatID int64, chatType string, userID int64) *telego.Message {
	return &telego.Message{
		Chat: telego.Chat{ID: chatID, Type: chatType},
		From: &telego.User{ID: userID, FirstName: "Ann"},
		Text: "!сегодня",
	}
}

func TestCheckAccess(t *testing.T) {
	ctx := context.Background()
	f := NewChatFilter(-100, banStub{banned: map[int64]bool{13: true}})

	assert.True(t, f.CheckAccess(ctx, message(7, telego.ChatTypePrivate, 7)))
	assert.True(t, f.CheckAccess(ctx, message(-100, telego.ChatTypeSupergroup, 7)))
	assert.False(t, f.CheckAccess(ctx, message(-200, telego.ChatTypeSupergroup, 7)))
	assert.False(t, f.CheckAccess(ctx, message(13, telego.ChatTypePrivate, 13)))
	assert.False(t, f.CheckAccess(ctx, nil))

	bot := message(7, telego.ChatTypePrivate, 7)
	bot.From.IsBot = true
	assert.False(t, f.CheckAccess(ctx, bot))

	noSender := message(-100, telego.ChatTypeSupergroup, 0)
	noSender.From = nil
	assert.False(t, f.CheckAccess(ctx, noSender))
}

func TestCheckAccess_NoCommunityChat(t *testing.T) {
	f := NewChatFilter(0, nil)

	assert.True(t, f.CheckAccess(context.Background(), message(7, telego.ChatTypePrivate, 7)))
	assert.False(t, f.CheckAccess(context.Background(), message(0, telego.ChatTypeGroup, 7)))
	assert.False(t, f.IsCommunityChat(0))
}

func TestCheckAccess_BanLookupFailureAllows(t *testing.T) {
	f := NewChatFilter(0, banStub{err: errors.New("db down")})

	assert.True(t, f.CheckAccess(context.Background(), message(7, telego.ChatTypePrivate, 7)))
}
