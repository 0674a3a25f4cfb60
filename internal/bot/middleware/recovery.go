package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// RecoverUpdate вызывается через defer в обработчике апдейта.
// Паника пишется в лог вместе с апдейтом, на котором она случилась;
// остальные апдейты продолжают обрабатываться.
func RecoverUpdate(update telego.Update) {
	r := recover()
	if r == nil {
		return
	}

	fields := log.Fields{
		"component": "panic_recovery",
		"update_id": update.UpdateID,
		"panic":     fmt.Sprintf("%v", r),
		"stack":     string(debug.Stack()),
	}
	if msg := update.Message; msg != nil {
		fields["chat_id"] = msg.Chat.ID
		if msg.From != nil {
			fields["user_id"] = msg.From.ID
		}
		fields["text"] = truncate(msg.Text, 50)
	}
	log.WithFields(fields).Error("ПАНИКА в обработчике апдейта — восстановлено")
}
