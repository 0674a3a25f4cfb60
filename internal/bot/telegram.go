package bot

import (
	"context"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// telegramAPI — часть telego.Bot, нужная для отправки сообщений.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
}

// Messenger отправляет сообщения через Bot API (реализует common.Messenger).
type Messenger struct {
	api telegramAPI
}

// NewMessenger оборачивает клиента telego.
func NewMessenger(api telegramAPI) *Messenger {
	return &Messenger{api: api}
}

// Send отправляет текст и возвращает ID сообщения.
func (m *Messenger) Send(ctx context.Context, chatID int64, text string) (int, error) {
	msg, err := m.api.SendMessage(ctx, tu.Message(tu.ID(chatID), text))
	if err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// Edit заменяет текст ранее отправленного сообщения.
func (m *Messenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := m.api.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
		Text:      text,
	})
	return err
}
