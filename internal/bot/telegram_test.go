package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sent   []*telego.SendMessageParams
	edited []*telego.EditMessageTextParams
	err    error
}

func (f *fakeAPI) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &telego.Message{MessageID: 100 + len(f.sent)}, nil
}

func (f *fakeAPI) EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.edited = append(f.edited, params)
	return &telego.Message{MessageID: params.MessageID}, nil
}

func TestMessenger_SendAndEdit(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api)

	id, err := m.Send(context.Background(), 42, "⏳")
	require.NoError(t, err)
	assert.Equal(t, 101, id)
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(42), api.sent[0].ChatID.ID)
	assert.Equal(t, "⏳", api.sent[0].Text)

	require.NoError(t, m.Edit(context.Background(), 42, id, "✅"))
	require.Len(t, api.edited, 1)
	assert.Equal(t, 101, api.edited[0].MessageID)
	assert.Equal(t, "✅", api.edited[0].Text)
}

func TestMessenger_Errors(t *testing.T) {
	api := &fakeAPI{err: errors.New("flood wait")}
	m := NewMessenger(api)

	_, err := m.Send(context.Background(), 1, "x")
	assert.Error(t, err)
	assert.Error(t, m.Edit(context.Background(), 1, 5, "x"))
}
