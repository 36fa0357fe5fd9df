package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramSink_Deliver(t *testing.T) {
	sender := &fakeSender{}
	sink := &TelegramSink{bot: sender, chatID: 42}

	require.NoError(t, sink.Deliver(t.Context(), Event{Kind: KindError, Message: "a <b> c"}))
	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "a &lt;b&gt; c")
}

func TestTelegramSink_Errors(t *testing.T) {
	sink := &TelegramSink{bot: &fakeSender{err: errors.New("forbidden")}, chatID: 1}
	assert.Error(t, sink.Deliver(t.Context(), Event{Kind: KindSuccess, Message: "hi"}))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.ErrorIs(t, sink.Deliver(ctx, Event{Message: "hi"}), context.Canceled)

	_, err := NewTelegramSink("", 0)
	assert.Error(t, err)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: zerolog.New(&buf)}
	require.NoError(t, sink.Deliver(t.Context(), Event{Kind: KindError, Message: "Could not copy to clipboard."}))
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "Could not copy to clipboard.")
}
