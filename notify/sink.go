package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// LogSink writes events to the application log.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Deliver(_ context.Context, ev Event) error {
	e := s.Logger.Info()
	if ev.Kind == KindError {
		e = s.Logger.Warn()
	}
	e.Str("kind", string(ev.Kind)).Msg(ev.Message)
	return nil
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink mirrors events into a Telegram chat.
type TelegramSink struct {
	bot    telegramSender
	chatID int64
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	if token == "" || chatID == 0 {
		return nil, errors.New("telegram token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &TelegramSink{bot: bot, chatID: chatID}, nil
}

func (t *TelegramSink) Deliver(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	icon := "✅"
	if ev.Kind == KindError {
		icon = "⚠️"
	}
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("%s <b>Nexletter</b>\n%s", icon, html.EscapeString(ev.Message)))
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.bot.Send(msg)
	return err
}
