// Package telegram delivers chat messages to the router over the
// Telegram long-poll API.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gastobot/internal/bot"

	tele "gopkg.in/telebot.v3"
)

// Bot wraps a telebot instance wired to the message router.
type Bot struct {
	bot    *tele.Bot
	router *bot.Router
}

// New builds the Telegram adapter. Every text update goes through the
// router; an empty router reply means no message is sent back.
func New(token string, router *bot.Router) (*Bot, error) {
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	adapter := &Bot{bot: b, router: router}
	b.Handle(tele.OnText, adapter.onText)
	return adapter, nil
}

func (b *Bot) onText(c tele.Context) error {
	ctx := context.Background()
	reply := b.router.Handle(ctx, c.Text())
	if reply == "" {
		return nil
	}
	return c.Reply(reply, tele.ModeMarkdown)
}

// Run starts long polling and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		b.bot.Stop()
	}()

	slog.InfoContext(ctx, "Telegram bot polling started")
	b.bot.Start()
	slog.InfoContext(ctx, "Telegram bot stopped")
	return nil
}
