// Package bot is the Telegram-facing layer: it maps commands, photos, audio
// and inline-button callbacks onto the channel configuration service and the
// relay pipeline.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/cafetunes/publisher/internal/metrics"
	"github.com/cafetunes/publisher/internal/publisher/service"
	"github.com/cafetunes/publisher/internal/publisher/session"
)

// telegramAPI is the slice of tgbotapi.BotAPI the handlers need. Kept as an
// interface so tests can swap in a recording fake.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Bot struct {
	api      telegramAPI
	svc      *service.Service
	sessions *session.Sessions
	http     *http.Client
	log      zerolog.Logger
}

func New(api telegramAPI, svc *service.Service, logger zerolog.Logger) *Bot {
	return &Bot{
		api:      api,
		svc:      svc,
		sessions: session.New(),
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      logger.With().Str("component", "bot").Logger(),
	}
}

// Run consumes updates until the context is cancelled or the channel closes.
// One update at a time; the platform library handles the polling.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	b.log.Info().Msg("bot started")
	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("bot stopped")
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		metrics.UpdatesHandled.WithLabelValues("callback").Inc()
		b.handleCallback(ctx, upd.CallbackQuery)

	case upd.Message != nil:
		msg := upd.Message
		switch {
		case msg.IsCommand():
			metrics.UpdatesHandled.WithLabelValues("command").Inc()
			b.handleCommand(ctx, msg)
		case len(msg.Photo) > 0:
			metrics.UpdatesHandled.WithLabelValues("photo").Inc()
			b.handlePhoto(ctx, msg)
		case hasAudio(msg):
			metrics.UpdatesHandled.WithLabelValues("audio").Inc()
			b.handleAudio(ctx, msg)
		}
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("send reply")
	}
}

func (b *Bot) edit(q *tgbotapi.CallbackQuery, text string) {
	if q.Message == nil {
		return
	}
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(q.Message.Chat.ID, q.Message.MessageID, text)); err != nil {
		b.log.Error().Err(err).Msg("edit message")
	}
}

// download fetches a file's bytes from the platform into memory.
func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download body: %w", err)
	}
	return data, nil
}
