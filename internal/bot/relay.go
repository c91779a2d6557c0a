package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cafetunes/publisher/internal/metrics"
	"github.com/cafetunes/publisher/internal/publisher/session"
)

// relay re-uploads a parked audio file into the chosen channel with the
// channel's caption and logo attached, then appends the history row. Whatever
// the platform call fails with is reported to the owner as text; no retries.
func (b *Bot) relay(ctx context.Context, notifyChat, owner, channelID int64, up session.Upload) {
	ch, err := b.svc.ChannelOf(ctx, owner, channelID)
	if err != nil {
		b.replyError(notifyChat, err)
		return
	}

	audio := tgbotapi.NewAudio(0, tgbotapi.FileBytes{Name: up.FileName, Bytes: up.Data})
	chatID, username, err := chatTarget(ch.ChannelID)
	if err != nil {
		b.reply(notifyChat, "The stored channel target looks invalid:\n"+err.Error())
		return
	}
	audio.ChatID = chatID
	audio.ChannelUsername = username
	audio.Title = up.Title
	audio.Performer = ch.ChannelID
	audio.Caption = ch.Caption
	if len(ch.Logo) > 0 {
		audio.Thumb = tgbotapi.FileBytes{Name: "logo.jpg", Bytes: ch.Logo}
	}

	if _, err := b.api.Send(audio); err != nil {
		metrics.RelayFailures.Inc()
		b.log.Warn().Err(err).Str("channel", ch.ChannelID).Msg("relay failed")
		b.reply(notifyChat, "Sending to the channel failed:\n"+err.Error())
		return
	}

	if _, err := b.svc.RecordPublished(ctx, owner, ch.ID, up.Title, up.FileName); err != nil {
		// The track is already out; only the audit row is missing.
		b.log.Error().Err(err).Int64("channel_id", ch.ID).Msg("record song")
	}

	metrics.SongsPublished.Inc()
	b.reply(notifyChat, fmt.Sprintf("✅ Track published in %s.", ch.ChannelID))
}

// chatTarget maps the stored channel identifier onto the platform's
// addressing: "@name" stays a username, anything else must be a numeric
// chat id.
func chatTarget(channelID string) (int64, string, error) {
	if strings.HasPrefix(channelID, "@") {
		return 0, channelID, nil
	}
	id, err := strconv.ParseInt(channelID, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("channel target %q is neither @username nor a chat id", channelID)
	}
	return id, "", nil
}
