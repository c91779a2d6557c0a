package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cafetunes/publisher/internal/publisher/logo"
	"github.com/cafetunes/publisher/internal/publisher/models"
	"github.com/cafetunes/publisher/internal/publisher/session"
)

const (
	msgStart = "Hi! I publish the audio you send me into your channels, " +
		"branded with your name, caption and logo.\n" +
		"Add a channel with /addchannel, then just send a track. See /help."

	msgHelp = "Commands:\n" +
		"/addchannel <@channel or -100...> [name] — register a channel\n" +
		"/listchannels — your channels\n" +
		"/setdefault <id> — pick the default channel\n" +
		"/setname <id> <name> — set the display name\n" +
		"/setcaption <id> <text> — set the caption\n" +
		"/setlogo <id> — then send a photo to use as the logo\n" +
		"/default — show the current default channel\n" +
		"/history — what I have published for you\n\n" +
		"With at least one channel configured, just send an audio file. " +
		"If you have several channels I will ask which one."

	msgUsageAdd        = "Usage: /addchannel <@channel or -100...> [name]"
	msgUsageDefault    = "Usage: /setdefault <id>"
	msgUsageName       = "Usage: /setname <id> <name>"
	msgUsageCaption    = "Usage: /setcaption <id> <text>"
	msgUsageLogo       = "Usage: /setlogo <id> — then send a photo."
	msgBadID           = "That id does not look right."
	msgChannelMissing  = "Channel not found, or it is not yours."
	msgNoChannels      = "You have no channels yet. Start with /addchannel."
	msgAddFirst        = "Add at least one channel first: /addchannel"
	msgSendPhotoNow    = "Now send me a photo to use as the logo."
	msgLogoHint        = "To set a logo, use /setlogo <id> first."
	msgLogoSaved       = "✅ Logo saved and will be applied to that channel."
	msgBadImage        = "That image could not be processed, try a different one."
	msgDefaultSet      = "✅ Default channel set."
	msgNameSet         = "✅ Channel name updated."
	msgCaptionSet      = "✅ Caption updated."
	msgNoDefault       = "No default channel set. Pick one with /setdefault <id>."
	msgNoHistory       = "Nothing published yet."
	msgNoAudio         = "I could not find an audio file in that message."
	msgPickChannel     = "Which channel should this go to?"
	msgUploadLost      = "I lost that file — please send it again."
	msgInvalidChoice   = "Invalid selection."
	msgSendingToTarget = "Sending to the channel…"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	owner := msg.From.ID
	chat := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.reply(chat, msgStart)
	case "help":
		b.reply(chat, msgHelp)
	case "addchannel":
		b.cmdAddChannel(ctx, chat, owner, args)
	case "listchannels":
		b.cmdListChannels(ctx, chat, owner)
	case "setdefault":
		b.cmdSetDefault(ctx, chat, owner, args)
	case "setname":
		b.cmdSetName(ctx, chat, owner, args)
	case "setcaption":
		b.cmdSetCaption(ctx, chat, owner, args)
	case "setlogo":
		b.cmdSetLogo(ctx, chat, owner, args)
	case "default":
		b.cmdDefault(ctx, chat, owner)
	case "history":
		b.cmdHistory(ctx, chat, owner)
	}
}

func (b *Bot) cmdAddChannel(ctx context.Context, chat, owner int64, args []string) {
	if len(args) == 0 {
		b.reply(chat, msgUsageAdd)
		return
	}
	name := strings.Join(args[1:], " ")

	ch, err := b.svc.AddChannel(ctx, owner, args[0], name)
	if err != nil {
		b.replyError(chat, err)
		return
	}
	b.reply(chat, fmt.Sprintf("✅ Channel saved (id=%d). Upload a logo with /setlogo %d.", ch.ID, ch.ID))
}

func (b *Bot) cmdListChannels(ctx context.Context, chat, owner int64) {
	channels, err := b.svc.Channels(ctx, owner)
	if err != nil {
		b.replyError(chat, err)
		return
	}
	if len(channels) == 0 {
		b.reply(chat, msgNoChannels)
		return
	}

	lines := make([]string, 0, len(channels))
	for _, ch := range channels {
		lines = append(lines, channelLine(ch))
	}
	b.reply(chat, strings.Join(lines, "\n"))
}

func (b *Bot) cmdSetDefault(ctx context.Context, chat, owner int64, args []string) {
	if len(args) == 0 {
		b.reply(chat, msgUsageDefault)
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(chat, msgBadID)
		return
	}
	if err := b.svc.SetDefault(ctx, owner, id); err != nil {
		b.replyError(chat, err)
		return
	}
	b.reply(chat, msgDefaultSet)
}

func (b *Bot) cmdSetName(ctx context.Context, chat, owner int64, args []string) {
	if len(args) < 2 {
		b.reply(chat, msgUsageName)
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(chat, msgBadID)
		return
	}
	if err := b.svc.Rename(ctx, owner, id, strings.Join(args[1:], " ")); err != nil {
		b.replyError(chat, err)
		return
	}
	b.reply(chat, msgNameSet)
}

func (b *Bot) cmdSetCaption(ctx context.Context, chat, owner int64, args []string) {
	if len(args) < 2 {
		b.reply(chat, msgUsageCaption)
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(chat, msgBadID)
		return
	}
	if err := b.svc.SetCaption(ctx, owner, id, strings.Join(args[1:], " ")); err != nil {
		b.replyError(chat, err)
		return
	}
	b.reply(chat, msgCaptionSet)
}

func (b *Bot) cmdSetLogo(ctx context.Context, chat, owner int64, args []string) {
	if len(args) == 0 {
		b.reply(chat, msgUsageLogo)
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(chat, msgBadID)
		return
	}
	// Ownership checked up front so the user is not told to send a photo
	// for a channel that will later refuse the logo.
	if _, err := b.svc.ChannelOf(ctx, owner, id); err != nil {
		b.replyError(chat, err)
		return
	}
	b.sessions.ArmLogo(owner, id)
	b.reply(chat, msgSendPhotoNow)
}

func (b *Bot) cmdDefault(ctx context.Context, chat, owner int64) {
	ch, err := b.svc.DefaultChannel(ctx, owner)
	switch {
	case errors.Is(err, models.ErrNotFound):
		b.reply(chat, msgNoDefault)
	case err != nil:
		b.replyError(chat, err)
	default:
		b.reply(chat, channelLine(*ch))
	}
}

func (b *Bot) cmdHistory(ctx context.Context, chat, owner int64) {
	songs, err := b.svc.History(ctx, owner)
	if err != nil {
		b.replyError(chat, err)
		return
	}
	if len(songs) == 0 {
		b.reply(chat, msgNoHistory)
		return
	}

	lines := make([]string, 0, len(songs))
	for _, s := range songs {
		lines = append(lines, historyLine(s))
	}
	b.reply(chat, strings.Join(lines, "\n"))
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	owner := msg.From.ID
	chat := msg.Chat.ID

	channelID, ok := b.sessions.TakeLogoTarget(owner)
	if !ok {
		b.reply(chat, msgLogoHint)
		return
	}

	// Telegram orders photo sizes small to large; take the largest.
	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.download(ctx, photo.FileID)
	if err != nil {
		b.reply(chat, "Could not download the photo:\n"+err.Error())
		return
	}

	jpeg, err := logo.Normalize(data)
	if err != nil {
		b.log.Warn().Err(err).Int64("owner", owner).Msg("logo normalize")
		b.reply(chat, msgBadImage)
		return
	}

	if err := b.svc.SetLogo(ctx, owner, channelID, jpeg); err != nil {
		b.replyError(chat, err)
		return
	}
	b.reply(chat, msgLogoSaved)
}

func (b *Bot) handleAudio(ctx context.Context, msg *tgbotapi.Message) {
	owner := msg.From.ID
	chat := msg.Chat.ID

	fileID, title, fileName, ok := audioMeta(msg)
	if !ok {
		b.reply(chat, msgNoAudio)
		return
	}

	data, err := b.download(ctx, fileID)
	if err != nil {
		b.reply(chat, "Could not download the file:\n"+err.Error())
		return
	}
	up := session.Upload{Data: data, Title: title, FileName: fileName}

	channels, err := b.svc.Channels(ctx, owner)
	if err != nil {
		b.replyError(chat, err)
		return
	}

	switch len(channels) {
	case 0:
		b.reply(chat, msgAddFirst)

	case 1:
		b.relay(ctx, chat, owner, channels[0].ID, up)

	default:
		// Park the upload and let an inline keyboard decide the target.
		b.sessions.PutUpload(owner, up)
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels))
		for _, ch := range channels {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(channelLabel(ch), callbackData(ch.ID)),
			))
		}
		prompt := tgbotapi.NewMessage(chat, msgPickChannel)
		prompt.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
		if _, err := b.api.Send(prompt); err != nil {
			b.log.Error().Err(err).Msg("send channel keyboard")
		}
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.log.Error().Err(err).Msg("ack callback")
	}

	channelID, err := parseCallbackData(q.Data)
	if err != nil {
		b.edit(q, msgInvalidChoice)
		return
	}

	owner := q.From.ID
	chat := owner // private chat id equals the user id
	if q.Message != nil {
		chat = q.Message.Chat.ID
	}

	up, ok := b.sessions.TakeUpload(owner)
	if !ok {
		b.edit(q, msgUploadLost)
		return
	}

	b.edit(q, msgSendingToTarget)
	b.relay(ctx, chat, owner, channelID, up)
}

func (b *Bot) replyError(chat int64, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrNotOwner):
		b.reply(chat, msgChannelMissing)
	case errors.Is(err, models.ErrInvalidArgument):
		b.reply(chat, msgBadID)
	default:
		b.reply(chat, "Something went wrong:\n"+err.Error())
	}
}

func channelLine(ch models.Channel) string {
	return fmt.Sprintf("#%d — %s | %s | default=%t", ch.ID, ch.ChannelID, ch.Name, ch.IsDefault)
}

func historyLine(s models.Song) string {
	return fmt.Sprintf("%s — %s (channel #%d)", s.PublishedAt.Format("2006-01-02 15:04"), s.Title, s.ChannelID)
}

func channelLabel(ch models.Channel) string {
	if ch.Name != "" {
		return fmt.Sprintf("%s (%s)", ch.ChannelID, ch.Name)
	}
	return ch.ChannelID
}

func callbackData(channelID int64) string {
	return "post:" + strconv.FormatInt(channelID, 10)
}

func parseCallbackData(data string) (int64, error) {
	raw, ok := strings.CutPrefix(data, "post:")
	if !ok {
		return 0, fmt.Errorf("unexpected callback data %q", data)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("callback channel id: %w", err)
	}
	return id, nil
}

func hasAudio(msg *tgbotapi.Message) bool {
	_, _, _, ok := audioMeta(msg)
	return ok
}

// audioMeta mirrors what the platform gives us across the three shapes an
// audio file can arrive in: audio message, voice note, audio/* document.
func audioMeta(msg *tgbotapi.Message) (fileID, title, fileName string, ok bool) {
	switch {
	case msg.Audio != nil:
		fileName = firstNonEmpty(msg.Audio.FileName, msg.Audio.Title, "track")
		title = firstNonEmpty(msg.Audio.Title, fileName)
		return msg.Audio.FileID, title, fileName, true

	case msg.Voice != nil:
		return msg.Voice.FileID, "track", "track", true

	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "audio"):
		fileName = firstNonEmpty(msg.Document.FileName, "track")
		return msg.Document.FileID, fileName, fileName, true
	}
	return "", "", "", false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
