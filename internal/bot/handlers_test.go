package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafetunes/publisher/internal/publisher/models"
	"github.com/cafetunes/publisher/internal/publisher/repository"
	"github.com/cafetunes/publisher/internal/publisher/service"
	"github.com/cafetunes/publisher/internal/publisher/session"
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	audioErr error
	fileURL  string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if _, ok := c.(tgbotapi.AudioConfig); ok && f.audioErr != nil {
		return tgbotapi.Message{}, f.audioErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileURL != "" {
		return f.fileURL, nil
	}
	return "", errors.New("no files in tests")
}

func (f *fakeAPI) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	t.Fatal("no message was sent")
	return tgbotapi.MessageConfig{}
}

func (f *fakeAPI) lastMessageText(t *testing.T) string {
	t.Helper()
	return f.lastMessage(t).Text
}

func (f *fakeAPI) lastEditText(t *testing.T) string {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.EditMessageTextConfig); ok {
			return m.Text
		}
	}
	t.Fatal("no edit was sent")
	return ""
}

func (f *fakeAPI) lastAudio(t *testing.T) tgbotapi.AudioConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if a, ok := f.sent[i].(tgbotapi.AudioConfig); ok {
			return a
		}
	}
	t.Fatal("no audio was sent")
	return tgbotapi.AudioConfig{}
}

func newTestBot() (*Bot, *fakeAPI, *repository.MemoryStore) {
	api := &fakeAPI{}
	store := repository.NewMemoryStore()
	svc := service.New(store, store)
	return New(api, svc, zerolog.Nop()), api, store
}

func commandMsg(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 7},
		Text:      text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])},
		},
	}
}

// serveFile stands in for the Telegram file CDN: the fake API hands out the
// returned URL and the handler downloads the payload from it.
func serveFile(t *testing.T, data []byte) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/file/bot/audio"
}

func audioMsg(title, fileName string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 2,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 7},
		Audio:     &tgbotapi.Audio{FileID: "a1", Title: title, FileName: fileName},
	}
}

func TestAddChannel_SavesAndConfirms(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/addchannel @cafe Cafe Noir")})

	channels, err := store.ListByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "@cafe", channels[0].ChannelID)
	assert.Equal(t, "Cafe Noir", channels[0].Name)
	assert.Contains(t, api.lastMessageText(t), "id=1")
}

func TestAddChannel_Usage(t *testing.T) {
	b, api, _ := newTestBot()
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMsg("/addchannel")})
	assert.Equal(t, msgUsageAdd, api.lastMessageText(t))
}

func TestListChannels_Empty(t *testing.T) {
	b, api, _ := newTestBot()
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMsg("/listchannels")})
	assert.Equal(t, msgNoChannels, api.lastMessageText(t))
}

func TestListChannels_FormatsLines(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	a, _ := store.Upsert(ctx, 7, "@a", "Alpha", "")
	_, _ = store.Upsert(ctx, 7, "@b", "", "")
	require.NoError(t, store.SetDefault(ctx, 7, a.ID))

	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/listchannels")})

	text := api.lastMessageText(t)
	assert.Contains(t, text, "#1 — @a | Alpha | default=true")
	assert.Contains(t, text, "#2 — @b |  | default=false")
}

func TestSetDefault_BadID(t *testing.T) {
	b, api, _ := newTestBot()
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMsg("/setdefault abc")})
	assert.Equal(t, msgBadID, api.lastMessageText(t))
}

func TestSetDefault_WrongOwner(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	_, _ = store.Upsert(ctx, 99, "@theirs", "", "")
	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/setdefault 1")})

	assert.Equal(t, msgChannelMissing, api.lastMessageText(t))
}

func TestSetLogo_ArmsSession(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	_, _ = store.Upsert(ctx, 7, "@cafe", "", "")
	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/setlogo 1")})

	assert.Equal(t, msgSendPhotoNow, api.lastMessageText(t))
	id, ok := b.sessions.TakeLogoTarget(7)
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestPhoto_WithoutArmedSession(t *testing.T) {
	b, api, _ := newTestBot()

	msg := &tgbotapi.Message{
		From:  &tgbotapi.User{ID: 7},
		Chat:  &tgbotapi.Chat{ID: 7},
		Photo: []tgbotapi.PhotoSize{{FileID: "p1"}},
	}
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: msg})

	assert.Equal(t, msgLogoHint, api.lastMessageText(t))
}

func TestAudio_NoChannelsPrompts(t *testing.T) {
	b, api, _ := newTestBot()
	api.fileURL = serveFile(t, []byte("mp3"))

	b.handleUpdate(context.Background(), tgbotapi.Update{Message: audioMsg("Night Jazz", "night-jazz.mp3")})

	assert.Equal(t, msgAddFirst, api.lastMessageText(t))
}

func TestAudio_SingleChannelRelaysImmediately(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()
	api.fileURL = serveFile(t, []byte("mp3-bytes"))

	ch, _ := store.Upsert(ctx, 7, "@cafe", "", "")
	b.handleUpdate(ctx, tgbotapi.Update{Message: audioMsg("Night Jazz", "night-jazz.mp3")})

	audio := api.lastAudio(t)
	assert.Equal(t, "@cafe", audio.ChannelUsername)
	assert.Equal(t, "Night Jazz", audio.Title)
	file, ok := audio.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, []byte("mp3-bytes"), file.Bytes)

	history, err := store.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ch.ID, history[0].ChannelID)

	_, parked := b.sessions.TakeUpload(7)
	assert.False(t, parked, "an immediate relay must not park the upload")
}

func TestAudio_MultipleChannelsShowKeyboard(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()
	api.fileURL = serveFile(t, []byte("mp3"))

	_, _ = store.Upsert(ctx, 7, "@cafe", "Cafe", "")
	_, _ = store.Upsert(ctx, 7, "@bar", "", "")
	b.handleUpdate(ctx, tgbotapi.Update{Message: audioMsg("Night Jazz", "night-jazz.mp3")})

	prompt := api.lastMessage(t)
	assert.Equal(t, msgPickChannel, prompt.Text)

	markup, ok := prompt.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "@cafe (Cafe)", markup.InlineKeyboard[0][0].Text)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "post:1", *markup.InlineKeyboard[0][0].CallbackData)

	up, ok := b.sessions.TakeUpload(7)
	require.True(t, ok, "the upload must be parked until a channel is chosen")
	assert.Equal(t, "Night Jazz", up.Title)

	history, err := store.History(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, history, "nothing is published before the choice")
}

func TestAudio_DownloadFailureReported(t *testing.T) {
	b, api, store := newTestBot()

	_, _ = store.Upsert(context.Background(), 7, "@cafe", "", "")
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: audioMsg("t", "f")})

	assert.Contains(t, api.lastMessageText(t), "Could not download the file")
}

func TestDefault_NoneSet(t *testing.T) {
	b, api, _ := newTestBot()
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMsg("/default")})
	assert.Equal(t, msgNoDefault, api.lastMessageText(t))
}

func TestDefault_ShowsChannel(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	ch, _ := store.Upsert(ctx, 7, "@cafe", "Cafe", "")
	require.NoError(t, store.SetDefault(ctx, 7, ch.ID))

	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/default")})

	assert.Equal(t, "#1 — @cafe | Cafe | default=true", api.lastMessageText(t))
}

func TestHistory_Empty(t *testing.T) {
	b, api, _ := newTestBot()
	b.handleUpdate(context.Background(), tgbotapi.Update{Message: commandMsg("/history")})
	assert.Equal(t, msgNoHistory, api.lastMessageText(t))
}

func TestHistory_ListsPublishedTracks(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	ch, _ := store.Upsert(ctx, 7, "@cafe", "", "")
	b.relay(ctx, 7, 7, ch.ID, session.Upload{Data: []byte("mp3"), Title: "Night Jazz", FileName: "night-jazz.mp3"})

	b.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg("/history")})

	text := api.lastMessageText(t)
	assert.Contains(t, text, "Night Jazz")
	assert.Contains(t, text, "(channel #1)")
}

func TestCallback_MissingUpload(t *testing.T) {
	b, api, _ := newTestBot()

	q := &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: 7},
		Data:    "post:1",
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 7}},
	}
	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: q})

	assert.Equal(t, msgUploadLost, api.lastEditText(t))
}

func TestCallback_RelaysParkedUpload(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	ch, _ := store.Upsert(ctx, 7, "@cafe", "", "")
	b.sessions.PutUpload(7, session.Upload{Data: []byte("mp3"), Title: "Night Jazz", FileName: "night-jazz.mp3"})

	q := &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: 7},
		Data:    "post:1",
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 7}},
	}
	b.handleUpdate(ctx, tgbotapi.Update{CallbackQuery: q})

	assert.Equal(t, msgSendingToTarget, api.lastEditText(t))
	assert.Equal(t, "Night Jazz", api.lastAudio(t).Title)

	history, err := store.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ch.ID, history[0].ChannelID)

	_, ok := b.sessions.TakeUpload(7)
	assert.False(t, ok, "the upload must be consumed by the relay")
}

func TestCallback_BadData(t *testing.T) {
	b, api, _ := newTestBot()

	q := &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: 7},
		Data:    "nonsense",
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: 7}},
	}
	b.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: q})

	assert.Equal(t, msgInvalidChoice, api.lastEditText(t))
}

func TestRelay_SendsAudioWithChannelBranding(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	ch, _ := store.Upsert(ctx, 7, "@cafe", "Cafe", "evening vibes")
	require.NoError(t, store.SetLogo(ctx, ch.ID, []byte{0xff, 0xd8}))

	up := session.Upload{Data: []byte("mp3"), Title: "Night Jazz", FileName: "night-jazz.mp3"}
	b.relay(ctx, 7, 7, ch.ID, up)

	audio := api.lastAudio(t)
	assert.Equal(t, "@cafe", audio.ChannelUsername)
	assert.Equal(t, "Night Jazz", audio.Title)
	assert.Equal(t, "@cafe", audio.Performer)
	assert.Equal(t, "evening vibes", audio.Caption)
	require.NotNil(t, audio.Thumb)

	history, err := store.History(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Night Jazz", history[0].Title)

	assert.Contains(t, api.lastMessageText(t), "published")
}

func TestRelay_NumericChatTarget(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	ch, _ := store.Upsert(ctx, 7, "-1001234567890", "", "")
	b.relay(ctx, 7, 7, ch.ID, session.Upload{Data: []byte("x"), Title: "t", FileName: "f"})

	audio := api.lastAudio(t)
	assert.Equal(t, int64(-1001234567890), audio.ChatID)
	assert.Empty(t, audio.ChannelUsername)
}

func TestRelay_ReportsSendFailure(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()
	api.audioErr = errors.New("Forbidden: bot is not a member of the channel chat")

	ch, _ := store.Upsert(ctx, 7, "@cafe", "", "")
	b.relay(ctx, 7, 7, ch.ID, session.Upload{Data: []byte("x"), Title: "t", FileName: "f"})

	assert.Contains(t, api.lastMessageText(t), "Forbidden")

	history, err := store.History(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, history, "failed sends must not be logged as published")
}

func TestRelay_ForeignChannelRefused(t *testing.T) {
	ctx := context.Background()
	b, api, store := newTestBot()

	ch, _ := store.Upsert(ctx, 99, "@theirs", "", "")
	b.relay(ctx, 7, 7, ch.ID, session.Upload{Data: []byte("x")})

	assert.Equal(t, msgChannelMissing, api.lastMessageText(t))
}

func TestChatTarget(t *testing.T) {
	cases := []struct {
		in       string
		chatID   int64
		username string
		wantErr  bool
	}{
		{in: "@cafe", username: "@cafe"},
		{in: "-1001234567890", chatID: -1001234567890},
		{in: "12345", chatID: 12345},
		{in: "cafe", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			chatID, username, err := chatTarget(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.chatID, chatID)
			assert.Equal(t, tc.username, username)
		})
	}
}

func TestParseCallbackData(t *testing.T) {
	id, err := parseCallbackData("post:42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseCallbackData("post:not-a-number")
	require.Error(t, err)

	_, err = parseCallbackData("delete:42")
	require.Error(t, err)
}

func TestChannelLabel(t *testing.T) {
	assert.Equal(t, "@cafe (Cafe)", channelLabel(models.Channel{ChannelID: "@cafe", Name: "Cafe"}))
	assert.Equal(t, "@cafe", channelLabel(models.Channel{ChannelID: "@cafe"}))
}

func TestAudioMeta(t *testing.T) {
	audio := &tgbotapi.Message{Audio: &tgbotapi.Audio{FileID: "a1", Title: "Song", FileName: "song.mp3"}}
	fileID, title, fileName, ok := audioMeta(audio)
	require.True(t, ok)
	assert.Equal(t, "a1", fileID)
	assert.Equal(t, "Song", title)
	assert.Equal(t, "song.mp3", fileName)

	untitled := &tgbotapi.Message{Audio: &tgbotapi.Audio{FileID: "a2"}}
	_, title, fileName, ok = audioMeta(untitled)
	require.True(t, ok)
	assert.Equal(t, "track", title)
	assert.Equal(t, "track", fileName)

	voice := &tgbotapi.Message{Voice: &tgbotapi.Voice{FileID: "v1"}}
	fileID, _, _, ok = audioMeta(voice)
	require.True(t, ok)
	assert.Equal(t, "v1", fileID)

	doc := &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "d1", FileName: "mix.flac", MimeType: "audio/flac"}}
	fileID, title, _, ok = audioMeta(doc)
	require.True(t, ok)
	assert.Equal(t, "d1", fileID)
	assert.Equal(t, "mix.flac", title)

	pdf := &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "d2", MimeType: "application/pdf"}}
	_, _, _, ok = audioMeta(pdf)
	assert.False(t, ok)
}
