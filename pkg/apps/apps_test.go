package apps

import (
	"context"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintrace/pkg/highscore"
	"sprintrace/pkg/resources"
	"sprintrace/pkg/session"
	"sprintrace/pkg/track"
)

type fakeSender struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sent)
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	case tgbotapi.PhotoConfig:
		return m.Caption
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return ""
}

type fixture struct {
	sender *fakeSender
	ledger *highscore.Ledger
	runner *session.Runner
	track  *track.Track
	race   *RaceApp
	bot    *Bot
}

func newFixture(t *testing.T, thumbnail resources.Resource) *fixture {
	t.Helper()
	tr, err := track.Build(track.Config{
		ControlPoints:       []mgl64.Vec3{{0, 0, 0}, {1000, 0, 0}},
		Divisions:           500,
		Tension:             track.DefaultTension,
		HalfWidth:           6,
		CheckpointFractions: []float64{0.5},
	})
	require.NoError(t, err)

	f := &fixture{
		sender: &fakeSender{},
		ledger: highscore.NewLedger(highscore.NewMemoryStore()),
		track:  tr,
	}
	f.runner = session.NewRunner(func() *session.Session {
		return session.New(tr, f.ledger, session.Options{Rand: rand.New(rand.NewSource(3))})
	}, session.NewInput())
	f.race = NewRaceApp(f.sender, RaceMenu(), f.runner, f.ledger, tr, thumbnail, "http://localhost:8080/live")
	f.bot = NewBot(f.sender, NewMainApp(f.sender, f.race))
	return f
}

func command(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From:     &tgbotapi.User{FirstName: "tester"},
			Chat:     &tgbotapi.Chat{ID: 42},
			Text:     text,
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		},
	}
}

func button(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{FirstName: "tester"},
			Chat: &tgbotapi.Chat{ID: 42},
			Text: text,
		},
	}
}

func TestStartAndMenu(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, command(menuStart))
	assert.Contains(t, f.sender.lastText(t), menuMenu)
	msg := f.sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, menuKeyboard, msg.ReplyMarkup)

	f.bot.HandleUpdate(ctx, command(menuMenu))
	assert.Equal(t, "Bot menu.\n\n", f.sender.lastText(t))
}

func TestUnknownInput(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	f.bot.HandleUpdate(context.Background(), button("hello"))
	assert.Equal(t, "Unknown option. Try /menu", f.sender.lastText(t))
}

func TestMessageWithoutUserIsIgnored(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	update := button(buttonRace)
	update.Message.From = nil
	f.bot.HandleUpdate(context.Background(), update)
	assert.Empty(t, f.sender.sent)
}

func TestRaceMenuAndBack(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, button(buttonRace))
	msg := f.sender.sent[0].(tgbotapi.MessageConfig)
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, keyboard.Keyboard, 3)
	assert.Equal(t, buttonNewRace, keyboard.Keyboard[0][0].Text)
	assert.Equal(t, buttonStatus, keyboard.Keyboard[0][1].Text)
	assert.Equal(t, "Back to menu", keyboard.Keyboard[2][0].Text)

	f.bot.HandleUpdate(ctx, button("Back to menu"))
	back := f.sender.sent[1].(tgbotapi.MessageConfig)
	assert.Equal(t, "OK", back.Text)
	assert.Equal(t, menuKeyboard, back.ReplyMarkup)
}

func TestStatusBeforeAndAfterNewRace(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, button(buttonStatus))
	assert.Contains(t, f.sender.lastText(t), "No race started yet")

	f.bot.HandleUpdate(ctx, button(buttonNewRace))
	text := f.sender.lastText(t)
	require.NotNil(t, f.runner.Current())
	assert.Contains(t, text, f.runner.Current().ID)
	assert.Contains(t, text, "1.00 km")
	assert.Contains(t, text, "http://localhost:8080/live")

	f.runner.Advance(0.05)
	f.bot.HandleUpdate(ctx, button(buttonStatus))
	msg := f.sender.sent[len(f.sender.sent)-1].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, msg.ParseMode)
	assert.Contains(t, msg.Text, "Q = shift up")
	assert.Equal(t, refreshKeyboard(), msg.ReplyMarkup)
}

func TestRefreshCallback(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	f.runner.Restart()

	query := &tgbotapi.CallbackQuery{
		ID:      "q1",
		Data:    callbackRefresh,
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 42}},
	}
	f.bot.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: query})

	require.Len(t, f.sender.requested, 1)
	edit, ok := f.sender.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 7, edit.MessageID)
	assert.Contains(t, edit.Text, "0/1")

	accept, _ := f.race.AcceptCallback(&tgbotapi.CallbackQuery{Data: "other"})
	assert.False(t, accept)
}

func TestHighscores(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	ctx := context.Background()

	f.bot.HandleUpdate(ctx, button(buttonHighscores))
	assert.Contains(t, f.sender.lastText(t), "No times yet")

	f.ledger.Record(75.5)
	f.bot.HandleUpdate(ctx, button(buttonHighscores))
	assert.Contains(t, f.sender.lastText(t), "Best: 01:15.500")
}

func TestTrackMap(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	f.bot.HandleUpdate(context.Background(), button(buttonTrackMap))
	_, ok := f.sender.sent[0].(tgbotapi.MessageConfig)
	assert.True(t, ok)
	assert.Equal(t, "Track: 1.00 km, 1 checkpoints", f.sender.lastText(t))

	base := newFixture(t, resources.Resource{})
	thumb, err := resources.BuildTrackThumbnail(t.TempDir(), "test", base.track)
	require.NoError(t, err)
	g := newFixture(t, thumb)
	g.bot.HandleUpdate(context.Background(), button(buttonTrackMap))
	photo, ok := g.sender.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FilePath(thumb.FilePath()), photo.File)
}

func TestRunStopsWhenUpdatesClose(t *testing.T) {
	f := newFixture(t, resources.Resource{})
	updates := make(chan tgbotapi.Update, 1)
	updates <- command(menuMenu)
	close(updates)

	f.bot.Run(context.Background(), updates)
	assert.Len(t, f.sender.sent, 1)
}
