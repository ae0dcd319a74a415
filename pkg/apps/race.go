package apps

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sprintrace/pkg/highscore"
	"sprintrace/pkg/hud"
	"sprintrace/pkg/resources"
	"sprintrace/pkg/session"
	"sprintrace/pkg/track"
)

const (
	buttonNewRace    = "New race"
	buttonStatus     = "Status"
	buttonHighscores = "Highscores"
	buttonTrackMap   = "Track map"

	callbackRefresh = "race:refresh"
	symbolRefresh   = "🔄"
)

type RaceApp struct {
	sender       Sender
	appMenu      ApplicationMenu
	runner       *session.Runner
	ledger       *highscore.Ledger
	track        *track.Track
	thumbnail    resources.Resource
	liveURL      string
	menuKeyboard tgbotapi.ReplyKeyboardMarkup
}

// NewRaceApp drives the shared runner from chat. liveURL points players to the browser view,
// where the car is actually driven.
func NewRaceApp(sender Sender, appMenu ApplicationMenu, runner *session.Runner, ledger *highscore.Ledger, t *track.Track, thumbnail resources.Resource, liveURL string) *RaceApp {
	return &RaceApp{
		sender:       sender,
		appMenu:      appMenu,
		runner:       runner,
		ledger:       ledger,
		track:        t,
		thumbnail:    thumbnail,
		liveURL:      liveURL,
		menuKeyboard: appMenu.Keyboard(buttonNewRace, buttonStatus, buttonHighscores, buttonTrackMap),
	}
}

func (ra *RaceApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	return false, nil
}

func (ra *RaceApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	switch button {
	case ra.appMenu.Name:
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, fmt.Sprintf("%s application\n\n", ra.appMenu.Name))
			msg.ReplyMarkup = ra.menuKeyboard
			_, err := ra.sender.Send(msg)
			return err
		}
	case ra.appMenu.ButtonBackTo():
		return true, func(ctx context.Context, chatId int64) error {
			msg := tgbotapi.NewMessage(chatId, "OK")
			msg.ReplyMarkup = ra.appMenu.PrevMenu
			_, err := ra.sender.Send(msg)
			return err
		}
	case buttonNewRace:
		return true, ra.renderNewRace()
	case buttonStatus:
		return true, ra.renderStatus()
	case buttonHighscores:
		return true, ra.renderHighscores()
	case buttonTrackMap:
		return true, ra.renderTrackMap()
	}
	return false, nil
}

func (ra *RaceApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	if query.Data != callbackRefresh {
		return false, nil
	}
	return true, func(ctx context.Context, query *tgbotapi.CallbackQuery) error {
		if _, err := ra.sender.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			log.Printf("Error answering callback: %s\n", err)
		}
		if query.Message == nil {
			return nil
		}
		msg := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, codeBlock(ra.statusText()))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		markup := refreshKeyboard()
		msg.ReplyMarkup = &markup
		_, err := ra.sender.Send(msg)
		return err
	}
}

func refreshKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonStatus+" "+symbolRefresh, callbackRefresh),
		),
	)
}

func (ra *RaceApp) renderNewRace() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		s := ra.runner.Restart()
		text := fmt.Sprintf("Race %s started on a %.2f km track.", s.ID, ra.track.TotalLength()/1000)
		if ra.liveURL != "" {
			text += fmt.Sprintf("\nDrive it at %s", ra.liveURL)
		}
		msg := tgbotapi.NewMessage(chatId, text)
		msg.ReplyMarkup = ra.menuKeyboard
		_, err := ra.sender.Send(msg)
		return err
	}
}

func (ra *RaceApp) statusText() string {
	frame, err := ra.runner.Frame()
	if err != nil {
		return fmt.Sprintf("No race started yet. Press %q.\n\n%s", buttonNewRace, hud.RenderStatus(frame.Status))
	}
	if result := ra.runner.Result(); result != nil {
		return hud.RenderResult(*result)
	}
	return hud.RenderStatus(frame.Status)
}

func (ra *RaceApp) renderStatus() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		msg := tgbotapi.NewMessage(chatId, codeBlock(ra.statusText()))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = refreshKeyboard()
		_, err := ra.sender.Send(msg)
		return err
	}
}

func (ra *RaceApp) renderHighscores() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		msg := tgbotapi.NewMessage(chatId, codeBlock(hud.RenderHighscores(ra.ledger.List())))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = ra.menuKeyboard
		_, err := ra.sender.Send(msg)
		return err
	}
}

func (ra *RaceApp) renderTrackMap() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		text := fmt.Sprintf("Track: %.2f km, %d checkpoints", ra.track.TotalLength()/1000, len(ra.track.CheckpointDistances()))
		var cfg tgbotapi.Chattable
		if ra.thumbnail.IsZero() {
			log.Printf("No track thumbnail available\n")
			msg := tgbotapi.NewMessage(chatId, text)
			msg.ReplyMarkup = ra.menuKeyboard
			cfg = msg
		} else {
			msg := tgbotapi.NewPhoto(chatId, tgbotapi.FilePath(ra.thumbnail.FilePath()))
			msg.Caption = text
			msg.ReplyMarkup = ra.menuKeyboard
			cfg = msg
		}
		_, err := ra.sender.Send(cfg)
		return err
	}
}
