// Package apps holds the Telegram front end: a main menu and the race application behind it.
package apps

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Accepter interface {
	AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error)
	AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error)
}

// Sender is the part of *tgbotapi.BotAPI the apps talk to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

const buttonBackTo = "Back to"

// ApplicationMenu links an application to the keyboard it was opened from.
type ApplicationMenu struct {
	Name     string
	From     string
	PrevMenu tgbotapi.ReplyKeyboardMarkup
}

func NewApplicationMenu(name, from string, prevMenu tgbotapi.ReplyKeyboardMarkup) ApplicationMenu {
	return ApplicationMenu{
		Name:     name,
		From:     from,
		PrevMenu: prevMenu,
	}
}

func (am ApplicationMenu) ButtonBackTo() string {
	return buttonBackTo + " " + am.From
}

// Keyboard lays buttons out two per row and ends with the back button.
func (am ApplicationMenu) Keyboard(buttons ...string) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{}
	for i := 0; i < len(buttons); i += 2 {
		row := tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(buttons[i]))
		if i+1 < len(buttons) {
			row = append(row, tgbotapi.NewKeyboardButton(buttons[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(am.ButtonBackTo())))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func codeBlock(text string) string {
	return "```\n" + text + "```"
}
