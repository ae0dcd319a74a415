package apps

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	menuStart  = "/start"
	menuMenu   = "/menu"
	buttonRace = "Race"
	appName    = "menu"
)

var (
	menuKeyboard = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(buttonRace),
		),
	)
)

// RaceMenu is the entry the race application hangs from.
func RaceMenu() ApplicationMenu {
	return NewApplicationMenu(buttonRace, appName, menuKeyboard)
}

type MainApp struct {
	sender    Sender
	accepters []Accepter
}

func NewMainApp(sender Sender, accepters ...Accepter) *MainApp {
	return &MainApp{
		sender:    sender,
		accepters: accepters,
	}
}

func (m *MainApp) AcceptCommand(command string) (bool, func(ctx context.Context, chatId int64) error) {
	if command == menuStart {
		return true, m.renderStart()
	} else if command == menuMenu {
		return true, m.renderMenu()
	}
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCommand(command)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptCallback(query *tgbotapi.CallbackQuery) (bool, func(ctx context.Context, query *tgbotapi.CallbackQuery) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptCallback(query)
		if accept {
			return true, handler
		}
	}

	return false, nil
}

func (m *MainApp) AcceptButton(button string) (bool, func(ctx context.Context, chatId int64) error) {
	for _, accepter := range m.accepters {
		accept, handler := accepter.AcceptButton(button)
		if accept {
			return true, handler
		}
	}
	return false, nil
}

func (m *MainApp) renderStart() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		message := "Hi, I run sprint races against an AI driver and keep the best times.\n\n"
		message += "You can use the following command:\n\n"
		message += fmt.Sprintf("%s - Shows the bot menu\n", menuMenu)
		msg := tgbotapi.NewMessage(chatId, message)
		msg.ReplyMarkup = menuKeyboard
		_, err := m.sender.Send(msg)
		return err
	}
}

func (m *MainApp) renderMenu() func(ctx context.Context, chatId int64) error {
	return func(ctx context.Context, chatId int64) error {
		msg := tgbotapi.NewMessage(chatId, "Bot menu.\n\n")
		msg.ReplyMarkup = menuKeyboard
		_, err := m.sender.Send(msg)
		return err
	}
}

// Bot feeds Telegram updates to the root accepter.
type Bot struct {
	sender Sender
	root   Accepter
}

func NewBot(sender Sender, root Accepter) *Bot {
	return &Bot{
		sender: sender,
		root:   root,
	}
}

// Run blocks until ctx is cancelled or updates is closed.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		if accept, handler := b.root.AcceptCallback(update.CallbackQuery); accept {
			err = handler(ctx, update.CallbackQuery)
		}
	}
	if err != nil {
		log.Printf("An error occured: %s", err.Error())
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	user := message.From
	text := message.Text
	if user == nil {
		return nil
	}
	log.Printf("%s wrote %s", user.FirstName, text)

	var accept bool
	var handler func(ctx context.Context, chatId int64) error
	if message.IsCommand() {
		accept, handler = b.root.AcceptCommand(text)
	} else {
		accept, handler = b.root.AcceptButton(text)
	}
	if !accept {
		msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Unknown option. Try %s", menuMenu))
		_, err := b.sender.Send(msg)
		return err
	}
	return handler(ctx, message.Chat.ID)
}
