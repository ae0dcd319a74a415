package notification

import (
	"context"
	"log"

	"github.com/nikoksr/notify"

	"sprintrace/pkg/hud"
	"sprintrace/pkg/session"
)

const subject = "Race finished"

// Sender is satisfied by *notify.Notify.
type Sender interface {
	Send(ctx context.Context, subject, message string) error
}

type Manager struct {
	ctx    context.Context
	sender Sender
}

func NewManager(ctx context.Context, sender Sender) *Manager {
	return &Manager{
		ctx:    ctx,
		sender: sender,
	}
}

// NewTelegramManager posts results to the given chats through the bot.
func NewTelegramManager(ctx context.Context, bot BotSender, chatIDs ...int64) *Manager {
	tg := &Telegram{}
	tg.SetClient(bot)
	tg.AddReceivers(chatIDs...)

	return NewManager(ctx, notify.NewWithServices(tg))
}

// Start forwards every result until exitChan fires or results is closed.
func (m *Manager) Start(results <-chan session.Result, exitChan <-chan bool) {
	for {
		select {
		case <-exitChan:
			return
		case <-m.ctx.Done():
			return
		case result, ok := <-results:
			if !ok {
				return
			}
			m.handleResult(result)
		}
	}
}

func (m *Manager) handleResult(result session.Result) {
	log.Printf("Sending notification for race %s\n", result.Session)
	if err := m.sender.Send(m.ctx, subject, Message(result)); err != nil {
		log.Printf("Error notifying race result: %s", err.Error())
	}
}

func Message(result session.Result) string {
	return hud.Summary(result) + "\n\n" + hud.RenderHighscores(result.Highscores)
}
