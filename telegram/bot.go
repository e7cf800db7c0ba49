package telegram

import (
	"errors"
	"fmt"

	"github.com/NicoNex/echotron/v3"
)

// Bot posts plain text messages into a single chat
type Bot struct {
	api      echotron.API
	chatID   int64
	username string
}

// New connects to the bot API and checks the token
func New(token string, chatID int64) (*Bot, error) {
	if len(token) < 30 {
		return nil, errors.New("telegram token looks invalid")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}

	api := echotron.NewAPI(token)
	res, err := api.GetMe()
	if err != nil {
		return nil, fmt.Errorf("unable to connect to bot: %w", err)
	}
	if !res.Ok {
		return nil, fmt.Errorf("unable to connect to bot: %s", res.Description)
	}

	bot := &Bot{api: api, chatID: chatID}
	if res.Result != nil {
		bot.username = res.Result.Username
	}
	return bot, nil
}

// Username returns the name the bot is authorized as
func (b *Bot) Username() string {
	return b.username
}

func (b *Bot) Send(text string) error {
	res, err := b.api.SendMessage(text, b.chatID, nil)
	if err != nil {
		return err
	}
	if !res.Ok {
		return fmt.Errorf("telegram refused message: %s", res.Description)
	}
	return nil
}
