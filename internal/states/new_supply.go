package states

import (
	"strings"

	"supplies-bot/internal/bot"
	"supplies-bot/pkg/telegram"
)

// CreateSupply ждёт от оператора текстовое имя новой поставки.
type CreateSupply struct {
	bot.NopExit
}

func NewCreateSupply() *CreateSupply {
	return &CreateSupply{}
}

func (s *CreateSupply) Name() bot.StateName { return bot.StateNewSupply }

func (s *CreateSupply) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	keyboard := [][]telegram.InlineKeyboardButton{
		{{Text: "Отмена", CallbackData: tokenCancel}},
		mainMenuRow(),
	}
	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, "Введите название новой поставки", keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name()}, nil
}

func (s *CreateSupply) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if t.Event.IsCallback() {
		switch t.Event.Callback {
		case tokenCancel, tokenSupplies:
			return &bot.Locator{State: bot.StateSupplies}, nil
		case tokenStart:
			return &bot.Locator{State: bot.StateMainMenu}, nil
		}
		return nil, nil
	}

	name := strings.TrimSpace(t.Event.Text)
	if name == "" {
		return nil, nil
	}
	if _, err := t.WB.CreateSupply(t.Ctx, name); err != nil {
		return nil, err
	}
	// Созданная поставка появляется первой в списке
	return &bot.Locator{State: bot.StateSupplies}, nil
}
