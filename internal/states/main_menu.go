package states

import (
	"supplies-bot/internal/bot"
	"supplies-bot/pkg/telegram"
)

// MainMenu - корневой экран. Сюда же ведёт сброс диалога по /start.
type MainMenu struct {
	bot.NopExit
}

func NewMainMenu() *MainMenu {
	return &MainMenu{}
}

func (s *MainMenu) Name() bot.StateName { return bot.StateMainMenu }

func (s *MainMenu) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	keyboard := [][]telegram.InlineKeyboardButton{
		{{Text: "Показать поставки", CallbackData: tokenShowSupplies}},
		{{Text: "Новые заказы", CallbackData: tokenNewOrders}},
		{{Text: "Проверить незавершённые заказы", CallbackData: tokenCheckOrders}},
	}
	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, "Основное меню", keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name()}, nil
}

func (s *MainMenu) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if !t.Event.IsCallback() {
		return nil, nil
	}
	switch t.Event.Callback {
	case tokenShowSupplies:
		return &bot.Locator{State: bot.StateSupplies}, nil
	case tokenNewOrders:
		return &bot.Locator{State: bot.StateNewOrders}, nil
	case tokenCheckOrders:
		return &bot.Locator{State: bot.StateWaitingOrders}, nil
	case tokenStart:
		return &bot.Locator{State: bot.StateMainMenu}, nil
	}
	return nil, nil
}
