package states

import (
	"fmt"
	"sort"
	"strings"

	"supplies-bot/internal/bot"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// AddOrder распределяет новый заказ: либо в одну из открытых поставок по
// кнопке, либо в новую - текстом с её названием.
type AddOrder struct {
	bot.NopExit
}

func NewAddOrder() *AddOrder {
	return &AddOrder{}
}

func (s *AddOrder) Name() bot.StateName { return bot.StateAddOrderToSupply }

func (s *AddOrder) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	supplies, err := wbapi.FetchSupplies(t.Ctx, t.WB, wbapi.FilterActive)
	if err != nil {
		return bot.Locator{}, err
	}
	sort.Slice(supplies, func(i, j int) bool {
		return supplies[i].CreatedAt.After(supplies[j].CreatedAt)
	})

	text := fmt.Sprintf(
		"Выберите поставку для заказа %d или введите название новой поставки",
		p.OrderID,
	)
	var keyboard [][]telegram.InlineKeyboardButton
	for _, supply := range supplies {
		keyboard = append(keyboard, []telegram.InlineKeyboardButton{{
			Text:         supply.String(),
			CallbackData: supplyTokenPrefix + supply.ID,
		}})
	}
	keyboard = append(keyboard, mainMenuRow())

	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, text, keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name(), Params: p}, nil
}

func (s *AddOrder) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if t.Event.IsCallback() {
		if t.Event.Callback == tokenStart {
			return &bot.Locator{State: bot.StateMainMenu}, nil
		}
		if supplyID, ok := supplyIDFromToken(t.Event.Callback); ok {
			return s.assign(t, p, supplyID)
		}
		return nil, nil
	}

	name := strings.TrimSpace(t.Event.Text)
	if name == "" {
		return nil, nil
	}
	supplyID, err := t.WB.CreateSupply(t.Ctx, name)
	if err != nil {
		return nil, err
	}
	return s.assign(t, p, supplyID)
}

func (s *AddOrder) assign(t *bot.Turn, p bot.Params, supplyID string) (*bot.Locator, error) {
	if err := t.WB.AddOrderToSupply(t.Ctx, supplyID, p.OrderID); err != nil {
		return nil, err
	}
	t.Answer.Toast(t.Ctx, t.Event, fmt.Sprintf("Заказ %d добавлен к поставке", p.OrderID))
	return &bot.Locator{State: bot.StateSupply, Params: bot.Params{SupplyID: supplyID}}, nil
}
