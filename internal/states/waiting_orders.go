package states

import (
	"fmt"
	"strings"

	"supplies-bot/internal/bot"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// WaitingOrders - заказы из последних закрытых поставок, которые склад
// маркетплейса ещё не отсортировал. Длинный список выгружается в Excel.
type WaitingOrders struct {
	bot.NopExit
	suppliesQuantity int
}

func NewWaitingOrders(suppliesQuantity int) *WaitingOrders {
	return &WaitingOrders{suppliesQuantity: suppliesQuantity}
}

func (s *WaitingOrders) Name() bot.StateName { return bot.StateWaitingOrders }

func (s *WaitingOrders) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	orders, err := wbapi.WaitingOrders(t.Ctx, t.WB, s.suppliesQuantity)
	if err != nil {
		return bot.Locator{}, err
	}

	var keyboard [][]telegram.InlineKeyboardButton
	text := "Нет заказов, ожидающих сортировки"
	if len(orders) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "Ожидают сортировки - %d шт.\n\n", len(orders))
		for _, order := range orders {
			fmt.Fprintf(&b, "%s | %s | %s\n", order.SupplyID, order.Article, order.Age())
		}
		text = b.String()
		keyboard = append(keyboard, []telegram.InlineKeyboardButton{
			{Text: "Выгрузить в Excel", CallbackData: tokenReport},
		})
	}
	keyboard = append(keyboard, mainMenuRow())

	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, text, keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name(), Params: p}, nil
}

func (s *WaitingOrders) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if !t.Event.IsCallback() {
		return nil, nil
	}
	if t.Event.Callback == tokenReport {
		t.Answer.Toast(t.Ctx, t.Event, "Готовлю отчёт")
		if err := t.Jobs.CreateWaitingReport(t.Ctx, t.Event.ChatID); err != nil {
			t.Answer.Notify(t.Ctx, t.Event.ChatID, "Не удалось запустить выгрузку. Попробуйте позже")
		}
		return nil, nil
	}
	return &bot.Locator{State: bot.StateMainMenu}, nil
}
