package states

import (
	"fmt"
	"sort"
	"strconv"

	"supplies-bot/internal/bot"
	"supplies-bot/internal/bot/paginator"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// NewOrders - входящие заказы, ещё не разложенные по поставкам. Старые
// заказы идут первыми: их нужно разобрать в первую очередь.
type NewOrders struct {
	bot.NopExit
	pageSize int
}

func NewNewOrders(pageSize int) *NewOrders {
	return &NewOrders{pageSize: pageSize}
}

func (s *NewOrders) Name() bot.StateName { return bot.StateNewOrders }

func (s *NewOrders) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	orders, err := t.WB.GetNewOrders(t.Ctx)
	if err != nil {
		return bot.Locator{}, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	text := fmt.Sprintf("Новые заказы - %d шт.", len(orders))
	var keyboard [][]telegram.InlineKeyboardButton
	if len(orders) == 0 {
		text = "Нет новых заказов"
	} else {
		pag := paginator.New(orders, s.pageSize,
			func(order wbapi.Order) string { return order.String() },
			func(order wbapi.Order) string { return strconv.FormatInt(order.ID, 10) },
		)
		p.Page = pag.Clamp(p.Page)
		keyboard = pag.Keyboard(p.Page, orderTokenPrefix, pageTokenPrefix)
	}
	keyboard = append(keyboard, mainMenuRow())

	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, text, keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name(), Params: p}, nil
}

func (s *NewOrders) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if !t.Event.IsCallback() {
		return nil, nil
	}
	if t.Event.Callback == tokenStart {
		return &bot.Locator{State: bot.StateMainMenu}, nil
	}
	if page, ok := pageFromToken(t.Event.Callback); ok {
		p.Page = page
		return &bot.Locator{State: s.Name(), Params: p}, nil
	}
	if orderID, ok := orderIDFromToken(t.Event.Callback); ok {
		return &bot.Locator{State: bot.StateOrderDetails, Params: bot.Params{OrderID: orderID}}, nil
	}
	return nil, nil
}
