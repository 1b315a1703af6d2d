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

// EditSupply - состав открытой поставки: по кнопке на заказ, с частями
// стикера в подписи. Стикеры тянутся пачкой и кешируются в сессии, кеш
// сбрасывается при любом расхождении состава.
type EditSupply struct {
	bot.NopExit
	pageSize int
}

func NewEditSupply(pageSize int) *EditSupply {
	return &EditSupply{pageSize: pageSize}
}

func (s *EditSupply) Name() bot.StateName { return bot.StateEditSupply }

func (s *EditSupply) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	orders, err := t.WB.GetSupplyOrders(t.Ctx, p.SupplyID)
	if err != nil {
		return bot.Locator{}, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	orderIDs := make([]int64, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}

	if len(orders) > 0 && !t.Session.QRCodes.Matches(orderIDs) {
		t.Answer.Toast(t.Ctx, t.Event, "Загружаются данные по заказам. Подождите")
		codes, err := t.WB.GetOrderQRCodes(t.Ctx, orderIDs)
		if err != nil {
			return bot.Locator{}, err
		}
		t.Session.QRCodes = &bot.QRCache{OrderIDs: orderIDs, Codes: codes}
	}
	stickerByOrder := make(map[int64]wbapi.OrderQRCode)
	if t.Session.QRCodes != nil {
		for _, code := range t.Session.QRCodes.Codes {
			stickerByOrder[code.OrderID] = code
		}
	}

	text := "Заказы поставки"
	var keyboard [][]telegram.InlineKeyboardButton
	if len(orders) == 0 {
		text = "В поставке нет заказов"
	} else {
		pag := paginator.New(orders, s.pageSize,
			func(order wbapi.Order) string {
				sticker, ok := stickerByOrder[order.ID]
				if !ok {
					return order.Article
				}
				return fmt.Sprintf("%s | %s %s", order.Article, sticker.PartA, sticker.PartB)
			},
			func(order wbapi.Order) string { return strconv.FormatInt(order.ID, 10) },
		)
		p.Page = pag.Clamp(p.Page)
		keyboard = pag.Keyboard(p.Page, orderTokenPrefix, pageTokenPrefix)
	}
	keyboard = append(keyboard,
		[]telegram.InlineKeyboardButton{{Text: "К поставке", CallbackData: tokenSupply}},
		mainMenuRow(),
	)

	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, text, keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name(), Params: p}, nil
}

func (s *EditSupply) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if !t.Event.IsCallback() {
		return nil, nil
	}
	switch t.Event.Callback {
	case tokenStart:
		return &bot.Locator{State: bot.StateMainMenu}, nil
	case tokenSupply:
		return &bot.Locator{State: bot.StateSupply, Params: bot.Params{SupplyID: p.SupplyID}}, nil
	}
	if page, ok := pageFromToken(t.Event.Callback); ok {
		p.Page = page
		return &bot.Locator{State: s.Name(), Params: p}, nil
	}
	if orderID, ok := orderIDFromToken(t.Event.Callback); ok {
		return &bot.Locator{
			State:  bot.StateOrderDetails,
			Params: bot.Params{SupplyID: p.SupplyID, OrderID: orderID},
		}, nil
	}
	return nil, nil
}
