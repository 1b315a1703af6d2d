package states

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"supplies-bot/internal/bot"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// OrderDetails - карточка заказа. Открывается либо из состава поставки
// (тогда показывает стикер), либо из новых заказов (тогда даёт добавить
// заказ к поставке).
type OrderDetails struct {
	bot.NopExit
}

func NewOrderDetails() *OrderDetails {
	return &OrderDetails{}
}

func (s *OrderDetails) Name() bot.StateName { return bot.StateOrderDetails }

func (s *OrderDetails) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	order, err := s.findOrder(t, p)
	if err != nil {
		return bot.Locator{}, err
	}
	if order == nil {
		keyboard := [][]telegram.InlineKeyboardButton{mainMenuRow()}
		if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, "Заказ не найден", keyboard, true); err != nil {
			return bot.Locator{}, err
		}
		return bot.Locator{State: s.Name(), Params: p}, nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "<b>Заказ %d</b>\n", order.ID)
	fmt.Fprintf(&text, "Артикул: %s\n", order.Article)
	fmt.Fprintf(&text, "Цена: %.2f ₽\n", float64(order.Price)/100)
	fmt.Fprintf(&text, "Возраст: %s\n", order.Age())

	products, err := t.WB.GetProducts(t.Ctx, []string{order.Article})
	if err != nil {
		t.Logger.Warn("не удалось получить карточку товара", zap.String("article", order.Article), zap.Error(err))
	} else if len(products) > 0 {
		product := products[0]
		fmt.Fprintf(&text, "\n<b>%s</b>\n", product.Name)
		if product.Brand != "" {
			fmt.Fprintf(&text, "Бренд: %s\n", product.Brand)
		}
		if len(product.Colors) > 0 {
			fmt.Fprintf(&text, "Цвет: %s\n", strings.Join(product.Colors, ", "))
		}
		if len(product.Countries) > 0 {
			fmt.Fprintf(&text, "Страна: %s\n", strings.Join(product.Countries, ", "))
		}
		if product.Barcode != "" {
			fmt.Fprintf(&text, "Штрихкод: %s\n", product.Barcode)
		}
	}

	var keyboard [][]telegram.InlineKeyboardButton
	if p.SupplyID != "" {
		if sticker := s.stickerFor(t, order.ID); sticker != nil {
			fmt.Fprintf(&text, "\nСтикер: %s %s\n", sticker.PartA, sticker.PartB)
		}
		keyboard = append(keyboard, []telegram.InlineKeyboardButton{
			{Text: "К поставке", CallbackData: tokenSupply},
		})
	} else {
		keyboard = append(keyboard,
			[]telegram.InlineKeyboardButton{{Text: "Добавить к поставке", CallbackData: tokenAddToSupply}},
			[]telegram.InlineKeyboardButton{{Text: "К новым заказам", CallbackData: tokenNewOrders}},
		)
	}
	keyboard = append(keyboard, mainMenuRow())

	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, text.String(), keyboard, true, telegram.WithHTML()); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name(), Params: p}, nil
}

func (s *OrderDetails) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if !t.Event.IsCallback() {
		return nil, nil
	}
	switch t.Event.Callback {
	case tokenStart:
		return &bot.Locator{State: bot.StateMainMenu}, nil
	case tokenSupply:
		return &bot.Locator{State: bot.StateEditSupply, Params: bot.Params{SupplyID: p.SupplyID}}, nil
	case tokenNewOrders:
		return &bot.Locator{State: bot.StateNewOrders}, nil
	case tokenAddToSupply:
		return &bot.Locator{State: bot.StateAddOrderToSupply, Params: bot.Params{OrderID: p.OrderID}}, nil
	}
	return nil, nil
}

func (s *OrderDetails) findOrder(t *bot.Turn, p bot.Params) (*wbapi.Order, error) {
	if p.OrderID == 0 {
		return nil, nil
	}
	var orders []wbapi.Order
	var err error
	if p.SupplyID != "" {
		orders, err = t.WB.GetSupplyOrders(t.Ctx, p.SupplyID)
	} else {
		orders, err = t.WB.GetNewOrders(t.Ctx)
	}
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == p.OrderID {
			return &orders[i], nil
		}
	}
	return nil, nil
}

// stickerFor достаёт стикер из сессионного кеша, если тот ещё валиден.
// Промах - не повод ходить в API ради одной подписи.
func (s *OrderDetails) stickerFor(t *bot.Turn, orderID int64) *wbapi.OrderQRCode {
	if t.Session.QRCodes == nil {
		return nil
	}
	for i := range t.Session.QRCodes.Codes {
		if t.Session.QRCodes.Codes[i].OrderID == orderID {
			return &t.Session.QRCodes.Codes[i]
		}
	}
	return nil
}
