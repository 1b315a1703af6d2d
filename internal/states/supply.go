package states

import (
	"fmt"
	"sort"
	"strings"

	"supplies-bot/internal/bot"
	"supplies-bot/internal/stickers"
	"supplies-bot/pkg/telegram"
)

// Supply - карточка одной поставки с действиями над ней.
type Supply struct {
	bot.NopExit
}

func NewSupply() *Supply {
	return &Supply{}
}

func (s *Supply) Name() bot.StateName { return bot.StateSupply }

func (s *Supply) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	supply, err := t.WB.GetSupply(t.Ctx, p.SupplyID)
	if err != nil {
		return bot.Locator{}, err
	}
	if supply == nil {
		keyboard := [][]telegram.InlineKeyboardButton{
			{{Text: "К поставкам", CallbackData: tokenSupplies}},
			mainMenuRow(),
		}
		if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, "Поставка не найдена", keyboard, true); err != nil {
			return bot.Locator{}, err
		}
		return bot.Locator{State: s.Name(), Params: p}, nil
	}

	orders, err := t.WB.GetSupplyOrders(t.Ctx, p.SupplyID)
	if err != nil {
		return bot.Locator{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s\nЗаказов в поставке: %d\n", supply.String(), len(orders))
	if len(orders) > 0 {
		counts := make(map[string]int)
		for _, order := range orders {
			counts[order.Article]++
		}
		articles := make([]string, 0, len(counts))
		for article := range counts {
			articles = append(articles, article)
		}
		sort.Strings(articles)
		text.WriteString("\nСостав:\n")
		for _, article := range articles {
			fmt.Fprintf(&text, "%s - %d шт.\n", article, counts[article])
		}
	}

	var keyboard [][]telegram.InlineKeyboardButton
	if supply.Done {
		keyboard = append(keyboard,
			[]telegram.InlineKeyboardButton{{Text: "Создать стикеры", CallbackData: tokenStickers}},
			[]telegram.InlineKeyboardButton{{Text: "QR-код поставки", CallbackData: tokenQR}},
		)
	} else {
		if len(orders) > 0 {
			keyboard = append(keyboard,
				[]telegram.InlineKeyboardButton{{Text: "Редактировать состав", CallbackData: tokenEdit}},
				[]telegram.InlineKeyboardButton{{Text: "Создать стикеры", CallbackData: tokenStickers}},
				[]telegram.InlineKeyboardButton{{Text: "Отправить в доставку", CallbackData: tokenClose}},
			)
		} else {
			keyboard = append(keyboard,
				[]telegram.InlineKeyboardButton{{Text: "Удалить поставку", CallbackData: tokenDelete}},
			)
		}
	}
	keyboard = append(keyboard,
		[]telegram.InlineKeyboardButton{{Text: "К поставкам", CallbackData: tokenSupplies}},
		mainMenuRow(),
	)

	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, text.String(), keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name(), Params: p}, nil
}

func (s *Supply) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if !t.Event.IsCallback() {
		return nil, nil
	}
	switch t.Event.Callback {
	case tokenStart:
		return &bot.Locator{State: bot.StateMainMenu}, nil
	case tokenSupplies:
		return &bot.Locator{State: bot.StateSupplies}, nil
	case tokenEdit:
		return &bot.Locator{State: bot.StateEditSupply, Params: bot.Params{SupplyID: p.SupplyID}}, nil
	case tokenStickers:
		// Архив готовится в фоне, экран не блокируем
		t.Answer.Toast(t.Ctx, t.Event, "Запущена подготовка стикеров")
		if err := t.Jobs.CreateStickers(t.Ctx, t.Event.ChatID, p.SupplyID); err != nil {
			t.Answer.Notify(t.Ctx, t.Event.ChatID, "Не удалось запустить подготовку стикеров. Попробуйте позже")
		}
		return nil, nil
	case tokenClose:
		if err := t.WB.SendSupplyToDeliver(t.Ctx, p.SupplyID); err != nil {
			return nil, err
		}
		t.Answer.Toast(t.Ctx, t.Event, "Поставка передана в доставку")
		s.sendSupplyQR(t, p.SupplyID)
		return &bot.Locator{State: s.Name(), Params: p}, nil
	case tokenDelete:
		if err := t.WB.DeleteSupply(t.Ctx, p.SupplyID); err != nil {
			return nil, err
		}
		t.Answer.Toast(t.Ctx, t.Event, "Поставка удалена")
		return &bot.Locator{State: bot.StateSupplies}, nil
	case tokenQR:
		s.sendSupplyQR(t, p.SupplyID)
		return nil, nil
	}
	return nil, nil
}

// sendSupplyQR шлёт QR-код поставки отдельной картинкой. Неудача не роняет
// ход диалога: QR можно запросить повторно.
func (s *Supply) sendSupplyQR(t *bot.Turn, supplyID string) {
	qr, err := t.WB.GetSupplyQRCode(t.Ctx, supplyID)
	if err != nil || qr == nil {
		t.Answer.Notify(t.Ctx, t.Event.ChatID, "Не удалось получить QR-код поставки")
		return
	}
	photo, err := stickers.SupplyPhoto(*qr)
	if err != nil {
		t.Answer.Notify(t.Ctx, t.Event.ChatID, "Не удалось получить QR-код поставки")
		return
	}
	if err := t.Answer.SendPhoto(t.Ctx, t.Event.ChatID, photo); err != nil {
		t.Answer.Notify(t.Ctx, t.Event.ChatID, "Не удалось отправить QR-код поставки")
	}
}
