// Пакет states содержит экраны диалога оператора.
//
// Кнопочные токены - короткие ASCII-строки вида "supply#<id>", "order#<id>",
// "page#<n>" или голое ключевое слово действия. Токен, выданный рендером,
// принимается реакцией того же экрана без изменений.
package states

import (
	"strconv"
	"strings"

	"supplies-bot/pkg/telegram"
)

const (
	tokenStart          = "start"
	tokenShowSupplies   = "show_supplies"
	tokenNewOrders      = "new_orders"
	tokenCheckOrders    = "check_orders"
	tokenNewSupply      = "new_supply"
	tokenClosedSupplies = "closed_supplies"
	tokenStickers       = "stickers"
	tokenEdit           = "edit"
	tokenClose          = "close"
	tokenDelete         = "delete"
	tokenQR             = "qr"
	tokenSupplies       = "supplies"
	tokenSupply         = "supply"
	tokenAddToSupply    = "add_to_supply"
	tokenCancel         = "cancel"
	tokenReport         = "report"

	supplyTokenPrefix = "supply#"
	orderTokenPrefix  = "order#"
	pageTokenPrefix   = "page#"
)

// Config - настройки экранов.
type Config struct {
	// Размер страницы инлайн-клавиатуры
	PageSize int
	// Сколько последних закрытых поставок сканируется на ожидающие заказы
	SuppliesQuantity int
}

func mainMenuRow() []telegram.InlineKeyboardButton {
	return []telegram.InlineKeyboardButton{{Text: "Основное меню", CallbackData: tokenStart}}
}

func pageFromToken(callback string) (int, bool) {
	if !strings.HasPrefix(callback, pageTokenPrefix) {
		return 0, false
	}
	page, err := strconv.Atoi(strings.TrimPrefix(callback, pageTokenPrefix))
	if err != nil {
		return 0, false
	}
	return page, true
}

func supplyIDFromToken(callback string) (string, bool) {
	if !strings.HasPrefix(callback, supplyTokenPrefix) {
		return "", false
	}
	return strings.TrimPrefix(callback, supplyTokenPrefix), true
}

func orderIDFromToken(callback string) (int64, bool) {
	if !strings.HasPrefix(callback, orderTokenPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(callback, orderTokenPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
