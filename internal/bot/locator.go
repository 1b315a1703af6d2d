package bot

// StateName - имя экрана диалога. Набор имён фиксирован на этапе компиляции,
// реестр состояний проверяется при старте.
type StateName string

const (
	StateMainMenu         StateName = "MAIN_MENU"
	StateSupplies         StateName = "SUPPLIES"
	StateSupply           StateName = "SUPPLY"
	StateNewSupply        StateName = "NEW_SUPPLY"
	StateEditSupply       StateName = "EDIT_SUPPLY"
	StateOrderDetails     StateName = "ORDER_DETAILS"
	StateAddOrderToSupply StateName = "ADD_ORDER_TO_SUPPLY"
	StateNewOrders        StateName = "NEW_ORDERS"
	StateWaitingOrders    StateName = "CHECK_WAITING_ORDERS"
)

// Params - типизированные параметры экрана. Вместе с именем состояния
// полностью определяют, что и из чего рендерить.
type Params struct {
	SupplyID string `json:"supply_id,omitempty"`
	OrderID  int64  `json:"order_id,omitempty"`
	Page     int    `json:"page,omitempty"`
	// Показывать ли закрытые поставки вместе с открытыми
	ShowClosed bool `json:"show_closed,omitempty"`
}

// Locator однозначно указывает на экран диалога и данные для его
// восстановления. Значение неизменяемое: на каждый переход строится новый.
type Locator struct {
	State  StateName `json:"state"`
	Params Params    `json:"params"`
}
