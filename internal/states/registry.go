package states

import (
	"supplies-bot/internal/bot"
)

// All собирает полный набор экранов для регистрации в диспетчере.
func All(cfg Config) []bot.State {
	return []bot.State{
		NewMainMenu(),
		NewSupplies(cfg.PageSize),
		NewSupply(),
		NewCreateSupply(),
		NewEditSupply(cfg.PageSize),
		NewOrderDetails(),
		NewAddOrder(),
		NewNewOrders(cfg.PageSize),
		NewWaitingOrders(cfg.SuppliesQuantity),
	}
}
