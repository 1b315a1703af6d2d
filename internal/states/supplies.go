package states

import (
	"sort"

	"supplies-bot/internal/bot"
	"supplies-bot/internal/bot/paginator"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// Supplies - список поставок. По умолчанию показываются только открытые,
// по кнопке к ним добавляются закрытые.
type Supplies struct {
	bot.NopExit
	pageSize int
}

func NewSupplies(pageSize int) *Supplies {
	return &Supplies{pageSize: pageSize}
}

func (s *Supplies) Name() bot.StateName { return bot.StateSupplies }

func (s *Supplies) Enter(t *bot.Turn, p bot.Params) (bot.Locator, error) {
	filter := wbapi.FilterActive
	if p.ShowClosed {
		filter = wbapi.FilterAll
	}
	supplies, err := wbapi.FetchSupplies(t.Ctx, t.WB, filter)
	if err != nil {
		return bot.Locator{}, err
	}
	sort.Slice(supplies, func(i, j int) bool {
		return supplies[i].CreatedAt.After(supplies[j].CreatedAt)
	})

	text := "Список поставок"
	var keyboard [][]telegram.InlineKeyboardButton
	if len(supplies) == 0 {
		text = "Нет открытых поставок"
	} else {
		pag := paginator.New(supplies, s.pageSize,
			func(supply wbapi.Supply) string { return supply.String() },
			func(supply wbapi.Supply) string { return supply.ID },
		)
		p.Page = pag.Clamp(p.Page)
		keyboard = pag.Keyboard(p.Page, supplyTokenPrefix, pageTokenPrefix)
		if !p.ShowClosed {
			keyboard = append(keyboard, []telegram.InlineKeyboardButton{
				{Text: "Показать закрытые поставки", CallbackData: tokenClosedSupplies},
			})
		}
	}
	keyboard = append(keyboard,
		[]telegram.InlineKeyboardButton{{Text: "Создать новую поставку", CallbackData: tokenNewSupply}},
		mainMenuRow(),
	)

	if err := t.Answer.Answer(t.Ctx, t.Event, t.Session, text, keyboard, true); err != nil {
		return bot.Locator{}, err
	}
	return bot.Locator{State: s.Name(), Params: p}, nil
}

func (s *Supplies) Process(t *bot.Turn, p bot.Params) (*bot.Locator, error) {
	if !t.Event.IsCallback() {
		return nil, nil
	}
	switch t.Event.Callback {
	case tokenStart:
		return &bot.Locator{State: bot.StateMainMenu}, nil
	case tokenNewSupply:
		return &bot.Locator{State: bot.StateNewSupply}, nil
	case tokenClosedSupplies:
		p.ShowClosed = true
		p.Page = 1
		return &bot.Locator{State: s.Name(), Params: p}, nil
	}
	if page, ok := pageFromToken(t.Event.Callback); ok {
		p.Page = page
		return &bot.Locator{State: s.Name(), Params: p}, nil
	}
	if supplyID, ok := supplyIDFromToken(t.Event.Callback); ok {
		return &bot.Locator{State: bot.StateSupply, Params: bot.Params{SupplyID: supplyID}}, nil
	}
	return nil, nil
}
