package states

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"supplies-bot/internal/bot"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// fakeWB подменяет клиент маркетплейса заранее заданными данными и пишет
// журнал мутирующих вызовов.
type fakeWB struct {
	supplies  []wbapi.Supply
	orders    map[string][]wbapi.Order
	newOrders []wbapi.Order
	codes     []wbapi.OrderQRCode
	statuses  []wbapi.OrderStatus

	createdSupplies []string
	newSupplyID     string
	deleted         []string
	closed          []string
	assigned        map[string][]int64
	qrCalls         int
}

func (f *fakeWB) GetSupplies(_ context.Context, limit, next int) ([]wbapi.Supply, int, error) {
	return f.supplies, 0, nil
}

func (f *fakeWB) GetSupply(_ context.Context, supplyID string) (*wbapi.Supply, error) {
	for i := range f.supplies {
		if f.supplies[i].ID == supplyID {
			return &f.supplies[i], nil
		}
	}
	return nil, nil
}

func (f *fakeWB) GetSupplyOrders(_ context.Context, supplyID string) ([]wbapi.Order, error) {
	return f.orders[supplyID], nil
}

func (f *fakeWB) GetNewOrders(_ context.Context) ([]wbapi.Order, error) {
	return f.newOrders, nil
}

func (f *fakeWB) CreateSupply(_ context.Context, name string) (string, error) {
	f.createdSupplies = append(f.createdSupplies, name)
	return f.newSupplyID, nil
}

func (f *fakeWB) DeleteSupply(_ context.Context, supplyID string) error {
	f.deleted = append(f.deleted, supplyID)
	return nil
}

func (f *fakeWB) SendSupplyToDeliver(_ context.Context, supplyID string) error {
	f.closed = append(f.closed, supplyID)
	return nil
}

func (f *fakeWB) AddOrderToSupply(_ context.Context, supplyID string, orderID int64) error {
	if f.assigned == nil {
		f.assigned = make(map[string][]int64)
	}
	f.assigned[supplyID] = append(f.assigned[supplyID], orderID)
	return nil
}

func (f *fakeWB) GetOrderQRCodes(_ context.Context, orderIDs []int64) ([]wbapi.OrderQRCode, error) {
	f.qrCalls++
	return f.codes, nil
}

func (f *fakeWB) GetSupplyQRCode(_ context.Context, supplyID string) (*wbapi.SupplyQRCode, error) {
	return &wbapi.SupplyQRCode{Barcode: "BAR", File: ""}, nil
}

func (f *fakeWB) GetOrdersStatus(_ context.Context, orderIDs []int64) ([]wbapi.OrderStatus, error) {
	return f.statuses, nil
}

func (f *fakeWB) GetProducts(_ context.Context, articles []string) ([]wbapi.Product, error) {
	return nil, nil
}

// fakeTG записывает исходящие сообщения и клавиатуры.
type fakeTG struct {
	lastText     string
	lastKeyboard [][]telegram.InlineKeyboardButton
	toasts       []string
	sent         int
	edited       int
	photos       int
}

func (f *fakeTG) record(text string, options []telegram.MessageOption) {
	f.lastText = text
	f.lastKeyboard = telegram.KeyboardFromOptions(options)
}

func (f *fakeTG) SendMessage(_ context.Context, _ int64, text string, options ...telegram.MessageOption) (int, error) {
	f.sent++
	f.record(text, options)
	return 100 + f.sent, nil
}

func (f *fakeTG) EditMessageText(_ context.Context, _ int64, _ int, text string, options ...telegram.MessageOption) error {
	f.edited++
	f.record(text, options)
	return nil
}

func (f *fakeTG) DeleteMessage(_ context.Context, _ int64, _ int) error { return nil }

func (f *fakeTG) AnswerCallbackQuery(_ context.Context, _ string, text string) error {
	f.toasts = append(f.toasts, text)
	return nil
}

func (f *fakeTG) SendDocument(_ context.Context, _ int64, _ string, _ []byte, _ string) error {
	return nil
}

func (f *fakeTG) SendPhoto(_ context.Context, _ int64, _ []byte) error {
	f.photos++
	return nil
}

// fakeJobs записывает постановку фоновых заданий.
type fakeJobs struct {
	stickers []string
	reports  int
	err      error
}

func (f *fakeJobs) CreateStickers(_ context.Context, _ int64, supplyID string) error {
	if f.err != nil {
		return f.err
	}
	f.stickers = append(f.stickers, supplyID)
	return nil
}

func (f *fakeJobs) CreateWaitingReport(_ context.Context, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.reports++
	return nil
}

func newTurn(t *testing.T, wb *fakeWB, tg *fakeTG, jobs *fakeJobs, ev bot.Event) *bot.Turn {
	t.Helper()
	return &bot.Turn{
		Ctx:     context.Background(),
		Event:   ev,
		Session: &bot.Session{},
		WB:      wb,
		Answer:  bot.NewAnswerer(tg, zap.NewNop()),
		Jobs:    jobs,
		Logger:  zap.NewNop(),
	}
}

func callbackEvent(data string) bot.Event {
	return bot.Event{ChatID: 7, MessageID: 5, CallbackID: "cb", Callback: data}
}

func textEvent(text string) bot.Event {
	return bot.Event{ChatID: 7, MessageID: 6, Text: text}
}

// keyboardTokens собирает токены всех кнопок в порядке обхода.
func keyboardTokens(keyboard [][]telegram.InlineKeyboardButton) []string {
	var tokens []string
	for _, row := range keyboard {
		for _, button := range row {
			tokens = append(tokens, button.CallbackData)
		}
	}
	return tokens
}
