package bot

import (
	"context"

	"go.uber.org/zap"

	"supplies-bot/pkg/wbapi"
)

// JobsInterface - планировщик фоновых заданий. Постановка задания не должна
// блокировать ход диалога.
type JobsInterface interface {
	// CreateStickers запускает подготовку архива стикеров поставки.
	CreateStickers(ctx context.Context, chatID int64, supplyID string) error
	// CreateWaitingReport запускает выгрузку ожидающих сортировки заказов в Excel.
	CreateWaitingReport(ctx context.Context, chatID int64) error
}

// Turn - контекст одного хода диалога. Все зависимости состояния приходят
// сюда явно: никаких глобальных клиентов.
type Turn struct {
	Ctx     context.Context
	Event   Event
	Session *Session
	WB      wbapi.ClientInterface
	Answer  *Answerer
	Jobs    JobsInterface
	Logger  *zap.Logger
}

// State - один экран диалога.
//
// Enter загружает данные, рендерит ответ и возвращает локатор для сохранения
// в сессии (он может быть обогащён по сравнению с запрошенным). Exit -
// необязательная зачистка, вызывается только при смене имени состояния.
// Process разбирает входящее событие и возвращает либо новый локатор
// (переход), либо nil (остаёмся, без перерисовки).
type State interface {
	Name() StateName
	Enter(t *Turn, p Params) (Locator, error)
	Exit(t *Turn, p Params) error
	Process(t *Turn, p Params) (*Locator, error)
}

// NopExit - заготовка для состояний без зачистки.
type NopExit struct{}

func (NopExit) Exit(*Turn, Params) error { return nil }
