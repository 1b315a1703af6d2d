// Пакет jobs выполняет долгие операции вне хода диалога: подготовку архива
// стикеров и выгрузку отчётов. Очередь ограничена, постановка задания
// никогда не блокирует обработчик вебхука.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"supplies-bot/internal/reports"
	"supplies-bot/internal/stickers"
	"supplies-bot/pkg/telegram"
	"supplies-bot/pkg/wbapi"
)

// ErrQueueFull возвращается, когда очередь заданий переполнена.
var ErrQueueFull = fmt.Errorf("очередь заданий переполнена")

// Таймаут одного задания: выкачать сотню стикеров дольше минуты - уже сбой
const taskTimeout = 5 * time.Minute

type task struct {
	// Сквозной идентификатор задания в логах
	id     string
	name   string
	chatID int64
	run    func(ctx context.Context) error
}

// Runner - пул воркеров над буферизованной очередью. Stop переводит пул в
// режим слива: новые задания не принимаются, принятые доделываются.
type Runner struct {
	wb       wbapi.ClientInterface
	tg       telegram.ServiceInterface
	logger   *zap.Logger
	quantity int

	queue chan task

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

type RunnerConfig struct {
	Workers   int
	QueueSize int
	// Сколько последних закрытых поставок сканируется для отчёта
	SuppliesQuantity int
}

func NewRunner(wb wbapi.ClientInterface, tg telegram.ServiceInterface, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	r := &Runner{
		wb:       wb,
		tg:       tg,
		logger:   logger,
		quantity: cfg.SuppliesQuantity,
		queue:    make(chan task, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return r
}

// Stop закрывает очередь и дожидается завершения принятых заданий.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// CreateStickers ставит в очередь подготовку архива стикеров поставки.
func (r *Runner) CreateStickers(_ context.Context, chatID int64, supplyID string) error {
	return r.schedule(task{
		id:     uuid.NewString(),
		name:   "stickers",
		chatID: chatID,
		run: func(ctx context.Context) error {
			return r.buildStickers(ctx, chatID, supplyID)
		},
	})
}

// CreateWaitingReport ставит в очередь выгрузку ожидающих заказов в Excel.
func (r *Runner) CreateWaitingReport(_ context.Context, chatID int64) error {
	return r.schedule(task{
		id:     uuid.NewString(),
		name:   "waiting_report",
		chatID: chatID,
		run: func(ctx context.Context) error {
			return r.buildWaitingReport(ctx, chatID)
		},
	})
}

func (r *Runner) schedule(t task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrQueueFull
	}
	select {
	case r.queue <- t:
		return nil
	default:
		r.logger.Warn("очередь заданий переполнена",
			zap.String("job_id", t.id), zap.String("task", t.name))
		return ErrQueueFull
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()
	for t := range r.queue {
		r.execute(id, t)
	}
}

// execute выполняет задание с таймаутом и ловит панику: упавшее задание не
// должно убить воркера.
func (r *Runner) execute(workerID int, t task) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("паника в фоновом задании",
				zap.Int("worker", workerID),
				zap.String("job_id", t.id),
				zap.String("task", t.name),
				zap.Any("panic", rec))
			r.notifyFailure(ctx, t.chatID)
		}
	}()

	if err := t.run(ctx); err != nil {
		r.logger.Error("ошибка фонового задания",
			zap.Int("worker", workerID),
			zap.String("job_id", t.id),
			zap.String("task", t.name),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		r.notifyFailure(ctx, t.chatID)
		return
	}
	r.logger.Info("фоновое задание выполнено",
		zap.Int("worker", workerID),
		zap.String("job_id", t.id),
		zap.String("task", t.name),
		zap.Duration("elapsed", time.Since(started)))
}

func (r *Runner) notifyFailure(ctx context.Context, chatID int64) {
	if _, err := r.tg.SendMessage(ctx, chatID, "Не удалось подготовить файл. Попробуйте позже"); err != nil {
		r.logger.Warn("не удалось уведомить об ошибке задания", zap.Error(err))
	}
}

func (r *Runner) buildStickers(ctx context.Context, chatID int64, supplyID string) error {
	orders, err := r.wb.GetSupplyOrders(ctx, supplyID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		_, err := r.tg.SendMessage(ctx, chatID, "В поставке нет заказов, стикеров не будет")
		return err
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	codes, err := r.wb.GetOrderQRCodes(ctx, orderIDs)
	if err != nil {
		return err
	}
	products, err := r.wb.GetProducts(ctx, stickers.Articles(orders))
	if err != nil {
		return err
	}

	archive, err := stickers.Archive(supplyID, orders, products, codes)
	if err != nil {
		return err
	}
	return r.tg.SendDocument(ctx, chatID, stickers.ArchiveName(supplyID),
		archive, fmt.Sprintf("Стикеры поставки %s", supplyID))
}

func (r *Runner) buildWaitingReport(ctx context.Context, chatID int64) error {
	orders, err := wbapi.WaitingOrders(ctx, r.wb, r.quantity)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		_, err := r.tg.SendMessage(ctx, chatID, "Нет заказов, ожидающих сортировки")
		return err
	}

	report, err := reports.Waiting(orders)
	if err != nil {
		return err
	}
	return r.tg.SendDocument(ctx, chatID, reports.WaitingReportName,
		report, "Заказы, ожидающие сортировки")
}
