package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-bot/internal/bot"
	"supplies-bot/internal/repositories"
	apperrors "supplies-bot/pkg/errors"
)

// DispatcherInterface - вход диспетчера диалога.
type DispatcherInterface interface {
	Process(ctx context.Context, ev bot.Event) error
}

// --- DTO ВЕБХУКА TELEGRAM ---

type telegramUpdate struct {
	UpdateID      int64                  `json:"update_id"`
	Message       *telegramMessage       `json:"message"`
	CallbackQuery *telegramCallbackQuery `json:"callback_query"`
}

type telegramMessage struct {
	MessageID int           `json:"message_id"`
	From      *telegramUser `json:"from"`
	Chat      telegramChat  `json:"chat"`
	Text      string        `json:"text"`
}

type telegramCallbackQuery struct {
	ID      string           `json:"id"`
	From    *telegramUser    `json:"from"`
	Message *telegramMessage `json:"message"`
	Data    string           `json:"data"`
}

type telegramUser struct {
	ID int64 `json:"id"`
}

type telegramChat struct {
	ID int64 `json:"id"`
}

// BotController принимает вебхук Telegram, отсекает посторонних и передаёт
// событие диспетчеру диалога. Telegram всегда получает 200: иначе он будет
// ретраить тот же апдейт до бесконечности.
type BotController struct {
	dispatcher DispatcherInterface
	workers    repositories.WorkerRepositoryInterface
	logger     *zap.Logger
}

func NewBotController(
	dispatcher DispatcherInterface,
	workers repositories.WorkerRepositoryInterface,
	logger *zap.Logger,
) *BotController {
	return &BotController{dispatcher: dispatcher, workers: workers, logger: logger}
}

func (ctrl *BotController) Webhook(c echo.Context) error {
	var update telegramUpdate
	if err := c.Bind(&update); err != nil {
		ctrl.logger.Warn("не удалось разобрать апдейт вебхука", zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	event, userID, ok := eventFromUpdate(update)
	if !ok {
		// Апдейты без сообщения и без кнопки (сервисные) просто подтверждаем
		return c.NoContent(http.StatusOK)
	}

	if err := ctrl.authorize(c.Request().Context(), userID); err != nil {
		if errors.Is(err, apperrors.ErrForbidden) {
			ctrl.logger.Info("отклонён чужой пользователь", zap.Int64("tg_id", userID))
		} else {
			ctrl.logger.Error("не удалось проверить доступ к боту",
				zap.Int64("tg_id", userID), zap.Error(err))
		}
		return c.NoContent(http.StatusOK)
	}

	if err := ctrl.dispatcher.Process(c.Request().Context(), event); err != nil {
		ctrl.logger.Error("ошибка обработки события",
			zap.Int64("chat_id", event.ChatID), zap.Error(err))
	}
	return c.NoContent(http.StatusOK)
}

// authorize пускает только сотрудников из белого списка.
func (ctrl *BotController) authorize(ctx context.Context, userID int64) error {
	allowed, err := ctrl.workers.HasBotAccess(ctx, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

func eventFromUpdate(update telegramUpdate) (bot.Event, int64, bool) {
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		query := update.CallbackQuery
		var userID int64
		if query.From != nil {
			userID = query.From.ID
		}
		return bot.Event{
			ChatID:     query.Message.Chat.ID,
			MessageID:  query.Message.MessageID,
			CallbackID: query.ID,
			Callback:   query.Data,
		}, userID, true
	}
	if update.Message != nil && update.Message.Text != "" {
		message := update.Message
		var userID int64
		if message.From != nil {
			userID = message.From.ID
		}
		return bot.Event{
			ChatID:    message.Chat.ID,
			MessageID: message.MessageID,
			Text:      message.Text,
		}, userID, true
	}
	return bot.Event{}, 0, false
}
