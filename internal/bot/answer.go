package bot

import (
	"context"

	"go.uber.org/zap"

	"supplies-bot/pkg/telegram"
)

// Answerer доставляет оператору очередной экран. Предпочитает редактирование
// последнего сообщения на месте; если транспорт не может отредактировать -
// удаляет старое сообщение и шлёт новое. Оператор в любом случае видит
// актуальный экран.
type Answerer struct {
	tg     telegram.ServiceInterface
	logger *zap.Logger
}

func NewAnswerer(tg telegram.ServiceInterface, logger *zap.Logger) *Answerer {
	return &Answerer{tg: tg, logger: logger}
}

// Answer рендерит текст с клавиатурой в чат.
//
// editInPlace=true: пробуем отредактировать сообщение события. Отказ
// "message is not modified" - не ошибка: молча подтверждаем нажатие кнопки и
// выходим. Любой другой отказ (сообщение старое, удалено) - откат: удаляем
// старое сообщение (ошибки глотаем, его могло уже не быть) и безусловно шлём
// новое.
func (a *Answerer) Answer(ctx context.Context, ev Event, session *Session, text string, keyboard [][]telegram.InlineKeyboardButton, editInPlace bool, options ...telegram.MessageOption) error {
	if len(keyboard) > 0 {
		options = append(options, telegram.WithKeyboard(keyboard))
	}

	if editInPlace && ev.MessageID != 0 {
		err := a.tg.EditMessageText(ctx, ev.ChatID, ev.MessageID, text, options...)
		if err == nil {
			session.MessageID = ev.MessageID
			return nil
		}
		if telegram.IsNotModified(err) {
			a.Toast(ctx, ev, "")
			return nil
		}
		a.logger.Debug("не удалось отредактировать сообщение, отправляем новое",
			zap.Int64("chat_id", ev.ChatID),
			zap.Int("message_id", ev.MessageID),
			zap.Error(err))

		if delErr := a.tg.DeleteMessage(ctx, ev.ChatID, ev.MessageID); delErr != nil {
			a.logger.Debug("не удалось удалить сообщение", zap.Error(delErr))
		}
	}

	messageID, err := a.tg.SendMessage(ctx, ev.ChatID, text, options...)
	if err != nil {
		return err
	}
	session.MessageID = messageID
	return nil
}

// Toast показывает короткое всплывающее уведомление в ответ на нажатие
// кнопки. Для текстовых событий уведомлять нечего.
func (a *Answerer) Toast(ctx context.Context, ev Event, text string) {
	if ev.CallbackID == "" {
		return
	}
	if err := a.tg.AnswerCallbackQuery(ctx, ev.CallbackID, text); err != nil {
		a.logger.Debug("не удалось ответить на callback", zap.Error(err))
	}
}

// SendPhoto отправляет изображение отдельным сообщением.
func (a *Answerer) SendPhoto(ctx context.Context, chatID int64, photo []byte) error {
	return a.tg.SendPhoto(ctx, chatID, photo)
}

// Notify шлёт оператору отдельное текстовое сообщение (вне экрана диалога).
func (a *Answerer) Notify(ctx context.Context, chatID int64, text string) {
	if _, err := a.tg.SendMessage(ctx, chatID, text); err != nil {
		a.logger.Warn("не удалось отправить уведомление", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
