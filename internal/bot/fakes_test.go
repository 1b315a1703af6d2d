package bot

import (
	"context"
	"net/http"

	"supplies-bot/pkg/telegram"
)

// fakeTelegram записывает вызовы транспорта и отдаёт настроенные отказы.
type fakeTelegram struct {
	editErr error
	sendErr error

	sentMessages   []string
	editedMessages []string
	deletedIDs     []int
	toasts         []string
	documents      []string
	photos         int

	nextMessageID int
}

func (f *fakeTelegram) SendMessage(_ context.Context, _ int64, text string, _ ...telegram.MessageOption) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	f.sentMessages = append(f.sentMessages, text)
	f.nextMessageID++
	return 1000 + f.nextMessageID, nil
}

func (f *fakeTelegram) EditMessageText(_ context.Context, _ int64, messageID int, text string, _ ...telegram.MessageOption) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.editedMessages = append(f.editedMessages, text)
	return nil
}

func (f *fakeTelegram) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	f.deletedIDs = append(f.deletedIDs, messageID)
	return nil
}

func (f *fakeTelegram) AnswerCallbackQuery(_ context.Context, _ string, text string) error {
	f.toasts = append(f.toasts, text)
	return nil
}

func (f *fakeTelegram) SendDocument(_ context.Context, _ int64, filename string, _ []byte, _ string) error {
	f.documents = append(f.documents, filename)
	return nil
}

func (f *fakeTelegram) SendPhoto(_ context.Context, _ int64, _ []byte) error {
	f.photos++
	return nil
}

func notModifiedErr() error {
	return &telegram.APIError{
		Method:      "editMessageText",
		Code:        http.StatusBadRequest,
		Description: "Bad Request: message is not modified",
	}
}

func cannotEditErr() error {
	return &telegram.APIError{
		Method:      "editMessageText",
		Code:        http.StatusBadRequest,
		Description: "Bad Request: message can't be edited",
	}
}
