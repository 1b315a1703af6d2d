// Файл: pkg/telegram/service.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// --- ОСНОВНОЙ ИНТЕРФЕЙС СЕРВИСА ---

type ServiceInterface interface {
	// SendMessage отправляет новое сообщение и возвращает его message_id.
	SendMessage(ctx context.Context, chatID int64, text string, options ...MessageOption) (int, error)

	// EditMessageText редактирует существующее сообщение на месте.
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, options ...MessageOption) error

	// DeleteMessage удаляет сообщение. Сообщение может быть уже удалено —
	// это решает вызывающая сторона.
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// AnswerCallbackQuery отвечает на нажатие inline-кнопки (всплывающий toast).
	AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string) error

	// SendDocument отправляет файл как вложение.
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error

	// SendPhoto отправляет изображение.
	SendPhoto(ctx context.Context, chatID int64, photo []byte) error
}

// --- СТРУКТУРА СЕРВИСА ---

type Service struct {
	botToken   string
	apiBaseURL string
	httpClient *http.Client
	debug      bool
}

type ServiceOption func(*Service)

// WithAPIBaseURL переопределяет адрес Telegram API (для тестов).
func WithAPIBaseURL(baseURL string) ServiceOption {
	return func(s *Service) {
		s.apiBaseURL = strings.TrimRight(baseURL, "/")
	}
}

func NewService(botToken string, options ...ServiceOption) ServiceInterface {
	debug := strings.Contains(strings.ToLower(os.Getenv("DEBUG")), "telegram")

	s := &Service{
		botToken:   botToken,
		apiBaseURL: "https://api.telegram.org",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		debug:      debug,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// --- ОШИБКИ TELEGRAM API ---

// APIError - структурированная ошибка Telegram API.
// Telegram всегда отвечает HTTP 200, реальная ошибка лежит в теле ответа.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API ошибка (%s): код %d, описание: %s", e.Method, e.Code, e.Description)
}

// IsNotModified распознаёт отказ в no-op редактировании ("message is not
// modified"). Telegram не даёт структурированного подкода, только код 400 и
// текст описания, поэтому после проверки кода остаётся сверка по подстроке.
func IsNotModified(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Description), "message is not modified")
}

// --- ОСНОВНЫЕ СТРУКТУРЫ ЗАПРОСОВ ---

type sendMessageRequest struct {
	ChatID      int64       `json:"chat_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode,omitempty"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

type inlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type editMessageTextRequest struct {
	ChatID      int64       `json:"chat_id"`
	MessageID   int         `json:"message_id"`
	Text        string      `json:"text"`
	ParseMode   string      `json:"parse_mode,omitempty"`
	ReplyMarkup interface{} `json:"reply_markup,omitempty"`
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

type callbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}

type MessageOption func(*sendMessageRequest)

func WithKeyboard(rows [][]InlineKeyboardButton) MessageOption {
	return func(req *sendMessageRequest) {
		if len(rows) > 0 {
			req.ReplyMarkup = inlineKeyboardMarkup{InlineKeyboard: rows}
		}
	}
}

func WithHTML() MessageOption {
	return func(req *sendMessageRequest) {
		req.ParseMode = "HTML"
	}
}

// KeyboardFromOptions применяет опции к пустому запросу и возвращает
// собранную клавиатуру. Нужна подменам транспорта в тестах.
func KeyboardFromOptions(options []MessageOption) [][]InlineKeyboardButton {
	req := &sendMessageRequest{}
	for _, opt := range options {
		opt(req)
	}
	markup, ok := req.ReplyMarkup.(inlineKeyboardMarkup)
	if !ok {
		return nil
	}
	return markup.InlineKeyboard
}

// --- РЕАЛИЗАЦИЯ ---

func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, options ...MessageOption) (int, error) {
	if text == "" {
		text = " "
	}

	reqPayload := &sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	for _, opt := range options {
		opt(reqPayload)
	}

	result, err := s.sendRequest(ctx, "sendMessage", reqPayload)
	if err != nil {
		return 0, err
	}

	var sent struct {
		MessageID int `json:"message_id"`
	}
	if err := json.Unmarshal(result, &sent); err != nil {
		return 0, fmt.Errorf("ошибка декодирования ответа sendMessage: %w", err)
	}
	return sent.MessageID, nil
}

func (s *Service) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, options ...MessageOption) error {
	if text == "" {
		text = " "
	}

	tempSendReq := &sendMessageRequest{}
	for _, opt := range options {
		opt(tempSendReq)
	}

	editReq := &editMessageTextRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   tempSendReq.ParseMode,
		ReplyMarkup: tempSendReq.ReplyMarkup,
	}

	_, err := s.sendRequest(ctx, "editMessageText", editReq)
	return err
}

func (s *Service) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, err := s.sendRequest(ctx, "deleteMessage", &deleteMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

// Ответ на callback-кнопку
func (s *Service) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string) error {
	if callbackQueryID == "" {
		return fmt.Errorf("callbackQueryID не может быть пустым")
	}

	_, err := s.sendRequest(ctx, "answerCallbackQuery", callbackQueryRequest{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	})
	return err
}

func (s *Service) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	fields := map[string]string{
		"chat_id": fmt.Sprintf("%d", chatID),
	}
	if caption != "" {
		fields["caption"] = caption
	}
	return s.sendFile(ctx, "sendDocument", "document", filename, data, fields)
}

func (s *Service) SendPhoto(ctx context.Context, chatID int64, photo []byte) error {
	fields := map[string]string{
		"chat_id": fmt.Sprintf("%d", chatID),
	}
	return s.sendFile(ctx, "sendPhoto", "photo", "photo.png", photo, fields)
}

// --- ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ ---

func (s *Service) sendRequest(ctx context.Context, methodName string, payload interface{}) (json.RawMessage, error) {
	if s.botToken == "" {
		return nil, fmt.Errorf("токен Telegram-бота не установлен")
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	apiURL := fmt.Sprintf("%s/bot%s/%s", s.apiBaseURL, s.botToken, methodName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, methodName, reqBody)
}

// sendFile отправляет multipart-запрос с файлом (sendDocument/sendPhoto).
func (s *Service) sendFile(ctx context.Context, methodName, fileField, filename string, data []byte, fields map[string]string) error {
	if s.botToken == "" {
		return fmt.Errorf("токен Telegram-бота не установлен")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("ошибка формирования multipart-запроса: %w", err)
		}
	}
	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("ошибка формирования multipart-запроса: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("ошибка записи файла в запрос: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("ошибка завершения multipart-запроса: %w", err)
	}

	apiURL := fmt.Sprintf("%s/bot%s/%s", s.apiBaseURL, s.botToken, methodName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, &body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = s.do(req, methodName, nil)
	return err
}

func (s *Service) do(req *http.Request, methodName string, reqBody []byte) (json.RawMessage, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки запроса в Telegram: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if s.debug {
		fmt.Printf("[telegram] %s\nRequest: %s\nResponse: %s\n\n", methodName, string(reqBody), string(body))
	}

	// Telegram всегда возвращает 200 OK, даже при ошибках
	var telegramResp struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description,omitempty"`
		ErrorCode   int             `json:"error_code,omitempty"`
		Result      json.RawMessage `json:"result,omitempty"`
	}

	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа Telegram API: %w", err)
	}

	if !telegramResp.OK {
		return nil, &APIError{
			Method:      methodName,
			Code:        telegramResp.ErrorCode,
			Description: telegramResp.Description,
		}
	}

	return telegramResp.Result, nil
}
