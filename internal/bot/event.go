package bot

// Event - одно входящее событие чата, уже очищенное от транспортных деталей.
// Либо текстовое сообщение (Text), либо нажатие inline-кнопки (Callback).
type Event struct {
	ChatID int64
	// Сообщение, к которому привязано событие. Для нажатия кнопки - сообщение
	// бота с клавиатурой, его и редактируем при ответе.
	MessageID  int
	Text       string
	CallbackID string
	Callback   string
}

func (e Event) IsCallback() bool {
	return e.CallbackID != ""
}

func (e Event) IsMessage() bool {
	return !e.IsCallback() && e.Text != ""
}
