// Пакет paginator режет длинные списки на страницы размера чата и рисует
// строку навигации. Номера страниц считаются с единицы; запрос страницы вне
// диапазона молча прижимается к ближайшей существующей - пока есть хоть один
// элемент, пустая страница не рендерится никогда.
package paginator

import (
	"strconv"

	"supplies-bot/pkg/telegram"
)

type Paginator[T any] struct {
	items    []T
	pageSize int
	label    func(T) string
	token    func(T) string
}

// New создаёт пагинатор. label и token проецируют элемент в текст кнопки и
// в токен перехода; префиксы токенов - забота вызывающего.
func New[T any](items []T, pageSize int, label func(T) string, token func(T) string) *Paginator[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Paginator[T]{items: items, pageSize: pageSize, label: label, token: token}
}

func (p *Paginator[T]) TotalPages() int {
	return (len(p.items) + p.pageSize - 1) / p.pageSize
}

// Clamp прижимает номер страницы к диапазону [1, TotalPages].
func (p *Paginator[T]) Clamp(page int) int {
	total := p.TotalPages()
	if total == 0 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Page возвращает элементы запрошенной страницы.
func (p *Paginator[T]) Page(page int) []T {
	if len(p.items) == 0 {
		return nil
	}
	page = p.Clamp(page)
	start := (page - 1) * p.pageSize
	end := start + p.pageSize
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}

// Keyboard рендерит страницу: по кнопке на элемент плюс строка навигации
// "1 < n > N". Навигация опускается, когда страница всего одна. Токены
// навигации - pagePrefix с номером страницы.
func (p *Paginator[T]) Keyboard(page int, tokenPrefix, pagePrefix string) [][]telegram.InlineKeyboardButton {
	if len(p.items) == 0 {
		return nil
	}
	page = p.Clamp(page)
	total := p.TotalPages()

	var keyboard [][]telegram.InlineKeyboardButton
	for _, item := range p.Page(page) {
		keyboard = append(keyboard, []telegram.InlineKeyboardButton{{
			Text:         p.label(item),
			CallbackData: tokenPrefix + p.token(item),
		}})
	}

	if total > 1 {
		pageToken := func(n int) string {
			return pagePrefix + strconv.Itoa(p.Clamp(n))
		}
		keyboard = append(keyboard, []telegram.InlineKeyboardButton{
			{Text: "1", CallbackData: pageToken(1)},
			{Text: "<", CallbackData: pageToken(page - 1)},
			{Text: strconv.Itoa(page), CallbackData: pageToken(page)},
			{Text: ">", CallbackData: pageToken(page + 1)},
			{Text: strconv.Itoa(total), CallbackData: pageToken(total)},
		})
	}
	return keyboard
}
