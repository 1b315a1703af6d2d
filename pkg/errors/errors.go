package errors

import "fmt"

var (
	// Доступ
	ErrForbidden = fmt.Errorf("доступ запрещён")

	// Общие
	ErrNotFound = fmt.Errorf("запись не найдена")
)
