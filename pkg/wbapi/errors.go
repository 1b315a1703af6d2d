package wbapi

import (
	"errors"
	"fmt"
	"io"
	"net/url"
)

// ErrNotAuthenticated - клиент создан без токена. Фатально на старте,
// на уровне отдельного вызова не восстанавливается.
var ErrNotAuthenticated = errors.New("клиент WB API не авторизован")

// MarketplaceError - структурированная ошибка маркетплейса (4xx/5xx с телом).
// Такие ошибки не ретраятся, а показываются оператору.
type MarketplaceError struct {
	Code    string
	Message string
}

func (e *MarketplaceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// isTransient отделяет сетевые сбои (ретраим) от ошибок уровня API (нет).
// Ошибки транспорта http.Client приходят как *url.Error, обрыв тела ответа -
// как io.ErrUnexpectedEOF.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var marketplaceErr *MarketplaceError
	if errors.As(err, &marketplaceErr) {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
