package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"supplies-bot/internal/repositories"
	"supplies-bot/pkg/wbapi"
)

const sessionKey = "bot_session:%d"

// QRCache - кеш стикеров заказов одной поставки. Валиден, только пока набор
// заказов поставки в точности совпадает с записанным: любое расхождение
// означает устаревшие данные и принудительную перезагрузку.
type QRCache struct {
	OrderIDs []int64             `json:"order_ids"`
	Codes    []wbapi.OrderQRCode `json:"codes"`
}

// Matches сравнивает записанный набор заказов с текущим как множества.
func (c *QRCache) Matches(orderIDs []int64) bool {
	if c == nil || len(c.OrderIDs) != len(orderIDs) {
		return false
	}
	known := make(map[int64]struct{}, len(c.OrderIDs))
	for _, id := range c.OrderIDs {
		known[id] = struct{}{}
	}
	for _, id := range orderIDs {
		if _, ok := known[id]; !ok {
			return false
		}
	}
	return true
}

// Session - слот оператора: текущий локатор плюс короткоживущие рабочие
// данные. Перезаписывается целиком на каждом ходе диалога.
type Session struct {
	Locator *Locator `json:"locator,omitempty"`
	// Последнее сообщение бота - цель для редактирования на месте
	MessageID int      `json:"message_id,omitempty"`
	QRCodes   *QRCache `json:"qr_codes,omitempty"`
}

// SessionStore - хранилище сессий. Диспетчер - единственный, кто его трогает.
type SessionStore interface {
	// Get возвращает (nil, nil), если сессии ещё нет.
	Get(ctx context.Context, chatID int64) (*Session, error)
	Put(ctx context.Context, chatID int64, session *Session) error
}

// RedisSessionStore хранит сессии в Redis через репозиторий кеша.
type RedisSessionStore struct {
	cache repositories.CacheRepositoryInterface
	ttl   time.Duration
}

func NewRedisSessionStore(cache repositories.CacheRepositoryInterface, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{cache: cache, ttl: ttl}
}

func (s *RedisSessionStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	raw, err := s.cache.Get(ctx, fmt.Sprintf(sessionKey, chatID))
	if err != nil || raw == "" {
		// Отсутствующая или протухшая сессия - не ошибка, диалог начнётся заново
		return nil, nil
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, nil
	}
	return &session, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, chatID int64, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}
	return s.cache.Set(ctx, fmt.Sprintf(sessionKey, chatID), string(raw), s.ttl)
}

// MemorySessionStore - хранилище в памяти для тестов и локального запуска.
type MemorySessionStore struct {
	sessions map[int64]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]*Session)}
}

func (s *MemorySessionStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	return s.sessions[chatID], nil
}

func (s *MemorySessionStore) Put(ctx context.Context, chatID int64, session *Session) error {
	s.sessions[chatID] = session
	return nil
}
