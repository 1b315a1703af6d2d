package entities

import (
	"database/sql"
	"time"
)

// Worker - сотрудник склада. Админка сотрудников живёт в отдельной системе,
// боту нужен только белый список доступа по telegram id.
type Worker struct {
	ID           uint64
	Fio          string
	TgID         int64
	HasBotAccess bool
	CreatedAt    time.Time
	UpdatedAt    sql.NullTime
}
