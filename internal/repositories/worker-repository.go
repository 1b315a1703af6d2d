package repositories

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"supplies-bot/internal/entities"
	apperrors "supplies-bot/pkg/errors"
)

const (
	workerTable  = "workers"
	workerFields = "id, fio, tg_id, has_bot_access, created_at, updated_at"
)

type WorkerRepositoryInterface interface {
	// HasBotAccess проверяет, пускать ли этот telegram id к боту.
	HasBotAccess(ctx context.Context, tgID int64) (bool, error)
	FindByTgID(ctx context.Context, tgID int64) (*entities.Worker, error)
}

type workerRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewWorkerRepository(storage *pgxpool.Pool, logger *zap.Logger) WorkerRepositoryInterface {
	return &workerRepository{storage: storage, logger: logger}
}

func (r *workerRepository) HasBotAccess(ctx context.Context, tgID int64) (bool, error) {
	worker, err := r.FindByTgID(ctx, tgID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return worker.HasBotAccess, nil
}

func (r *workerRepository) FindByTgID(ctx context.Context, tgID int64) (*entities.Worker, error) {
	query, args, err := sq.Select(workerFields).
		From(workerTable).
		Where(sq.Eq{"tg_id": tgID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var worker entities.Worker
	err = r.storage.QueryRow(ctx, query, args...).Scan(
		&worker.ID,
		&worker.Fio,
		&worker.TgID,
		&worker.HasBotAccess,
		&worker.CreatedAt,
		&worker.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("ошибка запроса сотрудника", zap.Int64("tg_id", tgID), zap.Error(err))
		return nil, err
	}
	return &worker, nil
}
