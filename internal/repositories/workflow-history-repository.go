package repositories

import (
	"context"
	"fmt"

	"sourcing-system/internal/entities"

	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkflowHistoryRepositoryInterface interface {
	Insert(ctx context.Context, item *entities.WorkflowHistory) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]entities.WorkflowHistory, error)
}

// WorkflowHistoryRepository - журнал переходов. Пишется слушателем шины
// событий, вне транзакции самого перехода.
type WorkflowHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewWorkflowHistoryRepository(storage *pgxpool.Pool) WorkflowHistoryRepositoryInterface {
	return &WorkflowHistoryRepository{storage: storage}
}

func (r *WorkflowHistoryRepository) Insert(ctx context.Context, item *entities.WorkflowHistory) error {
	query := `
		INSERT INTO workflow_history (id, entity_type, entity_id, actor_id, event_type, old_value, new_value, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.storage.Exec(ctx, query,
		item.ID, item.EntityType, item.EntityID, item.ActorID, item.EventType,
		item.OldValue, item.NewValue, item.Comment)
	if err != nil {
		return fmt.Errorf("ошибка записи в журнал переходов: %w", err)
	}
	return nil
}

func (r *WorkflowHistoryRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]entities.WorkflowHistory, error) {
	query := `
		SELECT id, entity_type, entity_id, actor_id, event_type, old_value, new_value, comment, created_at
		FROM workflow_history
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at`
	rows, err := r.storage.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала переходов: %w", err)
	}
	defer rows.Close()

	items := make([]entities.WorkflowHistory, 0)
	for rows.Next() {
		var item entities.WorkflowHistory
		err := rows.Scan(&item.ID, &item.EntityType, &item.EntityID, &item.ActorID,
			&item.EventType, &item.OldValue, &item.NewValue, &item.Comment, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования записи журнала: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
