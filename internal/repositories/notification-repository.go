package repositories

import (
	"context"
	"fmt"

	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepositoryInterface interface {
	Insert(ctx context.Context, n *entities.Notification) error
	ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]entities.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
}

type NotificationRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *entities.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, entity_type, entity_id, message)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.storage.Exec(ctx, query, n.ID, n.UserID, n.EntityType, n.EntityID, n.Message)
	if err != nil {
		return fmt.Errorf("ошибка создания уведомления: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, onlyUnread bool) ([]entities.Notification, error) {
	query := `
		SELECT id, user_id, entity_type, entity_id, message, is_read, created_at
		FROM notifications WHERE user_id = $1`
	if onlyUnread {
		query += ` AND NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.storage.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения уведомлений: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Notification, 0)
	for rows.Next() {
		var n entities.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.EntityType, &n.EntityID, &n.Message, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования уведомления: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("ошибка отметки уведомления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound("уведомление не найдено")
	}
	return nil
}
