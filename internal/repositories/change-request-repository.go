package repositories

import (
	"context"
	"errors"
	"fmt"

	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const changeRequestFields = `
	id, order_id, type, proposer_id, reason, status, new_specialist_name,
	new_end_date, extra_man_days, new_contract_value, rejection_reason,
	resolved_by, resolved_at, created_at`

type ChangeRequestRepositoryInterface interface {
	Find(ctx context.Context, id string) (*entities.ChangeRequest, error)
	ListByOrder(ctx context.Context, orderID string) ([]entities.ChangeRequest, error)
	Create(ctx context.Context, tx pgx.Tx, change *entities.ChangeRequest) error
	// Resolve переводит PENDING-изменение в терминальный статус. Проверка
	// "еще PENDING" зашита в предикат - повторное решение не пройдет.
	Resolve(ctx context.Context, tx pgx.Tx, change *entities.ChangeRequest) error
}

type ChangeRequestRepository struct {
	storage *pgxpool.Pool
}

func NewChangeRequestRepository(storage *pgxpool.Pool) ChangeRequestRepositoryInterface {
	return &ChangeRequestRepository{storage: storage}
}

func scanChangeRequest(row pgx.Row) (*entities.ChangeRequest, error) {
	var c entities.ChangeRequest
	var changeType, status string
	err := row.Scan(
		&c.ID, &c.OrderID, &changeType, &c.ProposerID, &c.Reason, &status,
		&c.NewSpecialistName, &c.NewEndDate, &c.ExtraManDays, &c.NewContractValue,
		&c.RejectionReason, &c.ResolvedBy, &c.ResolvedAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("запрос на изменение не найден")
		}
		return nil, fmt.Errorf("ошибка сканирования запроса на изменение: %w", err)
	}
	c.Type = entities.ChangeType(changeType)
	c.Status = entities.ChangeStatus(status)
	return &c, nil
}

func (r *ChangeRequestRepository) Find(ctx context.Context, id string) (*entities.ChangeRequest, error) {
	query := `SELECT ` + changeRequestFields + ` FROM change_requests WHERE id = $1`
	return scanChangeRequest(r.storage.QueryRow(ctx, query, id))
}

func (r *ChangeRequestRepository) ListByOrder(ctx context.Context, orderID string) ([]entities.ChangeRequest, error) {
	query := `SELECT ` + changeRequestFields + ` FROM change_requests WHERE order_id = $1 ORDER BY created_at DESC`
	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения изменений заказа: %w", err)
	}
	defer rows.Close()

	changes := make([]entities.ChangeRequest, 0)
	for rows.Next() {
		c, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *c)
	}
	return changes, rows.Err()
}

func (r *ChangeRequestRepository) Create(ctx context.Context, tx pgx.Tx, change *entities.ChangeRequest) error {
	query := `
		INSERT INTO change_requests (
			id, order_id, type, proposer_id, reason, status,
			new_specialist_name, new_end_date, extra_man_days, new_contract_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := tx.Exec(ctx, query,
		change.ID, change.OrderID, string(change.Type), change.ProposerID,
		change.Reason, string(change.Status),
		change.NewSpecialistName, change.NewEndDate, change.ExtraManDays, change.NewContractValue,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса на изменение: %w", err)
	}
	return nil
}

func (r *ChangeRequestRepository) Resolve(ctx context.Context, tx pgx.Tx, change *entities.ChangeRequest) error {
	query := `
		UPDATE change_requests SET
			status = $1, rejection_reason = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $5 AND status = 'PENDING'`
	tag, err := tx.Exec(ctx, query,
		string(change.Status), change.RejectionReason, change.ResolvedBy, change.ResolvedAt, change.ID)
	if err != nil {
		return fmt.Errorf("ошибка решения по изменению: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewInvalidTransition("изменение %s уже не в статусе PENDING", change.ID)
	}
	return nil
}
