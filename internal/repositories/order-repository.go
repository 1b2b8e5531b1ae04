package repositories

import (
	"context"
	"errors"
	"fmt"

	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderFields = `
	id, source_request_id, offer_id, requester_id, supplier_id, supplier_name, specialist_name,
	daily_rate, travel_cost, relationship, subcontractor_company, currency,
	contract_value, man_days, start_date, end_date, status, provider_confirmed,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	pending_change_id,
	feedback_overall, feedback_quality, feedback_communication, feedback_value,
	feedback_comment, feedback_anonymous, feedback_author_id, feedback_created_at,
	version, created_at, updated_at`

var orderFilterColumns = map[string]string{
	"status":            "status",
	"supplier_id":       "supplier_id",
	"requester_id":      "requester_id",
	"source_request_id": "source_request_id",
	"created_at":        "created_at",
}

type OrderRepositoryInterface interface {
	Find(ctx context.Context, id string) (*entities.Order, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	Create(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	// Update пишет статусные и снапшот-поля заказа с проверкой версии.
	Update(ctx context.Context, q Querier, order *entities.Order) error
	// SetPendingChange атомарно занимает слот единственного PENDING-изменения:
	// UPDATE проходит только если слот пуст. Возвращает ChangePending иначе.
	SetPendingChange(ctx context.Context, tx pgx.Tx, orderID, changeID string) error
	ClearPendingChange(ctx context.Context, tx pgx.Tx, orderID string) error
	UpdateFeedback(ctx context.Context, q Querier, order *entities.Order) error
	// SupplierRating - средний общий рейтинг по всем заказам поставщика.
	SupplierRating(ctx context.Context, supplierID string) (float64, int, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{storage: storage}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	var status, relationship string
	var fbOverall, fbQuality, fbCommunication, fbValue null.Int
	var fbComment, fbAuthorID null.String
	var fbAnonymous null.Bool
	var fbCreatedAt null.Time

	err := row.Scan(
		&o.ID, &o.SourceRequestID, &o.OfferID, &o.RequesterID, &o.SupplierID, &o.SupplierName,
		&o.SpecialistName, &o.DailyRate, &o.TravelCost, &relationship,
		&o.SubcontractorCompany, &o.Currency, &o.ContractValue, &o.ManDays,
		&o.StartDate, &o.EndDate, &status, &o.ProviderConfirmed,
		&o.ApprovedBy, &o.ApprovedAt, &o.RejectedBy, &o.RejectedAt, &o.RejectionReason,
		&o.PendingChangeID,
		&fbOverall, &fbQuality, &fbCommunication, &fbValue,
		&fbComment, &fbAnonymous, &fbAuthorID, &fbCreatedAt,
		&o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("заказ не найден")
		}
		return nil, fmt.Errorf("ошибка сканирования заказа: %w", err)
	}
	o.Status = entities.OrderStatus(status)
	o.Relationship = entities.Relationship(relationship)

	if fbCreatedAt.Valid {
		o.Feedback = &entities.Feedback{
			Overall:       int(fbOverall.Int),
			Quality:       int(fbQuality.Int),
			Communication: int(fbCommunication.Int),
			Value:         int(fbValue.Int),
			Comment:       fbComment.String,
			Anonymous:     fbAnonymous.Bool,
			AuthorID:      fbAuthorID.String,
			CreatedAt:     fbCreatedAt.Time,
		}
	}
	return &o, nil
}

func (r *OrderRepository) Find(ctx context.Context, id string) (*entities.Order, error) {
	query := `SELECT ` + orderFields + ` FROM orders WHERE id = $1`
	return scanOrder(r.storage.QueryRow(ctx, query, id))
}

func (r *OrderRepository) List(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	builder := sq.Select(orderFields).From("orders").PlaceholderFormat(sq.Dollar)
	countBuilder := sq.Select("COUNT(*)").From("orders").PlaceholderFormat(sq.Dollar)

	for jsonField, val := range filter.Filter {
		col, ok := orderFilterColumns[jsonField]
		if !ok {
			continue
		}
		builder = builder.Where(sq.Eq{col: val})
		countBuilder = countBuilder.Where(sq.Eq{col: val})
	}

	orderApplied := false
	for jsonField, dir := range filter.Sort {
		col, ok := orderFilterColumns[jsonField]
		if !ok {
			continue
		}
		sqlDir := "ASC"
		if dir == "desc" {
			sqlDir = "DESC"
		}
		builder = builder.OrderBy(col + " " + sqlDir)
		orderApplied = true
	}
	if !orderApplied {
		builder = builder.OrderBy("created_at DESC")
	}

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки count-запроса: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заказов: %w", err)
	}

	listSQL, listArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка: %w", err)
	}
	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) Create(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	query := `
		INSERT INTO orders (
			id, source_request_id, offer_id, requester_id, supplier_id, supplier_name,
			specialist_name, daily_rate, travel_cost, relationship,
			subcontractor_company, currency, contract_value, man_days,
			start_date, end_date, status, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1)`
	_, err := tx.Exec(ctx, query,
		order.ID, order.SourceRequestID, order.OfferID, order.RequesterID, order.SupplierID, order.SupplierName,
		order.SpecialistName, order.DailyRate, order.TravelCost, string(order.Relationship),
		order.SubcontractorCompany, order.Currency, order.ContractValue, order.ManDays,
		order.StartDate, order.EndDate, string(order.Status),
	)
	if err != nil {
		return fmt.Errorf("ошибка создания заказа: %w", err)
	}
	order.Version = 1
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, q Querier, order *entities.Order) error {
	q = orPool(q, r.storage)
	query := `
		UPDATE orders SET
			status = $1, provider_confirmed = $2, approved_by = $3, approved_at = $4,
			rejected_by = $5, rejected_at = $6, rejection_reason = $7,
			specialist_name = $8, end_date = $9, man_days = $10, contract_value = $11,
			version = version + 1, updated_at = now()
		WHERE id = $12 AND version = $13`
	tag, err := q.Exec(ctx, query,
		string(order.Status), order.ProviderConfirmed, order.ApprovedBy, order.ApprovedAt,
		order.RejectedBy, order.RejectedAt, order.RejectionReason,
		order.SpecialistName, order.EndDate, order.ManDays, order.ContractValue,
		order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления заказа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConcurrentModification("заказ", order.ID)
	}
	order.Version++
	return nil
}

func (r *OrderRepository) SetPendingChange(ctx context.Context, tx pgx.Tx, orderID, changeID string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders SET pending_change_id = $1, updated_at = now()
		 WHERE id = $2 AND pending_change_id IS NULL`, changeID, orderID)
	if err != nil {
		return fmt.Errorf("ошибка занятия слота изменения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewChangePending(orderID)
	}
	return nil
}

func (r *OrderRepository) ClearPendingChange(ctx context.Context, tx pgx.Tx, orderID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders SET pending_change_id = NULL, updated_at = now() WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("ошибка освобождения слота изменения: %w", err)
	}
	return nil
}

func (r *OrderRepository) UpdateFeedback(ctx context.Context, q Querier, order *entities.Order) error {
	q = orPool(q, r.storage)
	if order.Feedback == nil {
		return fmt.Errorf("заказ %s: нечего сохранять, отзыв пуст", order.ID)
	}
	fb := order.Feedback
	query := `
		UPDATE orders SET
			feedback_overall = $1, feedback_quality = $2, feedback_communication = $3,
			feedback_value = $4, feedback_comment = $5, feedback_anonymous = $6,
			feedback_author_id = $7, feedback_created_at = $8,
			version = version + 1, updated_at = now()
		WHERE id = $9 AND version = $10`
	tag, err := q.Exec(ctx, query,
		fb.Overall, fb.Quality, fb.Communication, fb.Value,
		fb.Comment, fb.Anonymous, fb.AuthorID, fb.CreatedAt,
		order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения отзыва: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConcurrentModification("заказ", order.ID)
	}
	order.Version++
	return nil
}

func (r *OrderRepository) SupplierRating(ctx context.Context, supplierID string) (float64, int, error) {
	var avg null.Float64
	var count int
	err := r.storage.QueryRow(ctx,
		`SELECT AVG(feedback_overall), COUNT(feedback_overall)
		 FROM orders WHERE supplier_id = $1 AND feedback_overall IS NOT NULL`, supplierID).
		Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("ошибка расчета рейтинга поставщика: %w", err)
	}
	return avg.Float64, count, nil
}
