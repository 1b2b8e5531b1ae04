package repositories

import (
	"context"
	"errors"
	"fmt"

	"sourcing-system/internal/entities"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceRequestFields = `
	id, title, request_type, status, requester_id, project_ref, contract_ref,
	domain, role_required, technology, experience_level, man_days, onsite_days,
	location, must_have, nice_to_have, task_description, bidding_active,
	selected_offer_id, rejected_reason, version, created_at, updated_at`

// requestFilterColumns - какие json-поля фильтра разрешено мапить на колонки.
var requestFilterColumns = map[string]string{
	"status":       "status",
	"request_type": "request_type",
	"requester_id": "requester_id",
	"domain":       "domain",
	"created_at":   "created_at",
}

type ServiceRequestRepositoryInterface interface {
	Create(ctx context.Context, req *entities.ServiceRequest) error
	Find(ctx context.Context, id string) (*entities.ServiceRequest, error)
	List(ctx context.Context, filter types.Filter) ([]entities.ServiceRequest, uint64, error)
	// Update пишет всю запись с проверкой ожидаемой версии.
	// Возвращает ConcurrentModification, если версия ушла вперед.
	Update(ctx context.Context, q Querier, req *entities.ServiceRequest) error
}

type ServiceRequestRepository struct {
	storage *pgxpool.Pool
}

func NewServiceRequestRepository(storage *pgxpool.Pool) ServiceRequestRepositoryInterface {
	return &ServiceRequestRepository{storage: storage}
}

func scanServiceRequest(row pgx.Row) (*entities.ServiceRequest, error) {
	var req entities.ServiceRequest
	var status string
	err := row.Scan(
		&req.ID, &req.Title, &req.RequestType, &status, &req.RequesterID,
		&req.ProjectRef, &req.ContractRef,
		&req.Domain, &req.RoleRequired, &req.Technology, &req.ExperienceLevel,
		&req.ManDays, &req.OnsiteDays, &req.Location,
		&req.MustHave, &req.NiceToHave, &req.TaskDescription,
		&req.BiddingActive, &req.SelectedOfferID, &req.RejectedReason,
		&req.Version, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("сервисная заявка не найдена")
		}
		return nil, fmt.Errorf("ошибка сканирования сервисной заявки: %w", err)
	}
	req.Status = entities.RequestStatus(status)
	return &req, nil
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *entities.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (
			id, title, request_type, status, requester_id, project_ref, contract_ref,
			domain, role_required, technology, experience_level, man_days, onsite_days,
			location, must_have, nice_to_have, task_description, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1)`
	_, err := r.storage.Exec(ctx, query,
		req.ID, req.Title, req.RequestType, string(req.Status), req.RequesterID,
		req.ProjectRef, req.ContractRef,
		req.Domain, req.RoleRequired, req.Technology, req.ExperienceLevel,
		req.ManDays, req.OnsiteDays, req.Location,
		req.MustHave, req.NiceToHave, req.TaskDescription,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания сервисной заявки: %w", err)
	}
	req.Version = 1
	return nil
}

func (r *ServiceRequestRepository) Find(ctx context.Context, id string) (*entities.ServiceRequest, error) {
	query := `SELECT ` + serviceRequestFields + ` FROM service_requests WHERE id = $1`
	return scanServiceRequest(r.storage.QueryRow(ctx, query, id))
}

func (r *ServiceRequestRepository) List(ctx context.Context, filter types.Filter) ([]entities.ServiceRequest, uint64, error) {
	builder := sq.Select(serviceRequestFields).
		From("service_requests").
		PlaceholderFormat(sq.Dollar)

	countBuilder := sq.Select("COUNT(*)").From("service_requests").PlaceholderFormat(sq.Dollar)

	for jsonField, val := range filter.Filter {
		col, ok := requestFilterColumns[jsonField]
		if !ok {
			continue
		}
		builder = builder.Where(sq.Eq{col: val})
		countBuilder = countBuilder.Where(sq.Eq{col: val})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		cond := sq.Or{sq.ILike{"title": like}, sq.ILike{"domain": like}, sq.ILike{"technology": like}}
		builder = builder.Where(cond)
		countBuilder = countBuilder.Where(cond)
	}

	orderApplied := false
	for jsonField, dir := range filter.Sort {
		col, ok := requestFilterColumns[jsonField]
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
		return nil, 0, fmt.Errorf("ошибка подсчета заявок: %w", err)
	}

	listSQL, listArgs, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка: %w", err)
	}
	rows, err := r.storage.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	requests := make([]entities.ServiceRequest, 0)
	for rows.Next() {
		req, err := scanServiceRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	return requests, total, rows.Err()
}

func (r *ServiceRequestRepository) Update(ctx context.Context, q Querier, req *entities.ServiceRequest) error {
	q = orPool(q, r.storage)
	query := `
		UPDATE service_requests SET
			status = $1, bidding_active = $2, selected_offer_id = $3,
			rejected_reason = $4, version = version + 1, updated_at = now()
		WHERE id = $5 AND version = $6`
	tag, err := q.Exec(ctx, query,
		string(req.Status), req.BiddingActive, req.SelectedOfferID,
		req.RejectedReason, req.ID, req.Version,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления сервисной заявки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConcurrentModification("сервисная заявка", req.ID)
	}
	req.Version++
	return nil
}
