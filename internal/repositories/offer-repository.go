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

const offerFields = `
	id, request_id, supplier_id, supplier_name, currency, start_date, end_date,
	onsite_days, notes, preferred, final_approved, total_cost, version,
	created_at, updated_at`

const candidateFields = `
	id, offer_id, position, role, experience_level, technology_level,
	daily_rate, travel_cost_per_onsite_day, relationship, subcontractor_company`

type OfferRepositoryInterface interface {
	Find(ctx context.Context, id string) (*entities.Offer, error)
	FindByRequestAndSupplier(ctx context.Context, requestID, supplierID string) (*entities.Offer, error)
	ListByRequest(ctx context.Context, requestID string) ([]entities.Offer, error)
	Create(ctx context.Context, tx pgx.Tx, offer *entities.Offer) error
	// Replace перезаписывает содержимое оферты при переподаче: та же запись,
	// кандидаты пересоздаются, версия растет.
	Replace(ctx context.Context, tx pgx.Tx, offer *entities.Offer) error
	// SetPreferred помечает оферту выбранной и снимает флаг с остальных
	// оферт заявки (не более одной выбранной за раз).
	SetPreferred(ctx context.Context, tx pgx.Tx, requestID, offerID string) error
	SetFinalApproved(ctx context.Context, q Querier, offerID string) error
}

type OfferRepository struct {
	storage *pgxpool.Pool
}

func NewOfferRepository(storage *pgxpool.Pool) OfferRepositoryInterface {
	return &OfferRepository{storage: storage}
}

func scanOffer(row pgx.Row) (*entities.Offer, error) {
	var o entities.Offer
	err := row.Scan(
		&o.ID, &o.RequestID, &o.SupplierID, &o.SupplierName, &o.Currency,
		&o.StartDate, &o.EndDate, &o.OnsiteDays, &o.Notes,
		&o.Preferred, &o.FinalApproved, &o.TotalCost, &o.Version,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("оферта не найдена")
		}
		return nil, fmt.Errorf("ошибка сканирования оферты: %w", err)
	}
	return &o, nil
}

func (r *OfferRepository) loadCandidates(ctx context.Context, offers map[string]*entities.Offer) error {
	ids := make([]string, 0, len(offers))
	for id := range offers {
		ids = append(ids, id)
	}
	query := `SELECT ` + candidateFields + ` FROM offer_candidates WHERE offer_id = ANY($1) ORDER BY position`
	rows, err := r.storage.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("ошибка получения кандидатов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c entities.Candidate
		var relationship string
		err := rows.Scan(
			&c.ID, &c.OfferID, &c.Position, &c.Role, &c.ExperienceLevel,
			&c.TechnologyLevel, &c.DailyRate, &c.TravelCostPerOnsiteDay,
			&relationship, &c.SubcontractorCompany,
		)
		if err != nil {
			return fmt.Errorf("ошибка сканирования кандидата: %w", err)
		}
		c.Relationship = entities.Relationship(relationship)
		if o, ok := offers[c.OfferID]; ok {
			o.Candidates = append(o.Candidates, c)
		}
	}
	return rows.Err()
}

func (r *OfferRepository) Find(ctx context.Context, id string) (*entities.Offer, error) {
	query := `SELECT ` + offerFields + ` FROM offers WHERE id = $1`
	offer, err := scanOffer(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadCandidates(ctx, map[string]*entities.Offer{offer.ID: offer}); err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *OfferRepository) FindByRequestAndSupplier(ctx context.Context, requestID, supplierID string) (*entities.Offer, error) {
	query := `SELECT ` + offerFields + ` FROM offers WHERE request_id = $1 AND supplier_id = $2`
	offer, err := scanOffer(r.storage.QueryRow(ctx, query, requestID, supplierID))
	if err != nil {
		return nil, err
	}
	if err := r.loadCandidates(ctx, map[string]*entities.Offer{offer.ID: offer}); err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *OfferRepository) ListByRequest(ctx context.Context, requestID string) ([]entities.Offer, error) {
	query := `SELECT ` + offerFields + ` FROM offers WHERE request_id = $1 ORDER BY created_at`
	rows, err := r.storage.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения оферт заявки: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*entities.Offer)
	order := make([]string, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		byID[offer.ID] = offer
		order = append(order, offer.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(byID) > 0 {
		if err := r.loadCandidates(ctx, byID); err != nil {
			return nil, err
		}
	}

	offers := make([]entities.Offer, 0, len(order))
	for _, id := range order {
		offers = append(offers, *byID[id])
	}
	return offers, nil
}

func (r *OfferRepository) insertCandidates(ctx context.Context, tx pgx.Tx, offer *entities.Offer) error {
	query := `
		INSERT INTO offer_candidates (
			id, offer_id, position, role, experience_level, technology_level,
			daily_rate, travel_cost_per_onsite_day, relationship, subcontractor_company
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, c := range offer.Candidates {
		_, err := tx.Exec(ctx, query,
			c.ID, offer.ID, c.Position, c.Role, c.ExperienceLevel, c.TechnologyLevel,
			c.DailyRate, c.TravelCostPerOnsiteDay, string(c.Relationship), c.SubcontractorCompany,
		)
		if err != nil {
			return fmt.Errorf("ошибка создания кандидата: %w", err)
		}
	}
	return nil
}

func (r *OfferRepository) Create(ctx context.Context, tx pgx.Tx, offer *entities.Offer) error {
	query := `
		INSERT INTO offers (
			id, request_id, supplier_id, supplier_name, currency, start_date,
			end_date, onsite_days, notes, total_cost, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)`
	_, err := tx.Exec(ctx, query,
		offer.ID, offer.RequestID, offer.SupplierID, offer.SupplierName, offer.Currency,
		offer.StartDate, offer.EndDate, offer.OnsiteDays, offer.Notes, offer.TotalCost,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания оферты: %w", err)
	}
	offer.Version = 1
	return r.insertCandidates(ctx, tx, offer)
}

func (r *OfferRepository) Replace(ctx context.Context, tx pgx.Tx, offer *entities.Offer) error {
	query := `
		UPDATE offers SET
			currency = $1, start_date = $2, end_date = $3, onsite_days = $4,
			notes = $5, total_cost = $6, version = version + 1, updated_at = now()
		WHERE id = $7 AND version = $8`
	tag, err := tx.Exec(ctx, query,
		offer.Currency, offer.StartDate, offer.EndDate, offer.OnsiteDays,
		offer.Notes, offer.TotalCost, offer.ID, offer.Version,
	)
	if err != nil {
		return fmt.Errorf("ошибка переподачи оферты: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConcurrentModification("оферта", offer.ID)
	}
	offer.Version++

	if _, err := tx.Exec(ctx, `DELETE FROM offer_candidates WHERE offer_id = $1`, offer.ID); err != nil {
		return fmt.Errorf("ошибка очистки кандидатов: %w", err)
	}
	return r.insertCandidates(ctx, tx, offer)
}

func (r *OfferRepository) SetPreferred(ctx context.Context, tx pgx.Tx, requestID, offerID string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE offers SET preferred = false, updated_at = now() WHERE request_id = $1 AND preferred`, requestID); err != nil {
		return fmt.Errorf("ошибка сброса выбранных оферт: %w", err)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE offers SET preferred = true, updated_at = now() WHERE id = $1 AND request_id = $2`, offerID, requestID)
	if err != nil {
		return fmt.Errorf("ошибка пометки выбранной оферты: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound("оферта %s не принадлежит заявке %s", offerID, requestID)
	}
	return nil
}

func (r *OfferRepository) SetFinalApproved(ctx context.Context, q Querier, offerID string) error {
	q = orPool(q, r.storage)
	tag, err := q.Exec(ctx,
		`UPDATE offers SET final_approved = true, updated_at = now() WHERE id = $1 AND NOT final_approved`, offerID)
	if err != nil {
		return fmt.Errorf("ошибка финального одобрения оферты: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAlreadyExists("финальное одобрение по оферте %s уже выдано", offerID)
	}
	return nil
}
