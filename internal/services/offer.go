package services

import (
	"context"
	"fmt"
	"time"

	"sourcing-system/internal/authz"
	"sourcing-system/internal/dto"
	"sourcing-system/internal/entities"
	"sourcing-system/internal/events"
	"sourcing-system/internal/repositories"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/eventbus"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OfferServiceInterface interface {
	Submit(ctx context.Context, actor entities.Actor, requestID string, payload dto.SubmitOfferDTO) (*entities.Offer, error)
	MarkPreferred(ctx context.Context, actor entities.Actor, requestID, offerID string) error
	GrantFinalApproval(ctx context.Context, actor entities.Actor, offerID string) (*entities.Offer, error)
	Find(ctx context.Context, actor entities.Actor, offerID string) (*entities.Offer, error)
	ListByRequest(ctx context.Context, actor entities.Actor, requestID string) ([]entities.Offer, error)
}

// OfferService - подача и оценка оферт. Повторная подача того же поставщика
// по той же заявке обновляет существующую запись, а не создает новую.
type OfferService struct {
	offerRepo   repositories.OfferRepositoryInterface
	requestRepo repositories.ServiceRequestRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	txManager   repositories.TxManagerInterface
	guard       *accessGuard
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewOfferService(
	offerRepo repositories.OfferRepositoryInterface,
	requestRepo repositories.ServiceRequestRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	txManager repositories.TxManagerInterface,
	permissionSvc PermissionServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) OfferServiceInterface {
	return &OfferService{
		offerRepo:   offerRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		txManager:   txManager,
		guard:       newAccessGuard(permissionSvc),
		bus:         bus,
		logger:      logger,
	}
}

func (s *OfferService) Submit(ctx context.Context, actor entities.Actor, requestID string, payload dto.SubmitOfferDTO) (*entities.Offer, error) {
	req, err := s.requestRepo.Find(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OffersSubmit, nil); err != nil {
		return nil, err
	}
	if !req.Status.Biddable() || !req.BiddingActive {
		return nil, apperrors.NewInvalidTransition(
			"заявка %s не принимает оферты: статус %s, торги активны=%t", req.ID, req.Status, req.BiddingActive)
	}

	offer, err := buildOffer(actor, req, payload)
	if err != nil {
		return nil, err
	}

	supplier, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	offer.SupplierName = supplier.CompanyName

	// Переподача: та же пара (заявка, поставщик) -> обновление записи.
	existing, err := s.offerRepo.FindByRequestAndSupplier(ctx, requestID, actor.ID)
	resubmission := false
	switch {
	case err == nil:
		if err := s.guard.authorize(ctx, actor, authz.OffersSubmit, existing); err != nil {
			return nil, err
		}
		offer.ID = existing.ID
		offer.Version = existing.Version
		offer.CreatedAt = existing.CreatedAt
		resubmission = true
		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return s.offerRepo.Replace(ctx, tx, offer)
		})
	case errorIsNotFound(err):
		err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			return s.offerRepo.Create(ctx, tx, offer)
		})
	default:
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("OfferService: оферта подана",
		zap.String("requestID", requestID), zap.String("supplierID", actor.ID),
		zap.Bool("resubmission", resubmission), zap.Float64("totalCost", offer.TotalCost))

	s.bus.Publish(ctx, events.OfferSubmittedEvent{
		Offer:         offer,
		Actor:         actor,
		Resubmission:  resubmission,
		NotifyUserIDs: []string{req.RequesterID},
		Message:       fmt.Sprintf("Поставщик %s подал оферту по заявке «%s»", offer.SupplierName, req.Title),
	})
	return offer, nil
}

// MarkPreferred помечает оферту предпочтительной и синхронизирует выбор
// на заявке: флаг на оферте и requests.selected_offer_id всегда указывают
// на одну и ту же оферту. Идемпотентен, статус заявки не трогает.
func (s *OfferService) MarkPreferred(ctx context.Context, actor entities.Actor, requestID, offerID string) error {
	req, err := s.requestRepo.Find(ctx, requestID)
	if err != nil {
		return err
	}
	if err := s.guard.authorize(ctx, actor, authz.OffersMarkPreferred, req); err != nil {
		return err
	}
	offer, err := s.offerRepo.Find(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.RequestID != req.ID {
		return apperrors.NewNotFound("оферта %s не относится к заявке %s", offerID, req.ID)
	}

	req.SelectedOfferID = null.StringFrom(offerID)
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.offerRepo.SetPreferred(ctx, tx, requestID, offerID); err != nil {
			return err
		}
		return s.requestRepo.Update(ctx, tx, req)
	})
}

// GrantFinalApproval - одноразовое финальное одобрение оферты планировщиком.
func (s *OfferService) GrantFinalApproval(ctx context.Context, actor entities.Actor, offerID string) (*entities.Offer, error) {
	offer, err := s.offerRepo.Find(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OffersFinalApprove, offer); err != nil {
		return nil, err
	}
	if err := s.offerRepo.SetFinalApproved(ctx, nil, offerID); err != nil {
		return nil, err
	}
	offer.FinalApproved = true
	return offer, nil
}

func (s *OfferService) Find(ctx context.Context, actor entities.Actor, offerID string) (*entities.Offer, error) {
	offer, err := s.offerRepo.Find(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OffersView, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *OfferService) ListByRequest(ctx context.Context, actor entities.Actor, requestID string) ([]entities.Offer, error) {
	if _, err := s.requestRepo.Find(ctx, requestID); err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OffersView, nil); err != nil {
		return nil, err
	}
	offers, err := s.offerRepo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	// Поставщик видит только собственную оферту.
	if actor.Role == entities.RoleSupplier {
		own := offers[:0]
		for _, o := range offers {
			if o.SupplierID == actor.ID {
				own = append(own, o)
			}
		}
		offers = own
	}
	return offers, nil
}

// buildOffer проверяет доменные правила полезной нагрузки и собирает оферту.
// Проверка fail-fast: возвращается первое нарушенное поле, не сводка.
func buildOffer(actor entities.Actor, req *entities.ServiceRequest, payload dto.SubmitOfferDTO) (*entities.Offer, error) {
	if payload.Currency == "" {
		return nil, apperrors.NewValidation("currency", "валюта обязательна")
	}
	if len(payload.Candidates) == 0 {
		return nil, apperrors.NewValidation("candidates", "оферта должна содержать хотя бы одного кандидата")
	}

	candidates := make([]entities.Candidate, 0, len(payload.Candidates))
	for i, c := range payload.Candidates {
		prefix := fmt.Sprintf("candidates[%d].", i)
		if c.Role == "" {
			return nil, apperrors.NewValidation(prefix+"role", "роль кандидата обязательна")
		}
		if c.ExperienceLevel == "" {
			return nil, apperrors.NewValidation(prefix+"experience_level", "уровень опыта обязателен")
		}
		if c.TechnologyLevel == "" {
			return nil, apperrors.NewValidation(prefix+"technology_level", "уровень владения технологией обязателен")
		}
		if c.DailyRate <= 0 {
			return nil, apperrors.NewValidation(prefix+"daily_rate", "дневная ставка должна быть больше нуля")
		}
		if c.TravelCostPerOnsiteDay < 0 {
			return nil, apperrors.NewValidation(prefix+"travel_cost_per_onsite_day", "командировочные не могут быть отрицательными")
		}
		rel := entities.Relationship(c.Relationship)
		if !rel.Valid() {
			return nil, apperrors.NewValidation(prefix+"relationship", "недопустимый тип отношений: %s", c.Relationship)
		}
		if rel == entities.RelationshipSubcontractor && c.SubcontractorCompany == "" {
			return nil, apperrors.NewValidation(prefix+"subcontractor_company", "для субподрядчика обязательна компания")
		}
		if rel != entities.RelationshipSubcontractor && c.SubcontractorCompany != "" {
			return nil, apperrors.NewValidation(prefix+"subcontractor_company", "компания субподрядчика указывается только для субподрядчика")
		}
		candidates = append(candidates, entities.Candidate{
			ID:                     uuid.NewString(),
			Position:               i,
			Role:                   c.Role,
			ExperienceLevel:        c.ExperienceLevel,
			TechnologyLevel:        c.TechnologyLevel,
			DailyRate:              c.DailyRate,
			TravelCostPerOnsiteDay: c.TravelCostPerOnsiteDay,
			Relationship:           rel,
			SubcontractorCompany:   null.NewString(c.SubcontractorCompany, c.SubcontractorCompany != ""),
		})
	}

	startDate, err := time.Parse("2006-01-02", payload.StartDate)
	if err != nil {
		return nil, apperrors.NewValidation("start_date", "дата начала в формате ГГГГ-ММ-ДД")
	}
	endDate, err := time.Parse("2006-01-02", payload.EndDate)
	if err != nil {
		return nil, apperrors.NewValidation("end_date", "дата окончания в формате ГГГГ-ММ-ДД")
	}
	if endDate.Before(startDate) {
		return nil, apperrors.NewValidation("end_date", "дата окончания не может быть раньше даты начала")
	}
	if payload.OnsiteDays < 0 {
		return nil, apperrors.NewValidation("onsite_days", "количество onsite-дней не может быть отрицательным")
	}

	offer := &entities.Offer{
		ID:         uuid.NewString(),
		RequestID:  req.ID,
		SupplierID: actor.ID,
		Currency:   payload.Currency,
		Candidates: candidates,
		StartDate:  startDate,
		EndDate:    endDate,
		OnsiteDays: payload.OnsiteDays,
		Notes:      null.NewString(payload.Notes, payload.Notes != ""),
	}
	offer.TotalCost = offer.ComputeTotalCost()
	return offer, nil
}
