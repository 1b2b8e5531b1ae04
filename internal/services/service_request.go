package services

import (
	"context"

	"sourcing-system/internal/authz"
	"sourcing-system/internal/dto"
	"sourcing-system/internal/entities"
	"sourcing-system/internal/events"
	"sourcing-system/internal/repositories"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/eventbus"
	"sourcing-system/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ServiceRequestServiceInterface interface {
	Create(ctx context.Context, actor entities.Actor, payload dto.CreateServiceRequestDTO) (*entities.ServiceRequest, error)
	Find(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error)
	List(ctx context.Context, actor entities.Actor, filter types.Filter) ([]entities.ServiceRequest, uint64, error)
	SubmitForReview(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error)
	ApproveForBidding(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error)
	OpenBidding(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error)
	SelectOffer(ctx context.Context, actor entities.Actor, id, offerID string) (*entities.ServiceRequest, error)
	ConvertToOrder(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error)
	Reject(ctx context.Context, actor entities.Actor, id, reason string) (*entities.ServiceRequest, error)
}

// ServiceRequestService - жизненный цикл сервисной заявки:
// DRAFT → IN_REVIEW → APPROVED_FOR_BIDDING → BIDDING → ORDERED,
// REJECTED из любого нетерминального статуса.
type ServiceRequestService struct {
	requestRepo repositories.ServiceRequestRepositoryInterface
	offerRepo   repositories.OfferRepositoryInterface
	orderRepo   repositories.OrderRepositoryInterface
	txManager   repositories.TxManagerInterface
	guard       *accessGuard
	bus         *eventbus.Bus
	logger      *zap.Logger
}

func NewServiceRequestService(
	requestRepo repositories.ServiceRequestRepositoryInterface,
	offerRepo repositories.OfferRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	txManager repositories.TxManagerInterface,
	permissionSvc PermissionServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) ServiceRequestServiceInterface {
	return &ServiceRequestService{
		requestRepo: requestRepo,
		offerRepo:   offerRepo,
		orderRepo:   orderRepo,
		txManager:   txManager,
		guard:       newAccessGuard(permissionSvc),
		bus:         bus,
		logger:      logger,
	}
}

func (s *ServiceRequestService) Create(ctx context.Context, actor entities.Actor, payload dto.CreateServiceRequestDTO) (*entities.ServiceRequest, error) {
	if err := s.guard.authorize(ctx, actor, authz.RequestsCreate, nil); err != nil {
		return nil, err
	}

	req := &entities.ServiceRequest{
		ID:              uuid.NewString(),
		Title:           payload.Title,
		RequestType:     payload.RequestType,
		Status:          entities.RequestStatusDraft,
		RequesterID:     actor.ID,
		ProjectRef:      null.NewString(payload.ProjectRef, payload.ProjectRef != ""),
		ContractRef:     null.NewString(payload.ContractRef, payload.ContractRef != ""),
		Domain:          payload.Domain,
		RoleRequired:    payload.RoleRequired,
		Technology:      payload.Technology,
		ExperienceLevel: payload.ExperienceLevel,
		ManDays:         payload.ManDays,
		OnsiteDays:      payload.OnsiteDays,
		Location:        payload.Location,
		MustHave:        payload.MustHave,
		NiceToHave:      payload.NiceToHave,
		TaskDescription: payload.TaskDescription,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.logger.Error("ServiceRequestService: не удалось создать заявку", zap.Error(err))
		return nil, err
	}
	return req, nil
}

func (s *ServiceRequestService) Find(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error) {
	req, err := s.requestRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.RequestsView, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *ServiceRequestService) List(ctx context.Context, actor entities.Actor, filter types.Filter) ([]entities.ServiceRequest, uint64, error) {
	if err := s.guard.authorize(ctx, actor, authz.RequestsView, nil); err != nil {
		return nil, 0, err
	}
	// Поставщики видят только заявки в стадии торгов.
	if actor.Role == entities.RoleSupplier {
		if filter.Filter == nil {
			filter.Filter = map[string]interface{}{}
		}
		filter.Filter["status"] = []string{
			string(entities.RequestStatusApprovedForBidding),
			string(entities.RequestStatusBidding),
		}
	}
	return s.requestRepo.List(ctx, filter)
}

// transition - общий каркас перехода: найти, проверить доступ, проверить
// исходный статус, записать с проверкой версии, опубликовать событие.
func (s *ServiceRequestService) transition(
	ctx context.Context,
	actor entities.Actor,
	id string,
	permission string,
	from entities.RequestStatus,
	mutate func(req *entities.ServiceRequest),
) (*entities.ServiceRequest, error) {
	req, err := s.requestRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, permission, req); err != nil {
		return nil, err
	}
	if req.Status != from {
		return nil, apperrors.NewInvalidTransition(
			"заявка %s в статусе %s, переход возможен только из %s", req.ID, req.Status, from)
	}

	oldStatus := req.Status
	mutate(req)

	if err := s.requestRepo.Update(ctx, nil, req); err != nil {
		return nil, err
	}

	s.publishTransition(ctx, req, actor, oldStatus)
	return req, nil
}

func (s *ServiceRequestService) SubmitForReview(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error) {
	return s.transition(ctx, actor, id, authz.RequestsSubmit, entities.RequestStatusDraft,
		func(req *entities.ServiceRequest) {
			req.Status = entities.RequestStatusInReview
		})
}

func (s *ServiceRequestService) ApproveForBidding(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error) {
	return s.transition(ctx, actor, id, authz.RequestsApprove, entities.RequestStatusInReview,
		func(req *entities.ServiceRequest) {
			req.Status = entities.RequestStatusApprovedForBidding
		})
}

func (s *ServiceRequestService) OpenBidding(ctx context.Context, actor entities.Actor, id string) (*entities.ServiceRequest, error) {
	return s.transition(ctx, actor, id, authz.RequestsOpenBidding, entities.RequestStatusApprovedForBidding,
		func(req *entities.ServiceRequest) {
			req.Status = entities.RequestStatusBidding
			req.BiddingActive = true
		})
}

// SelectOffer помечает оферту выбранной и записывает ее на заявке.
// Статус заявки не меняется.
func (s *ServiceRequestService) SelectOffer(ctx context.Context, actor entities.Actor, id, offerID string) (*entities.ServiceRequest, error) {
	req, err := s.requestRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.RequestsSelectOffer, req); err != nil {
		return nil, err
	}
	if !req.Status.Biddable() {
		return nil, apperrors.NewInvalidTransition(
			"выбор оферты возможен только в статусах APPROVED_FOR_BIDDING и BIDDING, заявка %s в %s", req.ID, req.Status)
	}

	offer, err := s.offerRepo.Find(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.RequestID != req.ID {
		return nil, apperrors.NewNotFound("оферта %s не относится к заявке %s", offerID, req.ID)
	}

	req.SelectedOfferID = null.StringFrom(offerID)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.offerRepo.SetPreferred(ctx, tx, req.ID, offerID); err != nil {
			return err
		}
		return s.requestRepo.Update(ctx, tx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ServiceRequestService: оферта выбрана",
		zap.String("requestID", req.ID), zap.String("offerID", offerID))
	return req, nil
}

// ConvertToOrder переводит заявку в ORDERED и создает заказ-снапшот
// выбранной оферты. Оба действия идут одной транзакцией.
func (s *ServiceRequestService) ConvertToOrder(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error) {
	req, err := s.requestRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.RequestsConvert, req); err != nil {
		return nil, err
	}
	if !req.Status.Biddable() {
		return nil, apperrors.NewInvalidTransition(
			"конверсия возможна только в статусах APPROVED_FOR_BIDDING и BIDDING, заявка %s в %s", req.ID, req.Status)
	}
	if !req.SelectedOfferID.Valid {
		return nil, apperrors.NewInvalidTransition("по заявке %s не выбрана оферта", req.ID)
	}

	offer, err := s.offerRepo.Find(ctx, req.SelectedOfferID.String)
	if err != nil {
		return nil, err
	}

	oldStatus := req.Status
	req.Status = entities.RequestStatusOrdered
	req.BiddingActive = false

	order := newOrderFromOffer(req, offer)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.requestRepo.Update(ctx, tx, req); err != nil {
			return err
		}
		return s.orderRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishTransition(ctx, req, actor, oldStatus)
	s.bus.Publish(ctx, events.OrderTransitionedEvent{
		Order:         order,
		Actor:         actor,
		EventType:     "ORDER_CREATED",
		NewValue:      string(order.Status),
		NotifyUserIDs: []string{order.SupplierID},
		Message:       "Заявка сконвертирована в заказ, ожидается одобрение планировщика",
	})
	return order, nil
}

func (s *ServiceRequestService) Reject(ctx context.Context, actor entities.Actor, id, reason string) (*entities.ServiceRequest, error) {
	req, err := s.requestRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.RequestsReject, req); err != nil {
		return nil, err
	}
	if req.Status.IsTerminal() {
		return nil, apperrors.NewInvalidTransition("заявка %s уже в терминальном статусе %s", req.ID, req.Status)
	}
	if reason == "" {
		return nil, apperrors.NewValidation("reason", "причина отклонения обязательна")
	}

	oldStatus := req.Status
	req.Status = entities.RequestStatusRejected
	req.BiddingActive = false
	req.RejectedReason = null.StringFrom(reason)

	if err := s.requestRepo.Update(ctx, nil, req); err != nil {
		return nil, err
	}

	s.publishTransition(ctx, req, actor, oldStatus)
	return req, nil
}

// newOrderFromOffer снимает снапшот оферты в момент конверсии: заказ больше
// не перечитывает оферту и защищен от ее последующих изменений.
func newOrderFromOffer(req *entities.ServiceRequest, offer *entities.Offer) *entities.Order {
	order := &entities.Order{
		ID:              uuid.NewString(),
		SourceRequestID: req.ID,
		OfferID:         offer.ID,
		RequesterID:     req.RequesterID,
		SupplierID:      offer.SupplierID,
		SupplierName:    offer.SupplierName,
		Currency:        offer.Currency,
		ContractValue:   offer.TotalCost,
		ManDays:         req.ManDays,
		StartDate:       offer.StartDate,
		EndDate:         offer.EndDate,
		Status:          entities.OrderStatusPendingRPApproval,
	}
	// Ведущий кандидат оферты - первый в списке.
	if len(offer.Candidates) > 0 {
		lead := offer.Candidates[0]
		order.SpecialistName = lead.Role
		order.DailyRate = lead.DailyRate
		order.TravelCost = lead.TravelCostPerOnsiteDay
		order.Relationship = lead.Relationship
		order.SubcontractorCompany = lead.SubcontractorCompany
	}
	return order
}

func (s *ServiceRequestService) publishTransition(ctx context.Context, req *entities.ServiceRequest, actor entities.Actor, oldStatus entities.RequestStatus) {
	notify := []string{req.RequesterID}
	s.bus.Publish(ctx, events.RequestTransitionedEvent{
		Request:       req,
		Actor:         actor,
		OldStatus:     oldStatus,
		NewStatus:     req.Status,
		NotifyUserIDs: notify,
		Message:       "Заявка «" + req.Title + "» перешла в статус " + string(req.Status),
	})
}
