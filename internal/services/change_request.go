package services

import (
	"context"
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

type ChangeRequestServiceInterface interface {
	OpenSubstitution(ctx context.Context, actor entities.Actor, orderID string, payload dto.OpenSubstitutionDTO) (*entities.ChangeRequest, error)
	OpenExtension(ctx context.Context, actor entities.Actor, orderID string, payload dto.OpenExtensionDTO) (*entities.ChangeRequest, error)
	Approve(ctx context.Context, actor entities.Actor, changeID string) (*entities.ChangeRequest, error)
	Reject(ctx context.Context, actor entities.Actor, changeID, reason string) (*entities.ChangeRequest, error)
	Find(ctx context.Context, actor entities.Actor, changeID string) (*entities.ChangeRequest, error)
	ListByOrder(ctx context.Context, actor entities.Actor, orderID string) ([]entities.ChangeRequest, error)
}

// ChangeRequestService - изменения одобренных заказов: замена специалиста
// и продление. Пока по заказу висит PENDING-изменение, новое открыть нельзя;
// слот занимается атомарно вместе с созданием изменения.
type ChangeRequestService struct {
	changeRepo repositories.ChangeRequestRepositoryInterface
	orderRepo  repositories.OrderRepositoryInterface
	txManager  repositories.TxManagerInterface
	guard      *accessGuard
	bus        *eventbus.Bus
	logger     *zap.Logger
}

func NewChangeRequestService(
	changeRepo repositories.ChangeRequestRepositoryInterface,
	orderRepo repositories.OrderRepositoryInterface,
	txManager repositories.TxManagerInterface,
	permissionSvc PermissionServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) ChangeRequestServiceInterface {
	return &ChangeRequestService{
		changeRepo: changeRepo,
		orderRepo:  orderRepo,
		txManager:  txManager,
		guard:      newAccessGuard(permissionSvc),
		bus:        bus,
		logger:     logger,
	}
}

// loadApprovedOrder - общая предпосылка открытия изменения:
// заказ существует и находится в APPROVED.
func (s *ChangeRequestService) loadApprovedOrder(ctx context.Context, orderID string) (*entities.Order, error) {
	order, err := s.orderRepo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entities.OrderStatusApproved {
		return nil, apperrors.NewInvalidTransition(
			"изменения открываются только по одобренному заказу, заказ %s в %s", order.ID, order.Status)
	}
	return order, nil
}

// open создает изменение и атомарно занимает слот PENDING на заказе.
func (s *ChangeRequestService) open(ctx context.Context, change *entities.ChangeRequest) error {
	return s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.SetPendingChange(ctx, tx, change.OrderID, change.ID); err != nil {
			return err
		}
		return s.changeRepo.Create(ctx, tx, change)
	})
}

func (s *ChangeRequestService) OpenSubstitution(ctx context.Context, actor entities.Actor, orderID string, payload dto.OpenSubstitutionDTO) (*entities.ChangeRequest, error) {
	order, err := s.loadApprovedOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.ChangesProposeSubstitution, order); err != nil {
		return nil, err
	}
	if payload.NewSpecialistName == "" {
		return nil, apperrors.NewValidation("new_specialist_name", "имя нового специалиста обязательно")
	}
	if payload.Reason == "" {
		return nil, apperrors.NewValidation("reason", "причина замены обязательна")
	}

	change := &entities.ChangeRequest{
		ID:                uuid.NewString(),
		OrderID:           order.ID,
		Type:              entities.ChangeTypeSubstitution,
		ProposerID:        actor.ID,
		Reason:            payload.Reason,
		Status:            entities.ChangeStatusPending,
		NewSpecialistName: null.StringFrom(payload.NewSpecialistName),
	}
	if err := s.open(ctx, change); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ChangeOpenedEvent{
		Change:        change,
		Actor:         actor,
		NotifyUserIDs: []string{order.SupplierID},
		Message:       "По заказу предложена замена специалиста: " + payload.NewSpecialistName,
	})
	return change, nil
}

func (s *ChangeRequestService) OpenExtension(ctx context.Context, actor entities.Actor, orderID string, payload dto.OpenExtensionDTO) (*entities.ChangeRequest, error) {
	order, err := s.loadApprovedOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.ChangesProposeExtension, order); err != nil {
		return nil, err
	}
	newEndDate, err := time.Parse("2006-01-02", payload.NewEndDate)
	if err != nil {
		return nil, apperrors.NewValidation("new_end_date", "новая дата окончания в формате ГГГГ-ММ-ДД")
	}
	if payload.ExtraManDays <= 0 {
		return nil, apperrors.NewValidation("extra_man_days", "дополнительные человеко-дни должны быть больше нуля")
	}
	if payload.NewContractValue <= 0 {
		return nil, apperrors.NewValidation("new_contract_value", "новая стоимость контракта должна быть больше нуля")
	}
	if payload.Reason == "" {
		return nil, apperrors.NewValidation("reason", "причина продления обязательна")
	}

	change := &entities.ChangeRequest{
		ID:               uuid.NewString(),
		OrderID:          order.ID,
		Type:             entities.ChangeTypeExtension,
		ProposerID:       actor.ID,
		Reason:           payload.Reason,
		Status:           entities.ChangeStatusPending,
		NewEndDate:       null.TimeFrom(newEndDate),
		ExtraManDays:     null.IntFrom(payload.ExtraManDays),
		NewContractValue: null.Float64From(payload.NewContractValue),
	}
	if err := s.open(ctx, change); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ChangeOpenedEvent{
		Change:        change,
		Actor:         actor,
		NotifyUserIDs: []string{order.SupplierID},
		Message:       "По заказу предложено продление срока",
	})
	return change, nil
}

// Approve применяет payload изменения к заказу и освобождает слот.
// Все записи идут одной транзакцией.
func (s *ChangeRequestService) Approve(ctx context.Context, actor entities.Actor, changeID string) (*entities.ChangeRequest, error) {
	change, err := s.changeRepo.Find(ctx, changeID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.Find(ctx, change.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.ChangesApprove, order); err != nil {
		return nil, err
	}
	if change.Status != entities.ChangeStatusPending {
		return nil, apperrors.NewInvalidTransition("изменение %s уже решено: %s", change.ID, change.Status)
	}

	change.Status = entities.ChangeStatusApproved
	change.ResolvedBy = null.StringFrom(actor.ID)
	change.ResolvedAt = null.TimeFrom(time.Now())

	switch change.Type {
	case entities.ChangeTypeSubstitution:
		order.SpecialistName = change.NewSpecialistName.String
	case entities.ChangeTypeExtension:
		order.EndDate = change.NewEndDate.Time
		order.ManDays += int(change.ExtraManDays.Int)
		order.ContractValue = change.NewContractValue.Float64
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.changeRepo.Resolve(ctx, tx, change); err != nil {
			return err
		}
		if err := s.orderRepo.Update(ctx, tx, order); err != nil {
			return err
		}
		return s.orderRepo.ClearPendingChange(ctx, tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ChangeResolvedEvent{
		Change:        change,
		Actor:         actor,
		NotifyUserIDs: []string{change.ProposerID, order.SupplierID},
		Message:       "Изменение по заказу одобрено и применено",
	})
	return change, nil
}

func (s *ChangeRequestService) Reject(ctx context.Context, actor entities.Actor, changeID, reason string) (*entities.ChangeRequest, error) {
	change, err := s.changeRepo.Find(ctx, changeID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.Find(ctx, change.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.ChangesReject, order); err != nil {
		return nil, err
	}
	if change.Status != entities.ChangeStatusPending {
		return nil, apperrors.NewInvalidTransition("изменение %s уже решено: %s", change.ID, change.Status)
	}
	if reason == "" {
		return nil, apperrors.NewValidation("reason", "причина отклонения обязательна")
	}

	change.Status = entities.ChangeStatusRejected
	change.RejectionReason = null.StringFrom(reason)
	change.ResolvedBy = null.StringFrom(actor.ID)
	change.ResolvedAt = null.TimeFrom(time.Now())

	// Заказ не меняется, освобождается только слот.
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.changeRepo.Resolve(ctx, tx, change); err != nil {
			return err
		}
		return s.orderRepo.ClearPendingChange(ctx, tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ChangeResolvedEvent{
		Change:        change,
		Actor:         actor,
		NotifyUserIDs: []string{change.ProposerID},
		Message:       "Изменение по заказу отклонено: " + reason,
	})
	return change, nil
}

func (s *ChangeRequestService) Find(ctx context.Context, actor entities.Actor, changeID string) (*entities.ChangeRequest, error) {
	change, err := s.changeRepo.Find(ctx, changeID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.Find(ctx, change.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.ChangesView, order); err != nil {
		return nil, err
	}
	return change, nil
}

func (s *ChangeRequestService) ListByOrder(ctx context.Context, actor entities.Actor, orderID string) ([]entities.ChangeRequest, error) {
	order, err := s.orderRepo.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.ChangesView, order); err != nil {
		return nil, err
	}
	return s.changeRepo.ListByOrder(ctx, orderID)
}
