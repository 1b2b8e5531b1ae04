package services

import (
	"context"
	"time"

	"sourcing-system/internal/authz"
	"sourcing-system/internal/entities"
	"sourcing-system/internal/events"
	"sourcing-system/internal/repositories"
	apperrors "sourcing-system/pkg/errors"
	"sourcing-system/pkg/eventbus"
	"sourcing-system/pkg/types"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

type OrderServiceInterface interface {
	Find(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error)
	List(ctx context.Context, actor entities.Actor, filter types.Filter) ([]entities.Order, uint64, error)
	Approve(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error)
	Reject(ctx context.Context, actor entities.Actor, id, reason string) (*entities.Order, error)
	ConfirmByProvider(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error)
}

// OrderService - жизненный цикл заказа. Двухступенчатое одобрение:
// планировщик переводит заказ в APPROVED, затем поставщик подтверждает
// независимым флагом ProviderConfirmed.
type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	guard     *accessGuard
	bus       *eventbus.Bus
	logger    *zap.Logger
}

func NewOrderService(
	orderRepo repositories.OrderRepositoryInterface,
	permissionSvc PermissionServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		orderRepo: orderRepo,
		guard:     newAccessGuard(permissionSvc),
		bus:       bus,
		logger:    logger,
	}
}

func (s *OrderService) Find(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error) {
	order, err := s.orderRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OrdersView, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, actor entities.Actor, filter types.Filter) ([]entities.Order, uint64, error) {
	if err := s.guard.authorize(ctx, actor, authz.OrdersView, nil); err != nil {
		return nil, 0, err
	}
	// Поставщик видит только собственные заказы.
	if actor.Role == entities.RoleSupplier {
		if filter.Filter == nil {
			filter.Filter = map[string]interface{}{}
		}
		filter.Filter["supplier_id"] = actor.ID
	}
	return s.orderRepo.List(ctx, filter)
}

func (s *OrderService) Approve(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error) {
	order, err := s.orderRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OrdersApprove, order); err != nil {
		return nil, err
	}
	// Повторное одобрение - ошибка, не тихий успех.
	if order.Status != entities.OrderStatusPendingRPApproval {
		return nil, apperrors.NewInvalidTransition(
			"одобрить можно только заказ в PENDING_RP_APPROVAL, заказ %s в %s", order.ID, order.Status)
	}

	order.Status = entities.OrderStatusApproved
	order.ProviderConfirmed = false
	order.ApprovedBy = null.StringFrom(actor.ID)
	order.ApprovedAt = null.TimeFrom(time.Now())

	if err := s.orderRepo.Update(ctx, nil, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order, actor, "ORDER_APPROVED",
		string(entities.OrderStatusPendingRPApproval), string(order.Status), "",
		[]string{order.SupplierID},
		"Заказ одобрен планировщиком и передан поставщику на подтверждение")
	return order, nil
}

func (s *OrderService) Reject(ctx context.Context, actor entities.Actor, id, reason string) (*entities.Order, error) {
	order, err := s.orderRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OrdersReject, order); err != nil {
		return nil, err
	}
	if order.Status != entities.OrderStatusPendingRPApproval {
		return nil, apperrors.NewInvalidTransition(
			"отклонить можно только заказ в PENDING_RP_APPROVAL, заказ %s в %s", order.ID, order.Status)
	}
	if reason == "" {
		return nil, apperrors.NewValidation("reason", "причина отклонения обязательна")
	}

	order.Status = entities.OrderStatusRejected
	order.RejectedBy = null.StringFrom(actor.ID)
	order.RejectedAt = null.TimeFrom(time.Now())
	order.RejectionReason = null.StringFrom(reason)

	if err := s.orderRepo.Update(ctx, nil, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order, actor, "ORDER_REJECTED",
		string(entities.OrderStatusPendingRPApproval), string(order.Status), reason,
		[]string{order.SupplierID},
		"Заказ отклонен планировщиком: "+reason)
	return order, nil
}

// ConfirmByProvider - единственный переход, не закрытый ролью планировщика:
// внешнее подтверждение поставщика.
func (s *OrderService) ConfirmByProvider(ctx context.Context, actor entities.Actor, id string) (*entities.Order, error) {
	order, err := s.orderRepo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.authorize(ctx, actor, authz.OrdersConfirmProvider, order); err != nil {
		return nil, err
	}
	if order.Status != entities.OrderStatusApproved || order.ProviderConfirmed {
		return nil, apperrors.NewInvalidTransition(
			"подтверждение возможно только по одобренному и еще не подтвержденному заказу, заказ %s: статус %s, подтвержден=%t",
			order.ID, order.Status, order.ProviderConfirmed)
	}

	order.ProviderConfirmed = true
	if err := s.orderRepo.Update(ctx, nil, order); err != nil {
		return nil, err
	}

	s.publish(ctx, order, actor, "ORDER_CONFIRMED",
		string(entities.DisplaySubmittedToProvider), string(entities.DisplayApproved), "",
		nil,
		"Поставщик подтвердил заказ")
	return order, nil
}

func (s *OrderService) publish(
	ctx context.Context, order *entities.Order, actor entities.Actor,
	eventType, oldValue, newValue, comment string, extraNotify []string, message string,
) {
	s.bus.Publish(ctx, events.OrderTransitionedEvent{
		Order:         order,
		Actor:         actor,
		EventType:     eventType,
		OldValue:      oldValue,
		NewValue:      newValue,
		Comment:       comment,
		NotifyUserIDs: extraNotify,
		Message:       message,
	})
}
