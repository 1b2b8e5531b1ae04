package listeners

import (
	"context"

	"sourcing-system/internal/entities"
	"sourcing-system/internal/events"
	"sourcing-system/internal/repositories"
	"sourcing-system/pkg/eventbus"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkflowListener слушает события workflow и пишет побочные артефакты:
// уведомления пользователям и журнал переходов. Ядро про это не знает -
// неудача слушателя не откатывает переход.
type WorkflowListener struct {
	notificationRepo repositories.NotificationRepositoryInterface
	historyRepo      repositories.WorkflowHistoryRepositoryInterface
	logger           *zap.Logger
}

func NewWorkflowListener(
	notificationRepo repositories.NotificationRepositoryInterface,
	historyRepo repositories.WorkflowHistoryRepositoryInterface,
	logger *zap.Logger,
) *WorkflowListener {
	return &WorkflowListener{
		notificationRepo: notificationRepo,
		historyRepo:      historyRepo,
		logger:           logger,
	}
}

// Register подписывает слушателя на все события workflow.
func (l *WorkflowListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.RequestTransitionedName, l.onRequestTransitioned)
	bus.Subscribe(events.OfferSubmittedName, l.onOfferSubmitted)
	bus.Subscribe(events.OrderTransitionedName, l.onOrderTransitioned)
	bus.Subscribe(events.ChangeOpenedName, l.onChangeOpened)
	bus.Subscribe(events.ChangeResolvedName, l.onChangeResolved)
	bus.Subscribe(events.FeedbackSubmittedName, l.onFeedbackSubmitted)
}

func (l *WorkflowListener) onRequestTransitioned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestTransitionedEvent)
	if !ok {
		return nil
	}
	l.writeHistory(ctx, &entities.WorkflowHistory{
		EntityType: "service_request",
		EntityID:   e.Request.ID,
		ActorID:    e.Actor.ID,
		EventType:  "STATUS_CHANGED",
		OldValue:   null.StringFrom(string(e.OldStatus)),
		NewValue:   null.StringFrom(string(e.NewStatus)),
		Comment:    null.NewString(e.Comment, e.Comment != ""),
	})
	l.notify(ctx, e.NotifyUserIDs, "service_request", e.Request.ID, e.Message)
	return nil
}

func (l *WorkflowListener) onOfferSubmitted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OfferSubmittedEvent)
	if !ok {
		return nil
	}
	eventType := "OFFER_SUBMITTED"
	if e.Resubmission {
		eventType = "OFFER_RESUBMITTED"
	}
	l.writeHistory(ctx, &entities.WorkflowHistory{
		EntityType: "offer",
		EntityID:   e.Offer.ID,
		ActorID:    e.Actor.ID,
		EventType:  eventType,
	})
	l.notify(ctx, e.NotifyUserIDs, "offer", e.Offer.ID, e.Message)
	return nil
}

func (l *WorkflowListener) onOrderTransitioned(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderTransitionedEvent)
	if !ok {
		return nil
	}
	l.writeHistory(ctx, &entities.WorkflowHistory{
		EntityType: "order",
		EntityID:   e.Order.ID,
		ActorID:    e.Actor.ID,
		EventType:  e.EventType,
		OldValue:   null.NewString(e.OldValue, e.OldValue != ""),
		NewValue:   null.NewString(e.NewValue, e.NewValue != ""),
		Comment:    null.NewString(e.Comment, e.Comment != ""),
	})
	l.notify(ctx, e.NotifyUserIDs, "order", e.Order.ID, e.Message)
	return nil
}

func (l *WorkflowListener) onChangeOpened(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ChangeOpenedEvent)
	if !ok {
		return nil
	}
	l.writeHistory(ctx, &entities.WorkflowHistory{
		EntityType: "change_request",
		EntityID:   e.Change.ID,
		ActorID:    e.Actor.ID,
		EventType:  "CHANGE_OPENED",
		NewValue:   null.StringFrom(string(e.Change.Status)),
		Comment:    null.NewString(e.Change.Reason, e.Change.Reason != ""),
	})
	l.notify(ctx, e.NotifyUserIDs, "change_request", e.Change.ID, e.Message)
	return nil
}

func (l *WorkflowListener) onChangeResolved(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.ChangeResolvedEvent)
	if !ok {
		return nil
	}
	l.writeHistory(ctx, &entities.WorkflowHistory{
		EntityType: "change_request",
		EntityID:   e.Change.ID,
		ActorID:    e.Actor.ID,
		EventType:  "CHANGE_RESOLVED",
		OldValue:   null.StringFrom(string(entities.ChangeStatusPending)),
		NewValue:   null.StringFrom(string(e.Change.Status)),
	})
	l.notify(ctx, e.NotifyUserIDs, "change_request", e.Change.ID, e.Message)
	return nil
}

func (l *WorkflowListener) onFeedbackSubmitted(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.FeedbackSubmittedEvent)
	if !ok {
		return nil
	}
	eventType := "FEEDBACK_SUBMITTED"
	if e.Edited {
		eventType = "FEEDBACK_EDITED"
	}
	l.writeHistory(ctx, &entities.WorkflowHistory{
		EntityType: "order",
		EntityID:   e.Order.ID,
		ActorID:    e.Actor.ID,
		EventType:  eventType,
	})
	l.notify(ctx, e.NotifyUserIDs, "order", e.Order.ID, e.Message)
	return nil
}

func (l *WorkflowListener) writeHistory(ctx context.Context, item *entities.WorkflowHistory) {
	item.ID = uuid.NewString()
	if err := l.historyRepo.Insert(ctx, item); err != nil {
		l.logger.Error("WorkflowListener: не удалось записать историю",
			zap.String("entityType", item.EntityType), zap.String("entityID", item.EntityID), zap.Error(err))
	}
}

func (l *WorkflowListener) notify(ctx context.Context, userIDs []string, entityType, entityID, message string) {
	if message == "" {
		return
	}
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		n := &entities.Notification{
			ID:         uuid.NewString(),
			UserID:     userID,
			EntityType: entityType,
			EntityID:   entityID,
			Message:    message,
		}
		if err := l.notificationRepo.Insert(ctx, n); err != nil {
			l.logger.Error("WorkflowListener: не удалось создать уведомление",
				zap.String("userID", userID), zap.Error(err))
		}
	}
}
