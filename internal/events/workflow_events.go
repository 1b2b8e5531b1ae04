package events

import (
	"sourcing-system/internal/entities"
)

// Имена событий шины. Слушатели подписываются по этим константам.
const (
	RequestTransitionedName = "request.transitioned"
	OfferSubmittedName      = "offer.submitted"
	OrderTransitionedName   = "order.transitioned"
	ChangeOpenedName        = "change.opened"
	ChangeResolvedName      = "change.resolved"
	FeedbackSubmittedName   = "feedback.submitted"
)

// RequestTransitionedEvent публикуется после успешного перехода заявки.
type RequestTransitionedEvent struct {
	Request   *entities.ServiceRequest
	Actor     entities.Actor
	OldStatus entities.RequestStatus
	NewStatus entities.RequestStatus
	Comment   string
	// NotifyUserIDs - кому создать уведомление о переходе.
	NotifyUserIDs []string
	Message       string
}

func (e RequestTransitionedEvent) Name() string { return RequestTransitionedName }

// OfferSubmittedEvent - подача или переподача оферты.
type OfferSubmittedEvent struct {
	Offer         *entities.Offer
	Actor         entities.Actor
	Resubmission  bool
	NotifyUserIDs []string
	Message       string
}

func (e OfferSubmittedEvent) Name() string { return OfferSubmittedName }

// OrderTransitionedEvent - создание заказа, одобрение, отклонение,
// подтверждение провайдера и применение изменения.
type OrderTransitionedEvent struct {
	Order         *entities.Order
	Actor         entities.Actor
	EventType     string
	OldValue      string
	NewValue      string
	Comment       string
	NotifyUserIDs []string
	Message       string
}

func (e OrderTransitionedEvent) Name() string { return OrderTransitionedName }

// ChangeOpenedEvent - открыто изменение по заказу (слот PENDING занят).
type ChangeOpenedEvent struct {
	Change        *entities.ChangeRequest
	Actor         entities.Actor
	NotifyUserIDs []string
	Message       string
}

func (e ChangeOpenedEvent) Name() string { return ChangeOpenedName }

// ChangeResolvedEvent - изменение одобрено или отклонено.
type ChangeResolvedEvent struct {
	Change        *entities.ChangeRequest
	Actor         entities.Actor
	NotifyUserIDs []string
	Message       string
}

func (e ChangeResolvedEvent) Name() string { return ChangeResolvedName }

// FeedbackSubmittedEvent - оставлен или отредактирован отзыв по заказу.
type FeedbackSubmittedEvent struct {
	Order         *entities.Order
	Actor         entities.Actor
	Edited        bool
	NotifyUserIDs []string
	Message       string
}

func (e FeedbackSubmittedEvent) Name() string { return FeedbackSubmittedName }
