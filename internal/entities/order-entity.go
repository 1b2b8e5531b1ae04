package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// OrderStatus - хранимый статус заказа. Двухступенчатое одобрение:
// статус APPROVED плюс независимый флаг ProviderConfirmed.
type OrderStatus string

const (
	OrderStatusPendingRPApproval OrderStatus = "PENDING_RP_APPROVAL"
	OrderStatusApproved          OrderStatus = "APPROVED"
	OrderStatusRejected          OrderStatus = "REJECTED"
)

// OrderDisplayState - проекция для чтения, НЕ хранимый статус.
// Чистая функция от (status, providerConfirmed), считается одинаково
// у всех потребителей.
type OrderDisplayState string

const (
	DisplayPendingRPApproval   OrderDisplayState = "PENDING_RP_APPROVAL"
	DisplaySubmittedToProvider OrderDisplayState = "SUBMITTED_TO_PROVIDER"
	DisplayApproved            OrderDisplayState = "APPROVED"
	DisplayRejected            OrderDisplayState = "REJECTED"
)

// Feedback - отзыв по заказу, встроен в Order. Не более одного на заказ.
type Feedback struct {
	Overall       int
	Quality       int
	Communication int
	Value         int
	Comment       string
	Anonymous     bool
	AuthorID      string
	CreatedAt     time.Time
}

// Order - контрактный артефакт, созданный из выбранной оферты.
// Поля оферты снапшотятся в момент конверсии: заказ не перечитывает
// оферту и защищен от ее последующих изменений.
type Order struct {
	ID              string
	SourceRequestID string
	OfferID         string
	// RequesterID - заявитель исходной заявки (requester-of-record).
	RequesterID string

	// Снапшот оферты.
	SupplierID           string
	SupplierName         string
	SpecialistName       string
	DailyRate            float64
	TravelCost           float64
	Relationship         Relationship
	SubcontractorCompany null.String
	Currency             string

	ContractValue float64
	ManDays       int
	StartDate     time.Time
	EndDate       time.Time

	Status            OrderStatus
	ProviderConfirmed bool

	ApprovedBy      null.String
	ApprovedAt      null.Time
	RejectedBy      null.String
	RejectedAt      null.Time
	RejectionReason null.String

	// PendingChangeID - ссылка на единственное PENDING-изменение.
	// Проверяется и выставляется атомарно вместе с созданием изменения.
	PendingChangeID null.String

	Feedback *Feedback

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayState считает проекцию отображаемого состояния.
func (o *Order) DisplayState() OrderDisplayState {
	switch o.Status {
	case OrderStatusRejected:
		return DisplayRejected
	case OrderStatusApproved:
		if o.ProviderConfirmed {
			return DisplayApproved
		}
		return DisplaySubmittedToProvider
	default:
		return DisplayPendingRPApproval
	}
}
