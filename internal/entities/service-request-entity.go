package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// RequestStatus - статусы сервисной заявки.
// Граф переходов: DRAFT → IN_REVIEW → APPROVED_FOR_BIDDING → BIDDING → ORDERED.
// REJECTED достижим из любого нетерминального статуса.
type RequestStatus string

const (
	RequestStatusDraft              RequestStatus = "DRAFT"
	RequestStatusInReview           RequestStatus = "IN_REVIEW"
	RequestStatusApprovedForBidding RequestStatus = "APPROVED_FOR_BIDDING"
	RequestStatusBidding            RequestStatus = "BIDDING"
	RequestStatusOrdered            RequestStatus = "ORDERED"
	RequestStatusRejected           RequestStatus = "REJECTED"
)

// IsTerminal - ORDERED и REJECTED дальше не двигаются.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusOrdered || s == RequestStatusRejected
}

// Biddable - в этих статусах заявка принимает оферты и выбор оферты.
func (s RequestStatus) Biddable() bool {
	return s == RequestStatusApprovedForBidding || s == RequestStatusBidding
}

// ServiceRequest - сервисная заявка: запрос стороны закупщика на конкретную
// роль/компетенцию, вокруг которого идут торги.
type ServiceRequest struct {
	ID          string
	Title       string
	RequestType string
	Status      RequestStatus
	RequesterID string

	ProjectRef  null.String
	ContractRef null.String

	// Требования к исполнителю.
	Domain          string
	RoleRequired    string
	Technology      string
	ExperienceLevel string
	ManDays         int
	OnsiteDays      int
	Location        string
	MustHave        []string
	NiceToHave      []string
	TaskDescription string

	// BiddingActive выставляется операцией openBidding и проверяется
	// модулем оценки оферт.
	BiddingActive bool
	// SelectedOfferID - не более одной выбранной оферты одновременно.
	SelectedOfferID null.String
	RejectedReason  null.String

	// Version - оптимистическая блокировка: каждая запись статуса
	// проверяет ожидаемую версию.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}
