package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type ChangeType string

const (
	ChangeTypeSubstitution ChangeType = "SUBSTITUTION"
	ChangeTypeExtension    ChangeType = "EXTENSION"
)

type ChangeStatus string

const (
	ChangeStatusPending  ChangeStatus = "PENDING"
	ChangeStatusApproved ChangeStatus = "APPROVED"
	ChangeStatusRejected ChangeStatus = "REJECTED"
)

// ChangeRequest - предложение изменить одобренный заказ: замена специалиста
// или продление срока/стоимости. Пока одно изменение PENDING, второе по
// тому же заказу открыть нельзя.
type ChangeRequest struct {
	ID         string
	OrderID    string
	Type       ChangeType
	ProposerID string
	Reason     string
	Status     ChangeStatus

	// Payload для SUBSTITUTION.
	NewSpecialistName null.String

	// Payload для EXTENSION.
	NewEndDate       null.Time
	ExtraManDays     null.Int
	NewContractValue null.Float64

	RejectionReason null.String
	ResolvedBy      null.String
	ResolvedAt      null.Time

	CreatedAt time.Time
}
