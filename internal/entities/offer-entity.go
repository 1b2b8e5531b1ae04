package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Relationship - договорные отношения кандидата с поставщиком.
type Relationship string

const (
	RelationshipEmployee      Relationship = "EMPLOYEE"
	RelationshipFreelancer    Relationship = "FREELANCER"
	RelationshipSubcontractor Relationship = "SUBCONTRACTOR"
)

func (r Relationship) Valid() bool {
	return r == RelationshipEmployee || r == RelationshipFreelancer || r == RelationshipSubcontractor
}

// Candidate - один специалист в составе оферты.
type Candidate struct {
	ID              string
	OfferID         string
	Position        int
	Role            string
	ExperienceLevel string
	TechnologyLevel string
	DailyRate       float64
	// TravelCostPerOnsiteDay - командировочные за один onsite-день.
	TravelCostPerOnsiteDay float64
	Relationship           Relationship
	// SubcontractorCompany обязательна тогда и только тогда,
	// когда Relationship = SUBCONTRACTOR.
	SubcontractorCompany null.String
}

// Offer - структурированное предложение поставщика по заявке.
// На пару (RequestID, SupplierID) существует ровно одна активная оферта:
// повторная подача обновляет запись, а не дублирует ее.
type Offer struct {
	ID           string
	RequestID    string
	SupplierID   string
	SupplierName string
	Currency     string
	Candidates   []Candidate

	// Предлагаемое окно поставки.
	StartDate  time.Time
	EndDate    time.Time
	OnsiteDays int
	Notes      null.String

	// Preferred выставляется операцией markPreferred, метаданные без смены статуса.
	Preferred bool
	// FinalApproved - одноразовое финальное одобрение планировщиком.
	FinalApproved bool

	// TotalCost фиксируется при подаче; пересчет по сохраненным полям
	// обязан давать то же значение (аудит).
	TotalCost float64

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommittedDays - количество дней окна поставки, включительно по обеим
// границам. Детерминированная основа для TotalCost.
func (o *Offer) CommittedDays() int {
	if o.EndDate.Before(o.StartDate) {
		return 0
	}
	return int(o.EndDate.Sub(o.StartDate).Hours()/24) + 1
}

// ComputeTotalCost - Σ по кандидатам (ставка × дни) + (командировочные × onsite-дни).
func (o *Offer) ComputeTotalCost() float64 {
	days := float64(o.CommittedDays())
	var total float64
	for _, c := range o.Candidates {
		total += c.DailyRate*days + c.TravelCostPerOnsiteDay*float64(o.OnsiteDays)
	}
	return total
}
