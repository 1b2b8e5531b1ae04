package dto

type CandidateDTO struct {
	Role                   string  `json:"role" validate:"required"`
	ExperienceLevel        string  `json:"experience_level" validate:"required"`
	TechnologyLevel        string  `json:"technology_level" validate:"required"`
	DailyRate              float64 `json:"daily_rate" validate:"required,gt=0"`
	TravelCostPerOnsiteDay float64 `json:"travel_cost_per_onsite_day" validate:"gte=0"`
	Relationship           string  `json:"relationship" validate:"required,relationship"`
	SubcontractorCompany   string  `json:"subcontractor_company,omitempty"`
}

// SubmitOfferDTO - полезная нагрузка подачи оферты. Форму проверяет
// echo-валидатор, доменные правила (первое нарушенное поле) - сервис.
type SubmitOfferDTO struct {
	Currency   string         `json:"currency" validate:"required,currency_code"`
	Candidates []CandidateDTO `json:"candidates" validate:"required,min=1,dive"`
	StartDate  string         `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string         `json:"end_date" validate:"required,datetime=2006-01-02"`
	OnsiteDays int            `json:"onsite_days" validate:"gte=0"`
	Notes      string         `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type CandidateResponseDTO struct {
	Role                   string  `json:"role"`
	ExperienceLevel        string  `json:"experience_level"`
	TechnologyLevel        string  `json:"technology_level"`
	DailyRate              float64 `json:"daily_rate"`
	TravelCostPerOnsiteDay float64 `json:"travel_cost_per_onsite_day"`
	Relationship           string  `json:"relationship"`
	SubcontractorCompany   *string `json:"subcontractor_company,omitempty"`
}

type OfferResponseDTO struct {
	ID            string                 `json:"id"`
	RequestID     string                 `json:"request_id"`
	SupplierID    string                 `json:"supplier_id"`
	SupplierName  string                 `json:"supplier_name"`
	Currency      string                 `json:"currency"`
	Candidates    []CandidateResponseDTO `json:"candidates"`
	StartDate     string                 `json:"start_date"`
	EndDate       string                 `json:"end_date"`
	OnsiteDays    int                    `json:"onsite_days"`
	Notes         *string                `json:"notes,omitempty"`
	Preferred     bool                   `json:"preferred"`
	FinalApproved bool                   `json:"final_approved"`
	TotalCost     float64                `json:"total_cost"`
	CreatedAt     string                 `json:"created_at"`
	UpdatedAt     string                 `json:"updated_at"`
}
